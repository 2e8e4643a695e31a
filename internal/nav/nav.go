// Package nav is the static route graph and a stack navigator over it.
package nav

import (
	"errors"
	"fmt"
	"sync"
)

type Route string

const (
	Login              Route = "Login"
	SignUp             Route = "SignUp"
	Main               Route = "Main"
	AppointmentBooking Route = "AppointmentBooking"
	AppointmentDetails Route = "AppointmentDetails"
	Settings           Route = "Settings"
	Payment            Route = "Payment"
	PaymentDetails     Route = "PaymentDetails"
	Notifications      Route = "Notifications"
	ReviewDetails      Route = "ReviewDetails"
	Chat               Route = "Chat"
)

// Tab is one of the screens inside Main.
type Tab string

const (
	TabHome         Tab = "Home"
	TabAppointments Tab = "Appointments"
	TabProfile      Tab = "Profile"
)

var Tabs = []Tab{TabHome, TabAppointments, TabProfile}

// Params carries the typed route parameters. Only the field a route needs
// is read.
type Params struct {
	AppointmentID int64
	PaymentID     int64
	ReviewID      int64
}

var (
	ErrUnknownRoute  = errors.New("nav: unknown route")
	ErrMissingParam  = errors.New("nav: missing route parameter")
	ErrUnknownTab    = errors.New("nav: unknown tab")
	ErrNotOnMainTabs = errors.New("nav: tabs are only reachable from Main")
)

type routeDef struct {
	param func(Params) int64
	name  string
}

var routes = map[Route]routeDef{
	Login:              {},
	SignUp:             {},
	Main:               {},
	AppointmentBooking: {},
	AppointmentDetails: {param: func(p Params) int64 { return p.AppointmentID }, name: "appointmentId"},
	Settings:           {},
	Payment:            {},
	PaymentDetails:     {param: func(p Params) int64 { return p.PaymentID }, name: "paymentId"},
	Notifications:      {},
	ReviewDetails:      {param: func(p Params) int64 { return p.ReviewID }, name: "reviewId"},
	Chat:               {},
}

// Entry is one screen on the stack.
type Entry struct {
	Route  Route
	Tab    Tab
	Params Params
}

func (e Entry) String() string {
	if e.Route == Main {
		return fmt.Sprintf("%s/%s", e.Route, e.Tab)
	}
	return string(e.Route)
}

// Validate checks that r exists and p carries the parameter it requires.
func Validate(r Route, p Params) error {
	s, ok := routes[r]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoute, r)
	}
	if s.param != nil && s.param(p) <= 0 {
		return fmt.Errorf("%w: %s requires %s", ErrMissingParam, r, s.name)
	}
	return nil
}

// Start is the first route: Main when a session was restored, else Login.
func Start(authenticated bool) Route {
	if authenticated {
		return Main
	}
	return Login
}

type Navigator struct {
	mu    sync.Mutex
	stack []Entry
}

func NewNavigator(start Route) *Navigator {
	return &Navigator{stack: []Entry{entry(start, Params{})}}
}

func entry(r Route, p Params) Entry {
	e := Entry{Route: r, Params: p}
	if r == Main {
		e.Tab = TabHome
	}
	return e
}

func (n *Navigator) Navigate(r Route, p Params) error {
	if err := Validate(r, p); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = append(n.stack, entry(r, p))
	return nil
}

// Replace swaps the current screen, so Back skips it.
func (n *Navigator) Replace(r Route, p Params) error {
	if err := Validate(r, p); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack[len(n.stack)-1] = entry(r, p)
	return nil
}

// Reset clears history, leaving r as the only screen. Used on login/logout.
func (n *Navigator) Reset(r Route) error {
	if err := Validate(r, Params{}); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = []Entry{entry(r, Params{})}
	return nil
}

// Back pops the current screen. It reports false at the root.
func (n *Navigator) Back() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) <= 1 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

func (n *Navigator) Current() Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack[len(n.stack)-1]
}

func (n *Navigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack)
}

func (n *Navigator) SelectTab(t Tab) error {
	switch t {
	case TabHome, TabAppointments, TabProfile:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTab, t)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	top := &n.stack[len(n.stack)-1]
	if top.Route != Main {
		return ErrNotOnMainTabs
	}
	top.Tab = t
	return nil
}
