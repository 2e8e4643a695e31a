package flow

import (
	"context"
	"strings"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/nav"
	"github.com/diagnosis/salon-bookings/internal/service"
	"github.com/diagnosis/salon-bookings/pkg/logger"
)

type MethodAdder interface {
	AddMethod(ctx context.Context, req domain.AddCardRequest) (service.Result[domain.PaymentMethod], error)
}

// CardForm is the add-card sub-form of the payment screen.
type CardForm struct {
	adder  MethodAdder
	notify Notifier

	Visible    bool
	CardNumber string
	Expiry     string
	CVV        string
}

func NewCardForm(adder MethodAdder, notify Notifier) *CardForm {
	return &CardForm{adder: adder, notify: notifierOrNoop(notify)}
}

func (f *CardForm) Open() { f.Visible = true }

func (f *CardForm) Cancel() { f.reset() }

func (f *CardForm) reset() {
	f.Visible = false
	f.CardNumber, f.Expiry, f.CVV = "", "", ""
}

// Submit adds the card; the form resets and hides on success.
func (f *CardForm) Submit(ctx context.Context) (*domain.PaymentMethod, error) {
	req := domain.AddCardRequest{CardNumber: f.CardNumber, Expiry: f.Expiry, CVV: f.CVV}
	if !req.Complete() {
		f.notify.Error(MsgCardDetails)
		return nil, service.ErrMissingCardDetails
	}

	res, err := f.adder.AddMethod(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to add card", "error", err)
		f.notify.Error(MsgCardFailed)
		return nil, err
	}

	f.reset()
	f.notify.Success(MsgCardAdded)
	return &res.Data, nil
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (service.Result[domain.User], error)
	SignUp(ctx context.Context, in domain.SignUpInput) (service.Result[domain.User], error)
}

type LoginForm struct {
	auth   Authenticator
	notify Notifier
	router Router

	Email    string
	Password string
}

func NewLoginForm(auth Authenticator, notify Notifier, router Router) *LoginForm {
	return &LoginForm{auth: auth, notify: notifierOrNoop(notify), router: router}
}

func (f *LoginForm) Submit(ctx context.Context) (*domain.User, error) {
	if strings.TrimSpace(f.Email) == "" || f.Password == "" {
		f.notify.Error(MsgFillAllFields)
		return nil, ErrIncompleteForm
	}
	res, err := f.auth.Login(ctx, f.Email, f.Password)
	if err != nil {
		f.notify.Error(MsgLoginFailed)
		return nil, err
	}
	f.Password = ""
	return &res.Data, enterMain(f.router)
}

type SignUpForm struct {
	auth   Authenticator
	notify Notifier
	router Router

	Surname         string
	GivenName       string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	Role            domain.Role
}

func NewSignUpForm(auth Authenticator, notify Notifier, router Router) *SignUpForm {
	return &SignUpForm{auth: auth, notify: notifierOrNoop(notify), router: router, Role: domain.RoleClient}
}

func (f *SignUpForm) Submit(ctx context.Context) (*domain.User, error) {
	for _, v := range []string{f.Surname, f.GivenName, f.Email, f.Phone, f.Password, f.ConfirmPassword} {
		if strings.TrimSpace(v) == "" {
			f.notify.Error(MsgFillAllFields)
			return nil, ErrIncompleteForm
		}
	}
	if f.Password != f.ConfirmPassword {
		f.notify.Error(MsgPasswordMismatch)
		return nil, ErrPasswordMismatch
	}

	res, err := f.auth.SignUp(ctx, domain.SignUpInput{
		Surname:   f.Surname,
		GivenName: f.GivenName,
		Email:     f.Email,
		Phone:     f.Phone,
		Password:  f.Password,
		Role:      f.Role,
	})
	if err != nil {
		f.notify.Error(MsgSignUpFailed)
		return nil, err
	}
	f.Password, f.ConfirmPassword = "", ""
	return &res.Data, enterMain(f.router)
}

func enterMain(r Router) error {
	if r == nil {
		return nil
	}
	return r.Reset(nav.Main)
}
