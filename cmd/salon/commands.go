package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/diagnosis/salon-bookings/internal/app"
	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/nav"
	"github.com/diagnosis/salon-bookings/internal/service"
	"golang.org/x/sync/errgroup"
)

// errShown marks failures the flows already reported through a toast.
var errShown = errors.New("already reported")

func shown(err error) error { return fmt.Errorf("%w: %w", errShown, err) }

type cli struct {
	app *app.App
	out io.Writer
}

func (c *cli) table(header string, rows func(w io.Writer)) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

// note flags data that did not come from the gateway.
func note[T any](c *cli, r service.Result[T]) {
	if r.Demo() {
		fmt.Fprintln(c.out, "(demo data)")
	}
}

func (c *cli) requireLogin(ctx context.Context) error {
	ok, err := c.app.Auth.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return service.ErrNotAuthenticated
	}
	return nil
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one ID argument")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", args[0])
	}
	return id, nil
}

func runLogin(ctx context.Context, c *cli, args []string) error {
	form := c.app.NewLoginForm()
	fs := newFlags("login")
	fs.StringVar(&form.Email, "email", "", "")
	fs.StringVar(&form.Password, "password", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := form.Submit(ctx)
	if err != nil {
		return shown(err)
	}
	c.app.Toaster.Success("Welcome, " + u.FullName())
	return nil
}

func runSignUp(ctx context.Context, c *cli, args []string) error {
	form := c.app.NewSignUpForm()
	role := string(form.Role)
	fs := newFlags("signup")
	fs.StringVar(&form.Surname, "surname", "", "")
	fs.StringVar(&form.GivenName, "given", "", "")
	fs.StringVar(&form.Email, "email", "", "")
	fs.StringVar(&form.Phone, "phone", "", "")
	fs.StringVar(&form.Password, "password", "", "")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "")
	fs.StringVar(&role, "role", role, "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	form.Role = domain.Role(role)
	u, err := form.Submit(ctx)
	if err != nil {
		return shown(err)
	}
	c.app.Toaster.Success("Account created for " + u.Email)
	return nil
}

func runLogout(ctx context.Context, c *cli, _ []string) error {
	if err := c.app.Logout(ctx); err != nil {
		return err
	}
	c.app.Toaster.Success("Logged out")
	return nil
}

func runWhoAmI(ctx context.Context, c *cli, _ []string) error {
	u, err := c.app.Auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		return service.ErrNotAuthenticated
	}
	fmt.Fprintf(c.out, "%s <%s> %s (%s)\n", u.FullName(), u.Email, u.Phone, u.Role)
	return nil
}

// runHome loads the home screen sections concurrently.
func runHome(ctx context.Context, c *cli, _ []string) error {
	if err := c.requireLogin(ctx); err != nil {
		return err
	}
	var (
		services    service.Result[[]domain.Service]
		specialists service.Result[[]domain.Specialist]
		upcoming    service.Result[[]domain.Appointment]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { services, err = c.app.Catalog.List(gctx); return })
	g.Go(func() (err error) { specialists, err = c.app.Specialists.List(gctx); return })
	g.Go(func() (err error) { upcoming, err = c.app.Appointments.List(gctx); return })
	g.Go(func() error { _, err := c.app.Notifications.List(gctx); return err })
	if err := g.Wait(); err != nil {
		return err
	}

	if u, _ := c.app.Auth.CurrentUser(ctx); u != nil {
		fmt.Fprintf(c.out, "Hello, %s\n", u.GivenName)
	}
	fmt.Fprintf(c.out, "%d unread notifications\n\n", c.app.Notifications.Unread())

	note(c, services)
	printServices(c, services.Data)
	fmt.Fprintln(c.out)
	printSpecialists(c, specialists.Data)
	fmt.Fprintln(c.out)

	open := upcoming.Data[:0:0]
	for _, a := range upcoming.Data {
		if a.CanCancel() {
			open = append(open, a)
		}
	}
	printAppointments(c, open)
	return nil
}

func runServices(ctx context.Context, c *cli, _ []string) error {
	res, err := c.app.Catalog.List(ctx)
	if err != nil {
		return err
	}
	note(c, res)
	printServices(c, res.Data)
	return nil
}

func runService(ctx context.Context, c *cli, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	res, err := c.app.Catalog.Get(ctx, id)
	if err != nil {
		return err
	}
	if res.Data == nil {
		return fmt.Errorf("service %d not found", id)
	}
	note(c, res)
	s := res.Data
	fmt.Fprintf(c.out, "%s\n%s\n%.2f€ · %d min\n", s.Name, s.Description, s.Price, s.DurationMinutes)
	return nil
}

func printServices(c *cli, list []domain.Service) {
	c.table("ID\tSERVICE\tPRICE\tDURATION", func(w io.Writer) {
		for _, s := range list {
			fmt.Fprintf(w, "%d\t%s\t%.2f€\t%d min\n", s.ID, s.Name, s.Price, s.DurationMinutes)
		}
	})
}

func runSpecialists(ctx context.Context, c *cli, _ []string) error {
	res, err := c.app.Specialists.List(ctx)
	if err != nil {
		return err
	}
	note(c, res)
	printSpecialists(c, res.Data)
	return nil
}

func runSpecialist(ctx context.Context, c *cli, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	res, err := c.app.Specialists.Get(ctx, id)
	if err != nil {
		return err
	}
	if res.Data == nil {
		return fmt.Errorf("specialist %d not found", id)
	}
	reviews, err := c.app.Reviews.ListForSpecialist(ctx, id)
	if err != nil {
		return err
	}
	note(c, res)
	s := res.Data
	fmt.Fprintf(c.out, "%s <%s> %s\n", s.FullName(), s.Email, s.Phone)
	fmt.Fprintf(c.out, "rating %.1f (%d reviews)\n", domain.AverageRating(reviews.Data), len(reviews.Data))
	return nil
}

func printSpecialists(c *cli, list []domain.Specialist) {
	c.table("ID\tSPECIALIST\tEMAIL\tPHONE", func(w io.Writer) {
		for _, s := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.FullName(), s.Email, s.Phone)
		}
	})
}

func runAvailability(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("availability")
	id := fs.Int64("specialist", 0, "")
	date := fs.String("date", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.app.Specialists.Availability(ctx, *id, *date)
	if err != nil {
		return err
	}
	note(c, res)
	fmt.Fprintln(c.out, strings.Join(res.Data, "  "))
	return nil
}

func runAppointments(ctx context.Context, c *cli, _ []string) error {
	if err := c.requireLogin(ctx); err != nil {
		return err
	}
	res, err := c.app.Appointments.List(ctx)
	if err != nil {
		return err
	}
	note(c, res)
	printAppointments(c, res.Data)
	return nil
}

func printAppointments(c *cli, list []domain.Appointment) {
	c.table("ID\tDATE\tTIME\tSERVICE\tSPECIALIST\tSTATUS", func(w io.Writer) {
		for _, a := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Date, a.Time, a.Service.Name, a.Specialist.FullName(), a.Status)
		}
	})
}

func runAppointment(ctx context.Context, c *cli, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := c.app.Nav.Navigate(nav.AppointmentDetails, nav.Params{AppointmentID: id}); err != nil {
		return err
	}
	res, err := c.app.Appointments.Get(ctx, id)
	if err != nil {
		return err
	}
	if res.Data == nil {
		return fmt.Errorf("appointment %d not found", id)
	}
	note(c, res)
	a := res.Data
	fmt.Fprintf(c.out, "%s on %s at %s (%s)\n", a.Service.Name, a.Date, a.Time, a.Status)
	fmt.Fprintf(c.out, "with %s, %.2f€, %d min\n", a.Specialist.FullName(), a.Service.Price, a.Service.DurationMinutes)
	if a.Notes != "" {
		fmt.Fprintf(c.out, "notes: %s\n", a.Notes)
	}
	return nil
}

func runBook(ctx context.Context, c *cli, args []string) error {
	if err := c.requireLogin(ctx); err != nil {
		return err
	}
	fs := newFlags("book")
	serviceID := fs.Int64("service", 0, "")
	specialistID := fs.Int64("specialist", 0, "")
	date := fs.String("date", "", "")
	at := fs.String("time", "", "")
	notes := fs.String("notes", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.app.Nav.Navigate(nav.AppointmentBooking, nav.Params{}); err != nil {
		return err
	}
	b := c.app.NewBooking()
	if *serviceID != 0 {
		res, err := c.app.Catalog.Get(ctx, *serviceID)
		if err != nil {
			return err
		}
		if res.Data != nil {
			b.SelectService(*res.Data)
		}
	}
	if *specialistID != 0 {
		res, err := c.app.Specialists.Get(ctx, *specialistID)
		if err != nil {
			return err
		}
		if res.Data != nil {
			if err := b.SelectSpecialist(ctx, *res.Data); err != nil {
				return err
			}
		}
	}
	if *date != "" {
		if err := b.SelectDate(ctx, *date); err != nil {
			return err
		}
	}
	if *at != "" {
		if err := b.SelectTime(*at); err != nil {
			return fmt.Errorf("%w (free: %s)", err, strings.Join(b.Slots, ", "))
		}
	}
	b.SetNotes(*notes)

	a, err := b.Submit(ctx)
	if err != nil {
		return shown(err)
	}
	fmt.Fprintf(c.out, "booked appointment %d, next: %s\n", a.ID, c.app.Nav.Current())
	return nil
}

func runCancel(ctx context.Context, c *cli, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	res, err := c.app.Appointments.Cancel(ctx, id)
	if err != nil {
		return err
	}
	note(c, res)
	if res.Data == nil {
		return fmt.Errorf("appointment %d not found", id)
	}
	c.app.Toaster.Success(fmt.Sprintf("Appointment %d cancelled", id))
	return nil
}

func runCards(ctx context.Context, c *cli, _ []string) error {
	if err := c.requireLogin(ctx); err != nil {
		return err
	}
	res, err := c.app.Payments.ListMethods(ctx)
	if err != nil {
		return err
	}
	note(c, res)
	printCards(c, res.Data)
	return nil
}

func printCards(c *cli, list []domain.PaymentMethod) {
	c.table("ID\tCARD\tEXPIRY\tDEFAULT", func(w io.Writer) {
		for _, m := range list {
			def := ""
			if m.IsDefault {
				def = "yes"
			}
			fmt.Fprintf(w, "%d\t•••• %s\t%s\t%s\n", m.ID, m.Last4, m.Expiry, def)
		}
	})
}

func runAddCard(ctx context.Context, c *cli, args []string) error {
	form := c.app.NewCardForm()
	form.Open()
	fs := newFlags("add-card")
	fs.StringVar(&form.CardNumber, "number", "", "")
	fs.StringVar(&form.Expiry, "expiry", "", "")
	fs.StringVar(&form.CVV, "cvv", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, err := form.Submit(ctx)
	if err != nil {
		return shown(err)
	}
	fmt.Fprintf(c.out, "card %d ending %s added (default: %t)\n", m.ID, m.Last4, m.IsDefault)
	return nil
}

func runRemoveCard(ctx context.Context, c *cli, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := c.app.Payments.DeleteMethod(ctx, id); err != nil {
		return err
	}
	c.app.Toaster.Success("Card removed")
	return nil
}

func runDefaultCard(ctx context.Context, c *cli, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	res, err := c.app.Payments.SetDefault(ctx, id)
	if err != nil {
		return err
	}
	note(c, res)
	printCards(c, res.Data)
	return nil
}

func runPay(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("pay")
	appointmentID := fs.Int64("appointment", 0, "")
	amount := fs.Float64("amount", 0, "")
	mode := fs.String("mode", string(domain.PaymentModeCard), "")
	cardID := fs.Int64("card", 0, "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := c.app.Payments.Process(ctx, domain.PaymentRequest{
		AppointmentID: *appointmentID,
		Amount:        *amount,
		Mode:          domain.PaymentMode(*mode),
		CardID:        *cardID,
	})
	if err != nil {
		return err
	}
	note(c, res)
	p := res.Data
	if err := c.app.Nav.Navigate(nav.PaymentDetails, nav.Params{PaymentID: p.ID}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "payment %d: %.2f€ by %s, %s\n", p.ID, p.Amount, p.Mode, p.Status)
	return nil
}

func runReviews(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("reviews")
	specialistID := fs.Int64("specialist", 0, "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		res service.Result[[]domain.Review]
		err error
	)
	if *specialistID != 0 {
		res, err = c.app.Reviews.ListForSpecialist(ctx, *specialistID)
	} else {
		res, err = c.app.Reviews.List(ctx)
	}
	if err != nil {
		return err
	}
	note(c, res)
	c.table("ID\tRATING\tBY\tFOR\tDATE\tCOMMENT", func(w io.Writer) {
		for _, r := range res.Data {
			fmt.Fprintf(w, "%d\t%s\t%s %s\t%s %s\t%s\t%s\n", r.ID, strings.Repeat("★", r.Rating),
				r.Client.GivenName, r.Client.Surname, r.Specialist.GivenName, r.Specialist.Surname, r.Date, r.Comment)
		}
	})
	return nil
}

func runReview(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("review")
	appointmentID := fs.Int64("appointment", 0, "")
	rating := fs.Int("rating", 0, "")
	comment := fs.String("comment", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := c.app.Reviews.Add(ctx, domain.ReviewRequest{Rating: *rating, Comment: *comment, AppointmentID: *appointmentID})
	if err != nil {
		return err
	}
	note(c, res)
	c.app.Toaster.Success(fmt.Sprintf("Review %d saved", res.Data.ID))
	return nil
}

func runNotifications(ctx context.Context, c *cli, _ []string) error {
	if err := c.app.Nav.Navigate(nav.Notifications, nav.Params{}); err != nil {
		return err
	}
	res, err := c.app.Notifications.List(ctx)
	if err != nil {
		return err
	}
	note(c, res)
	printNotifications(c, res.Data)
	return nil
}

func printNotifications(c *cli, list []domain.Notification) {
	c.table("ID\t\tTYPE\tDATE\tTITLE\tMESSAGE", func(w io.Writer) {
		for _, n := range list {
			mark := "•"
			if n.Read {
				mark = ""
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", n.ID, mark, n.Type, n.Date, n.Title, n.Message)
		}
	})
}

func runRead(ctx context.Context, c *cli, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if _, err := c.app.Notifications.List(ctx); err != nil {
		return err
	}
	return c.app.Notifications.MarkAsRead(ctx, id)
}

func runReadAll(ctx context.Context, c *cli, _ []string) error {
	if _, err := c.app.Notifications.List(ctx); err != nil {
		return err
	}
	if err := c.app.Notifications.MarkAllAsRead(ctx); err != nil {
		return err
	}
	c.app.Toaster.Success("All notifications marked as read")
	return nil
}

// runListen prints pushed notifications until interrupted.
func runListen(ctx context.Context, c *cli, _ []string) error {
	sub := c.app.Notifications.Subscribe()
	status, err := c.app.Notifications.Start(ctx)
	if err != nil {
		return err
	}
	if !status.Enabled() {
		return fmt.Errorf("push notifications are %s; set PUSH_BACKEND=nats", status)
	}
	c.app.Toaster.Info("Listening for notifications, Ctrl-C to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-sub:
			if !ok {
				return nil
			}
			fmt.Fprintf(c.out, "[%s] %s: %s\n", n.Type, n.Title, n.Message)
		}
	}
}

func runChats(ctx context.Context, c *cli, args []string) error {
	fs := newFlags("chats")
	q := fs.String("q", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.app.Nav.Navigate(nav.Chat, nav.Params{}); err != nil {
		return err
	}
	res, err := c.app.Chats.Search(ctx, *q)
	if err != nil {
		return err
	}
	note(c, res)
	c.table("ID\tNAME\tTIME\tUNREAD\tLAST MESSAGE", func(w io.Writer) {
		for _, ch := range res.Data {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", ch.ID, ch.Name, ch.Time, ch.Unread, ch.LastMessage)
		}
	})
	return nil
}
