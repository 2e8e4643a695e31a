// Package app wires the client: one instance of every service per process,
// built once and handed to the front end.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/diagnosis/salon-bookings/internal/api"
	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/flow"
	"github.com/diagnosis/salon-bookings/internal/nav"
	"github.com/diagnosis/salon-bookings/internal/push"
	"github.com/diagnosis/salon-bookings/internal/service"
	"github.com/diagnosis/salon-bookings/internal/session"
	"github.com/diagnosis/salon-bookings/internal/ui"
	"github.com/diagnosis/salon-bookings/pkg/config"
	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/diagnosis/salon-bookings/pkg/kv"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/google/uuid"
)

// KeyDevice holds the generated push device id between runs.
const KeyDevice = "device"

type App struct {
	Config    *config.Config
	Store     kv.Store
	Session   *session.Session
	API       *api.Client
	Messenger push.Messenger
	Toaster   *ui.Toaster
	Nav       *nav.Navigator

	Auth          service.AuthService
	Appointments  service.AppointmentService
	Payments      service.PaymentService
	Reviews       service.ReviewService
	Catalog       service.CatalogService
	Specialists   service.SpecialistService
	Chats         service.ChatService
	Notifications service.NotificationService

	bus events.EventBus
}

// New builds the container. Toasts are echoed to out.
func New(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Store:   store,
		Session: session.New(store),
		Toaster: ui.NewToaster(out, nil),
		Nav:     nav.NewNavigator(nav.Login),
	}
	a.API = api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, a.Session)

	if err := a.openMessenger(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	opts := service.Options{Demo: cfg.API.DemoMode}
	a.Auth = service.NewAuthService(a.API, a.Session, opts)
	a.Appointments = service.NewAppointmentService(a.API, opts)
	a.Payments = service.NewPaymentService(a.API, opts)
	a.Reviews = service.NewReviewService(a.API, a.Auth.CurrentUser, opts)
	a.Catalog = service.NewCatalogService(a.API, opts)
	a.Specialists = service.NewSpecialistService(a.API, opts)
	a.Chats = service.NewChatService(a.API, opts)
	a.Notifications = service.NewNotificationService(a.API, a.Messenger, opts)

	logger.Info("Client initialised",
		"base_url", cfg.API.BaseURL,
		"demo_mode", cfg.API.DemoMode,
		"store", cfg.Store.Backend,
		"push", cfg.Push.Backend,
	)
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.Store.Backend {
	case "file", "":
		return kv.NewFileStore(cfg.Store.Path)
	case "redis":
		return kv.NewRedisStore(ctx, cfg.Redis, cfg.Store.KeyPrefix)
	case "memory":
		return kv.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func (a *App) openMessenger(ctx context.Context) error {
	switch a.Config.Push.Backend {
	case "none", "":
		a.Messenger = push.NewMemoryMessenger(push.StatusDenied, "")
		return nil
	case "nats":
	default:
		return fmt.Errorf("unknown push backend %q", a.Config.Push.Backend)
	}

	deviceID, err := a.deviceID(ctx)
	if err != nil {
		return err
	}
	bus, err := events.NewNATSEventBus(a.Config.NATS.URL)
	if err != nil {
		return err
	}
	m, err := push.NewNATSMessenger(bus, deviceID)
	if err != nil {
		_ = bus.Close()
		return err
	}
	a.bus = bus
	a.Messenger = m
	return nil
}

// deviceID prefers the configured id, then the stored one, then a new one.
func (a *App) deviceID(ctx context.Context) (string, error) {
	if id := a.Config.Push.DeviceID; id != "" {
		return id, nil
	}
	id, err := a.Store.Get(ctx, KeyDevice)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}
	id = uuid.NewString()
	if err := a.Store.Set(ctx, KeyDevice, id); err != nil {
		return "", fmt.Errorf("failed to store device id: %w", err)
	}
	return id, nil
}

// Restore reloads the previous session and points the navigator at the
// start route.
func (a *App) Restore(ctx context.Context) (*domain.User, error) {
	u, err := a.Auth.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.Nav.Reset(nav.Start(u != nil)); err != nil {
		return nil, err
	}
	return u, nil
}

// Logout clears the session and returns to Login.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Auth.Logout(ctx); err != nil {
		return err
	}
	return a.Nav.Reset(nav.Login)
}

func (a *App) NewBooking() *flow.Booking {
	return flow.NewBooking(a.Appointments, a.Specialists, a.Toaster, a.Nav)
}

func (a *App) NewCardForm() *flow.CardForm {
	return flow.NewCardForm(a.Payments, a.Toaster)
}

func (a *App) NewLoginForm() *flow.LoginForm {
	return flow.NewLoginForm(a.Auth, a.Toaster, a.Nav)
}

func (a *App) NewSignUpForm() *flow.SignUpForm {
	return flow.NewSignUpForm(a.Auth, a.Toaster, a.Nav)
}

func (a *App) Close() error {
	var errs []error
	if a.Messenger != nil {
		errs = append(errs, a.Messenger.Close())
	}
	if a.bus != nil {
		errs = append(errs, a.bus.Close())
	}
	errs = append(errs, a.Store.Close())
	return errors.Join(errs...)
}
