package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diagnosis/salon-bookings/pkg/config"
	"github.com/diagnosis/salon-bookings/pkg/database"
	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/diagnosis/salon-bookings/pkg/kv"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	mw "github.com/diagnosis/salon-bookings/pkg/middleware"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/handlers"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/mailer"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/payments"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/pusher"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/repository"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

const idempotencyTTL = 24 * time.Hour

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("Gateway server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	bus := openBus(cfg)
	defer bus.Close()

	idem, closeIdem := idempotencyStore(ctx, cfg)
	defer closeIdem()

	notify := service.NewNotificationService(store, newPusher(ctx, cfg, bus), bus, nil)
	mail := newMailer(cfg)

	limiter := mw.NewRateLimiter(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst)
	go limiter.Sweep(ctx)

	h := &handlers.Handlers{
		Auth:          service.NewAuthService(store, mail, cfg.Auth),
		Catalog:       service.NewCatalogService(store, store),
		Appointments:  service.NewAppointmentService(store, notify, mail, bus, nil),
		Payments:      service.NewPaymentService(store, newProcessor(cfg), notify, bus, nil),
		Reviews:       service.NewReviewService(store, bus, nil),
		Notifications: notify,
		JWTSecret:     cfg.Auth.JWTSecret,
		AuthLimit:     limiter.Middleware,
	}

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("gateway"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)
	r.Use(mw.Metrics)
	r.Use(mw.IdempotencyMiddleware(idem, idempotencyTTL))
	r.Mount("/v1", h.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down gateway service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Gateway shutdown error", "error", err)
		}
	}()

	logger.Info("Starting gateway service", "port", cfg.Server.Port, "repository", cfg.Server.Repository)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.Server.Repository != "postgres" {
		logger.Info("Using in-memory repository")
		return repository.NewMemory(), nil
	}
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	pg := repository.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("Connected to database")
	return pg, nil
}

func openBus(cfg *config.Config) events.EventBus {
	if cfg.NATS.Enabled {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err == nil {
			logger.Info("Connected to NATS", "url", cfg.NATS.URL)
			return bus
		}
		logger.Warn("NATS unavailable, using in-process events", "error", err)
	}
	return events.NewMemoryEventBus()
}

func idempotencyStore(ctx context.Context, cfg *config.Config) (mw.IdempotencyStore, func()) {
	if cfg.Redis.Enabled {
		rs, err := kv.NewRedisStore(ctx, cfg.Redis, "gateway:")
		if err == nil {
			return rs.TTLCache("idem:"), func() { _ = rs.Close() }
		}
		logger.Warn("Redis unavailable, caching idempotent responses in memory", "error", err)
	}
	return kv.NewMemoryTTLCache(), func() {}
}

func newPusher(ctx context.Context, cfg *config.Config, bus events.Publisher) pusher.Pusher {
	p := pusher.Multi{pusher.NewNATS(bus)}
	if cfg.Push.FCMCredentialsFile != "" {
		fcm, err := pusher.NewFCM(ctx, cfg.Push.FCMCredentialsFile)
		if err != nil {
			logger.Warn("FCM disabled", "error", err)
		} else {
			p = append(p, fcm)
		}
	}
	return p
}

func newMailer(cfg *config.Config) mailer.Service {
	var sender mailer.Sender
	if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
		sender = mailer.NewDev(os.Stdout)
	} else {
		sender = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	return mailer.New(sender, cfg.Email.FromName)
}

func newProcessor(cfg *config.Config) payments.Processor {
	if cfg.Stripe.SecretKey == "" {
		return payments.Offline{}
	}
	pm := ""
	if cfg.Stripe.Environment != "live" {
		pm = payments.TestPaymentMethod
	}
	return payments.NewStripe(cfg.Stripe.SecretKey, cfg.Stripe.Currency, pm)
}
