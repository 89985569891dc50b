// Package invdues собирает приложение: подключение к базе и Redis,
// миграции, сервисы, HTTP-сервер и планировщик ежедневной рассылки.
package invdues

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/cache"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/config"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/googleauth"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/jwt"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/secrets"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/migrations"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/paymentprovider"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/auth"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/billing"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/invoice"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/mailconfig"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/oauthshim"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/reminder"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/storage/repository"
)

// App — собранное приложение с HTTP-сервером и планировщиком.
type App struct {
	server    *http.Server
	scheduler *reminder.Scheduler
	logger    *slog.Logger
	db        *repository.Storage
}

// New инициализирует все зависимости приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	box, err := secrets.NewBox(cfg.Crypto.EncryptionKey)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	exchanger := googleauth.NewExchanger(cfg.GoogleOAuth.ClientID, cfg.GoogleOAuth.ClientSecret)
	gateway := paymentprovider.NewClient(cfg.PaymentGateway.KeyID, cfg.PaymentGateway.KeySecret, cfg.PaymentGateway.APIURL)

	authService := auth.New(db, jwtMaker)
	invoiceService := invoice.New(db, cacheRedis, logger)
	mailConfigService := mailconfig.New(db, box, exchanger, logger)
	reminderService := reminder.New(db, mailConfigService, logger, cfg.Reminder.AutomationWebhookURL)
	oauthService := oauthshim.New(cfg.OAuthBridge, cacheRedis, authService)
	billingService := billing.New(db, gateway, cacheRedis, cfg.PaymentGateway, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:       authService,
		Invoice:    invoiceService,
		MailConfig: mailConfigService,
		Reminder:   reminderService,
		OAuth:      oauthService,
		Billing:    billingService,
		Storage:    db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		scheduler: reminder.NewScheduler(reminderService, cfg.Reminder.SweepHour, logger),
		logger:    logger,
		db:        db,
	}, nil
}

// Run запускает HTTP-сервер и планировщик, блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	go a.scheduler.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
