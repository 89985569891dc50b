// Package invdues предоставляет маршруты для основного приложения.
package invdues

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	authlogin "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/auth/login"
	authregister "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/auth/register"
	automationsubscribe "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/automation/subscribe"
	automationunsubscribe "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/automation/unsubscribe"
	billingcreateorder "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/billing/createorder"
	billingread "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/billing/read"
	billingrecurring "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/billing/recurring"
	billingverify "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/billing/verify"
	billingwebhook "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/billing/webhook"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/health"
	invoicecreate "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/invoice/create"
	invoicelist "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/invoice/list"
	invoiceread "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/invoice/read"
	invoiceremove "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/invoice/remove"
	invoiceupdate "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/invoice/update"
	mailconfiggmail "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/mailconfig/gmail"
	mailconfigread "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/mailconfig/read"
	mailconfigremove "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/mailconfig/remove"
	mailconfigsave "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/mailconfig/save"
	mailtemplateread "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/mailtemplate/read"
	mailtemplateupdate "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/mailtemplate/update"
	oauthapprove "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/oauth/approve"
	oauthauthorize "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/oauth/authorize"
	oauthme "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/oauth/me"
	oauthtoken "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/oauth/token"
	remindersend "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/reminder/send"
	reminderstart "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/reminder/start"
	reminderstatus "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/reminder/status"
	reminderstop "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/reminder/stop"
	userpassword "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/user/password"
	userread "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/user/read"
	userremove "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/user/remove"
	userupdate "github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/handlers/user/update"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/http/middlewarectx"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/auth"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/billing"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/invoice"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/mailconfig"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/oauthshim"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/reminder"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/storage/repository"
)

// Services — набор сервисов, используемых маршрутами приложения.
type Services struct {
	Auth       *auth.Service
	Invoice    *invoice.Service
	MailConfig *mailconfig.Service
	Reminder   *reminder.Service
	OAuth      *oauthshim.Service
	Billing    *billing.Service
	Storage    *repository.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", authregister.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", authlogin.New(logger, s.Auth).ServeHTTP)
		r.Get("/oauth/authorize", oauthauthorize.New(logger, s.OAuth).ServeHTTP)
		r.Post("/oauth/token", oauthtoken.New(logger, s.OAuth).ServeHTTP)
		r.Get("/health", health.New(logger, s.Storage).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/users/me", userread.New(logger, s.Auth).ServeHTTP)
			r.Put("/users/me", userupdate.New(logger, s.Auth).ServeHTTP)
			r.Put("/users/me/password", userpassword.New(logger, s.Auth).ServeHTTP)
			r.Delete("/users/me", userremove.New(logger, s.Auth).ServeHTTP)

			r.Post("/invoices", invoicecreate.New(logger, s.Invoice).ServeHTTP)
			r.Get("/invoices", invoicelist.New(logger, s.Invoice).ServeHTTP)
			r.Get("/invoices/{id}", invoiceread.New(logger, s.Invoice).ServeHTTP)
			r.Put("/invoices/{id}", invoiceupdate.New(logger, s.Invoice).ServeHTTP)
			r.Delete("/invoices/{id}", invoiceremove.New(logger, s.Invoice).ServeHTTP)

			r.Get("/mail-config", mailconfigread.New(logger, s.MailConfig).ServeHTTP)
			r.Put("/mail-config", mailconfigsave.New(logger, s.MailConfig).ServeHTTP)
			r.Put("/mail-config/gmail", mailconfiggmail.New(logger, s.MailConfig).ServeHTTP)
			r.Delete("/mail-config", mailconfigremove.New(logger, s.MailConfig).ServeHTTP)
			r.Get("/mail-config/template", mailtemplateread.New(logger, s.MailConfig).ServeHTTP)
			r.Put("/mail-config/template", mailtemplateupdate.New(logger, s.MailConfig).ServeHTTP)

			r.Post("/reminders/send", remindersend.New(logger, s.Reminder).ServeHTTP)
			r.Post("/reminders/start", reminderstart.New(logger, s.Reminder).ServeHTTP)
			r.Post("/reminders/stop", reminderstop.New(logger, s.Reminder).ServeHTTP)
			r.Get("/reminders/status", reminderstatus.New(logger, s.Reminder).ServeHTTP)

			r.Post("/oauth/approve", oauthapprove.New(logger, s.OAuth).ServeHTTP)
			r.Get("/oauth/me", oauthme.New(logger, s.Auth).ServeHTTP)

			r.Post("/billing/orders", billingcreateorder.New(logger, s.Billing).ServeHTTP)
			r.Post("/billing/subscriptions", billingrecurring.New(logger, s.Billing).ServeHTTP)
			r.Post("/billing/verify", billingverify.New(logger, s.Billing).ServeHTTP)
			r.Get("/billing/subscription", billingread.New(logger, s.Billing).ServeHTTP)

			r.Post("/automation/subscribe", automationsubscribe.New(logger, s.Reminder).ServeHTTP)
			r.Delete("/automation/subscriptions/{id}", automationunsubscribe.New(logger, s.Reminder).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/billing/webhook", billingwebhook.New(logger, s.Billing).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
