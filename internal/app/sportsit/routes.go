package sportsit

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/sportsit/internal/config"
	bodyinfocreate "github.com/magabrotheeeer/sportsit/internal/http/handlers/bodyinfo/create"
	bodyinfolist "github.com/magabrotheeeer/sportsit/internal/http/handlers/bodyinfo/list"
	competitioncreate "github.com/magabrotheeeer/sportsit/internal/http/handlers/competition/create"
	"github.com/magabrotheeeer/sportsit/internal/http/handlers/competition/join"
	competitionlist "github.com/magabrotheeeer/sportsit/internal/http/handlers/competition/list"
	"github.com/magabrotheeeer/sportsit/internal/http/handlers/competition/participants"
	"github.com/magabrotheeeer/sportsit/internal/http/handlers/competition/poster"
	competitionread "github.com/magabrotheeeer/sportsit/internal/http/handlers/competition/read"
	"github.com/magabrotheeeer/sportsit/internal/http/handlers/health"
	memberread "github.com/magabrotheeeer/sportsit/internal/http/handlers/member/read"
	"github.com/magabrotheeeer/sportsit/internal/http/handlers/member/register"
	"github.com/magabrotheeeer/sportsit/internal/http/handlers/payment/complete"
	"github.com/magabrotheeeer/sportsit/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/sportsit/internal/http/handlers/payment/prepare"
	"github.com/magabrotheeeer/sportsit/internal/http/middlewarectx"
)

// MemberService сервис участников.
type MemberService interface {
	register.Service
	memberread.Service
}

// CompetitionService сервис соревнований.
type CompetitionService interface {
	competitioncreate.Service
	competitionread.Service
	competitionlist.Service
	join.Service
	participants.Service
	poster.Service
}

// PaymentService сервис платежей.
type PaymentService interface {
	prepare.Service
	complete.Service
	paymentlist.Service
}

// BodyInfoService сервис замеров.
type BodyInfoService interface {
	bodyinfocreate.Service
	bodyinfolist.Service
}

// Services набор сервисов, которые обслуживают маршруты.
type Services struct {
	Member      MemberService
	Competition CompetitionService
	Payment     PaymentService
	BodyInfo    BodyInfoService
	Health      health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/members", register.New(logger, s.Member).ServeHTTP)
		r.Get("/members/{uid}", memberread.New(logger, s.Member).ServeHTTP)

		r.Post("/competitions", competitioncreate.New(logger, s.Competition).ServeHTTP)
		r.Get("/competitions/list", competitionlist.New(logger, s.Competition).ServeHTTP)
		r.Get("/competitions/{id}", competitionread.New(logger, s.Competition).ServeHTTP)
		r.Post("/competitions/{id}/join", join.New(logger, s.Competition).ServeHTTP)
		r.Get("/competitions/{id}/participants", participants.New(logger, s.Competition).ServeHTTP)
		r.Post("/competitions/{id}/posters", poster.New(logger, s.Competition).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))
			r.Post("/payments/prepare", prepare.New(logger, s.Payment).ServeHTTP)
			r.Post("/payments/complete", complete.New(logger, s.Payment).ServeHTTP)
		})
		r.Get("/payments/list", paymentlist.New(logger, s.Payment).ServeHTTP)
		r.Get("/payments/all", paymentlist.NewAll(logger, s.Payment).ServeHTTP)

		r.Post("/body-info", bodyinfocreate.New(logger, s.BodyInfo).ServeHTTP)
		r.Get("/body-info/{uid}", bodyinfolist.New(logger, s.BodyInfo).ServeHTTP)
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
