package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/communityhub/community-services/internal/observability"
	"github.com/communityhub/community-services/internal/ratelimit"
)

type RouterOptions struct {
	UserRateLimit int
	IPRateLimit   int
	RatePeriod    time.Duration
}

func SetupRouter(h *Handlers, logger observability.Logger, verifier SessionVerifier, rl *ratelimit.RateLimiter, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Use(TracingMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/v1/products", h.ListProducts)
	r.Get("/v1/products/{id}", h.GetProduct)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(verifier))
		if rl != nil {
			r.Use(RateLimitMiddleware(rl, opts.UserRateLimit, opts.IPRateLimit, opts.RatePeriod))
		}
		r.Post("/v1/bookings", h.CreateBooking)
		r.Get("/v1/bookings", h.ListBookings)
		r.Get("/v1/bookings/{id}", h.GetBooking)
		r.Patch("/v1/bookings/{id}/status", h.UpdateBookingStatus)
	})

	return r
}
