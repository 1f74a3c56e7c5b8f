package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/cueside/club-bookings/internal/conflict"
	"github.com/cueside/club-bookings/internal/http/handlers"
	httpmw "github.com/cueside/club-bookings/internal/http/middleware"
	"github.com/cueside/club-bookings/internal/platform/payments"
	"github.com/cueside/club-bookings/internal/pricing"
	"github.com/cueside/club-bookings/internal/repo/postgres"
	"github.com/cueside/club-bookings/pkg/config"
	"github.com/cueside/club-bookings/pkg/database"
	"github.com/cueside/club-bookings/pkg/events"
	"github.com/cueside/club-bookings/pkg/logger"
	mw "github.com/cueside/club-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	bus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	bookingRepo := postgres.NewBookingRepo(pool)
	tableRepo := postgres.NewTableRepo(pool)
	idemRepo := postgres.NewIdempotencyRepo(pool)

	pricer := pricing.NewEngine(nil)
	detector := &conflict.Detector{
		SuggestionStep: cfg.Booking.SlotInterval,
		MaxSuggestions: cfg.Booking.MaxSuggestions,
	}
	stripeClient := payments.NewStripeClient(cfg.Stripe.SecretKey)

	h := handlers.New(bookingRepo, tableRepo, idemRepo, bus, pricer, detector, stripeClient)

	limiter := httpmw.NewRateLimiter(redisClient, httpmw.RateLimitConfig{
		Requests: cfg.Booking.RateLimit,
		Window:   cfg.Booking.RateWindow,
	})
	requireStaff := httpmw.RequireRole(cfg.Auth.JWTSecret, "staff", "admin")

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.Health)

	// Public: players book, check and manage with their token.
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware())
		r.Post("/bookings", h.CreateBooking)
		r.Post("/bookings/check-availability", h.CheckAvailability)
		r.Get("/bookings/{id}", h.GetBooking)
		r.Delete("/bookings/{id}", h.CancelBooking)
		r.Post("/pricing/estimate", h.EstimateCost)
		r.Get("/tables", h.ListTables)
		r.Get("/tables/{id}/slots", h.TableSlots)
	})

	// Staff desk: full booking control and billing.
	r.Route("/staff", func(r chi.Router) {
		r.Use(requireStaff)
		r.Get("/bookings", h.ListBookings)
		r.Get("/bookings/{id}", h.GetBooking)
		r.Get("/bookings/{id}/cost", h.CurrentCost)
		r.Patch("/bookings/{id}", h.UpdateBooking)
		r.Delete("/bookings/{id}", h.CancelBooking)
		r.Post("/bookings/{id}/finalize", h.FinalizeBooking)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting club bookings API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}
