// Observation Scheduling API
//
// Accepts proposal batches and returns an optimized timetable: a set of
// (proposal, start-instant) bindings over a fixed multi-day horizon.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ska-sa/obssched/internal/cache"
	"github.com/ska-sa/obssched/internal/config"
	"github.com/ska-sa/obssched/internal/handlers"
	custommw "github.com/ska-sa/obssched/internal/middleware"
	"github.com/ska-sa/obssched/internal/services"
)

// timetableRetention bounds how long a completed timetable stays in the
// in-memory store before the cleanup scheduler prunes it.
const timetableRetention = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	redisCache, err := cache.New(cfg.RedisURL)
	if err != nil {
		log.Printf("warning: Redis cache initialization failed: %v - caching disabled", err)
		redisCache = nil
	}
	defer redisCache.Close()

	var rateLimiter *services.RateLimiter
	if redisCache != nil && redisCache.Client() != nil {
		rateLimiter = services.NewRateLimiter(redisCache.Client())
		slog.Info("external rate limiter initialized (Redis-backed)")
	} else {
		slog.Warn("rate limiter disabled - Redis not available")
	}

	h := handlers.New(cfg, redisCache, rateLimiter)

	cleanup := services.NewCleanupScheduler(h.PruneStore, timetableRetention, 60)
	h.SetCleanupScheduler(cleanup)

	ctx, cancel := context.WithCancel(context.Background())
	cleanup.Start(ctx)
	defer cleanup.Stop()

	r := chi.NewRouter()
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.LogFailedRequestBodies)
	r.Use(custommw.Logger)
	r.Use(custommw.Recoverer)
	r.Use(custommw.Timeout(cfg.RequestTimeout))
	r.Use(custommw.SecurityHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(custommw.ContentType("application/json"))

		r.Post("/timetables", h.RateLimited(h.CreateTimetable))
		r.Post("/timetables/csv", h.RateLimited(h.UploadCSV))
		r.Get("/timetables/{id}", h.GetTimetable)
		r.Put("/timetables/{id}", h.RateLimited(h.UpdateTimetable))
		r.Delete("/timetables/{id}", h.DeleteTimetable)
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()

	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	slog.Info("server exited")
}
