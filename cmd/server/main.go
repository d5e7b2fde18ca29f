package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/school-booking/internal/auth"
	"github.com/iliyamo/school-booking/internal/config"
	"github.com/iliyamo/school-booking/internal/database"
	"github.com/iliyamo/school-booking/internal/handler"
	"github.com/iliyamo/school-booking/internal/middleware"
	"github.com/iliyamo/school-booking/internal/queue"
	"github.com/iliyamo/school-booking/internal/repository"
	"github.com/iliyamo/school-booking/internal/router"
	"github.com/iliyamo/school-booking/internal/service"
	"github.com/iliyamo/school-booking/internal/session"
	"github.com/iliyamo/school-booking/internal/view"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return err
	}
	logger.Info("database ready", "driver", cfg.DBDriver)

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	var store session.Store
	if rdb != nil {
		defer rdb.Close()
		store = session.NewRedisStore(rdb, "sess")
		logger.Info("redis connected; sessions, rate limits and cache are shared")
	} else {
		store = session.NewMemoryStore()
		logger.Warn("redis unavailable; using in-process sessions and rate limits")
	}
	sessions := session.NewManager(store, session.Options{
		Secret:     cfg.SessionSecret,
		TTL:        cfg.SessionTTL,
		CookieName: cfg.SessionCookie,
		Secure:     cfg.CookieSecure,
	})

	admin, err := auth.NewCredential(cfg.AdminUser, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.BcryptCost)
	if err != nil {
		return err
	}

	events := startEvents(ctx, cfg, logger)

	renderer, err := view.New()
	if err != nil {
		return err
	}

	svc := service.NewReservationService(repository.NewReservationRepo(db),
		service.Choices{Roles: cfg.Roles, Spaces: cfg.Spaces})
	loc := cfg.Location()
	reservations := handler.NewReservationHandler(svc, sessions, events, logger, cfg.Roles, cfg.Spaces,
		func() time.Time { return time.Now().In(loc) })
	authHandler := handler.NewAuthHandler(admin, sessions, logger)

	e := newEcho(logger, renderer, sessions)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger)

	router.RegisterRoutes(e, db, cache)
	router.RegisterPublic(e, reservations, limiter)
	router.RegisterAuth(e, authHandler, limiter)
	router.RegisterAdmin(e, reservations)

	return serve(ctx, e, ":"+cfg.Port, cfg.Env, logger)
}

// startEvents returns the publisher used by the handlers and, when events
// are enabled, starts the consumer that writes the reservation log.
func startEvents(ctx context.Context, cfg config.Config, logger *slog.Logger) queue.Publisher {
	if !cfg.EventsEnabled {
		return queue.NopPublisher{}
	}
	consumer := &queue.Consumer{URL: cfg.RabbitMQURL, Queue: cfg.EventsQueue, LogDir: cfg.EventsLogDir, Logger: logger}
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event consumer stopped", "err", err)
		}
	}()
	logger.Info("reservation events enabled", "queue", cfg.EventsQueue)
	return queue.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsQueue, logger)
}

func newEcho(logger *slog.Logger, renderer echo.Renderer, sessions *session.Manager) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(echomw.Recover())
	e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "same-origin",
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.String("err", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Session(sessions, logger))
	return e
}

func serve(ctx context.Context, e *echo.Echo, addr, env string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "env", env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
