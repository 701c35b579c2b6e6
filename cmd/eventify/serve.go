package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"eventify/internal/auth"
	"eventify/internal/config"
	"eventify/internal/database"
	"eventify/internal/handlers"
	"eventify/internal/middleware"
	"eventify/internal/queue"
	"eventify/internal/repositories"
	"eventify/internal/services"
	"eventify/internal/utils"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	limiterCleanupInterval = time.Minute
	tokenPurgeInterval     = time.Hour
)

func newServeCommand() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the ticket delivery workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info().Str("env", cfg.Server.Env).Msg("database connection established")

			if !skipMigrations {
				if _, err := database.NewMigrator(db.DB, logger).Up(ctx); err != nil {
					return err
				}
			}
			return serve(ctx, cfg, db, logger)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, db *database.DB, logger zerolog.Logger) error {
	deliveries, err := newDeliveryQueue(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deliveries.Close()

	userRepo := repositories.NewUserRepository(db.DB)
	tokenRepo := repositories.NewTokenRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	registrationRepo := repositories.NewRegistrationRepository(db.DB)

	authService := services.NewAuthService(
		userRepo,
		tokenRepo,
		utils.NewPasswordHasher(utils.DefaultArgon2Params()),
		auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, "eventify"),
		logger,
	)
	eventService := services.NewEventService(eventRepo, services.EventServiceOptions{
		HideExistence: cfg.Auth.OwnershipHideExistence,
	}, logger)
	registrationService := services.NewRegistrationService(
		eventRepo,
		registrationRepo,
		eventService,
		services.NewTicketGenerator(cfg.Server.BaseURL),
		deliveries,
		logger,
	)
	dispatcher := services.NewDeliveryDispatcher(
		deliveries,
		services.NewTicketEmailRenderer(),
		newMailer(cfg, logger),
		cfg.Delivery.Workers,
		logger,
	)

	tokens := auth.NewCookieTokenStore(auth.NewCookieStore(cfg.Session.Secret, cfg.Session.Secure), "eventify_session")
	authMiddleware := middleware.NewAuthMiddleware(authService, tokens, logger)
	csrfKey := sha256.Sum256([]byte(cfg.Session.Secret))
	proxies, err := middleware.NewProxyTrust(cfg.Server.TrustedProxyCIDRs)
	if err != nil {
		return err
	}
	loginLimit := middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute)
	registerLimit := middleware.NewRateLimiter(cfg.RateLimit.RegisterPerMinute)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(authService, tokens),
		Public:         handlers.NewPublicHandler(eventService, registrationService),
		Organizer:      handlers.NewOrganizerEventHandler(eventService, registrationService),
		CheckIn:        handlers.NewCheckInHandler(registrationService),
		Health:         handlers.NewHealthHandler(db, deliveries),
		RequireAuth:    authMiddleware.RequireAuth,
		CSRF:           middleware.NewCSRFProtection(csrfKey[:], cfg.Session.Secure, cfg.CORS.AllowedOrigins),
		TrustedProxies: proxies,
		LoginLimit:     loginLimit,
		RegisterLimit:  registerLimit,
		CORS:           middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return logger.WithContext(context.Background()) },
	}

	g, gctx := errgroup.WithContext(ctx)

	// workers outlive the signal so the backlog can drain after the
	// server stops accepting registrations
	deliverCtx, stopDelivery := context.WithCancel(context.WithoutCancel(ctx))
	defer stopDelivery()

	g.Go(func() error {
		return dispatcher.Run(deliverCtx)
	})

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		if err := deliveries.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close delivery queue")
		}
		time.AfterFunc(cfg.Server.ShutdownTimeout, stopDelivery)
		return err
	})

	g.Go(func() error {
		housekeeping(gctx, tokenRepo, []*middleware.RateLimiter{loginLimit, registerLimit}, logger)
		return nil
	})

	return g.Wait()
}

// housekeeping drops idle rate limiter buckets and expired revocations
// until ctx is done
func housekeeping(ctx context.Context, tokens *repositories.TokenRepository, limiters []*middleware.RateLimiter, logger zerolog.Logger) {
	cleanup := time.NewTicker(limiterCleanupInterval)
	defer cleanup.Stop()
	purge := time.NewTicker(tokenPurgeInterval)
	defer purge.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanup.C:
			for _, rl := range limiters {
				rl.Cleanup()
			}
		case now := <-purge.C:
			n, err := tokens.PurgeExpired(ctx, now)
			if err != nil {
				logger.Error().Err(err).Msg("failed to purge revoked tokens")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("purged", n).Msg("purged expired token revocations")
			}
		}
	}
}

// newDeliveryQueue uses Redis when REDIS_URL is set so queued tickets
// survive restarts, otherwise an in-process buffer
func newDeliveryQueue(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (queue.Queue, error) {
	if cfg.Delivery.RedisURL == "" {
		logger.Info().Int("size", cfg.Delivery.QueueSize).Msg("using in-memory delivery queue")
		return queue.NewMemory(cfg.Delivery.QueueSize), nil
	}

	client, err := queue.NewRedisClient(ctx, cfg.Delivery.RedisURL)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("key", cfg.Delivery.QueueKey).Msg("using redis delivery queue")
	return queue.NewRedis(client, cfg.Delivery.QueueKey, logger), nil
}

func newMailer(cfg *config.Config, logger zerolog.Logger) services.Mailer {
	emailConfig := services.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUser,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromEmail:    cfg.Email.FromEmail,
		FromName:     cfg.Email.FromName,
	}

	switch cfg.Email.Driver {
	case "smtp":
		logger.Info().Str("host", cfg.Email.SMTPHost).Msg("sending tickets over smtp")
		return services.NewSMTPMailer(emailConfig)
	case "resend":
		logger.Info().Msg("sending tickets through resend")
		return services.NewResendMailer(cfg.Resend.APIKey, emailConfig, logger)
	default:
		logger.Warn().Msg("MAIL_DRIVER=log, tickets are logged instead of sent")
		return services.NewLogMailer(logger)
	}
}
