package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	appointmentHandler "github.com/atlasclinic/clinic-api/internal/handler/appointment"
	authHandler "github.com/atlasclinic/clinic-api/internal/handler/auth"
	catalogHandler "github.com/atlasclinic/clinic-api/internal/handler/catalog"
	"github.com/atlasclinic/clinic-api/internal/handler/health"
	notificationHandler "github.com/atlasclinic/clinic-api/internal/handler/notification"
	referralHandler "github.com/atlasclinic/clinic-api/internal/handler/referral"
	secretaryHandler "github.com/atlasclinic/clinic-api/internal/handler/secretary"
	userHandler "github.com/atlasclinic/clinic-api/internal/handler/user"

	"github.com/atlasclinic/clinic-api/internal/config"
	"github.com/atlasclinic/clinic-api/internal/email"
	"github.com/atlasclinic/clinic-api/internal/middleware"
	"github.com/atlasclinic/clinic-api/internal/repository/postgres"
	"github.com/atlasclinic/clinic-api/internal/router"
	appointmentService "github.com/atlasclinic/clinic-api/internal/service/appointment"
	authService "github.com/atlasclinic/clinic-api/internal/service/auth"
	catalogService "github.com/atlasclinic/clinic-api/internal/service/catalog"
	notificationService "github.com/atlasclinic/clinic-api/internal/service/notification"
	referralService "github.com/atlasclinic/clinic-api/internal/service/referral"
	secretaryService "github.com/atlasclinic/clinic-api/internal/service/secretary"
	userService "github.com/atlasclinic/clinic-api/internal/service/user"
	"github.com/atlasclinic/clinic-api/internal/whatsapp"
	"github.com/atlasclinic/clinic-api/pkg/auth"
	"github.com/atlasclinic/clinic-api/pkg/logger"
	messagingredis "github.com/atlasclinic/clinic-api/pkg/messaging/redis"
	"github.com/atlasclinic/clinic-api/pkg/metrics"
	"github.com/atlasclinic/clinic-api/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := *logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Server.Mode != "release",
	}).Zerolog()

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	specialtyRepo := postgres.NewSpecialtyRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	insuranceRepo := postgres.NewInsuranceRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	referralRepo := postgres.NewReferralRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	secretaryRepo := postgres.NewSecretaryReferralRepository(db)

	// Infrastructure
	m := metrics.NewMetrics("clinic_api")
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})
	emailSvc := email.NewService(cfg.SMTP)
	whatsAppClient := whatsapp.NewClient(cfg.Twilio)

	broker, err := messagingredis.NewRedisBroker(messagingredis.Config{URL: cfg.Redis.URL}, &log)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, arrival events will not be published")
		broker = nil
	} else {
		defer broker.Close()
	}

	// Services
	catalogSvc := catalogService.NewService(catalogRepo)
	secretarySvc := secretaryService.NewService(secretaryRepo, patientRepo, userRepo, insuranceRepo, catalogRepo, m, log)
	notificationSvc := notificationService.NewService(
		notificationRepo, userRepo, catalogRepo,
		emailSvc, whatsAppClient, broker, m, log, location,
	)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, userRepo, notificationSvc, log)
	referralSvc := referralService.NewService(
		referralRepo, patientRepo, insuranceRepo, userRepo, appointmentRepo,
		catalogSvc, secretarySvc, notificationSvc, log,
	)
	authSvc := authService.NewService(userRepo, jwtSvc, log)
	userSvc := userService.NewService(userRepo, specialtyRepo, cfg.UploadDir, log)

	// HTTP layer
	v := validator.New()
	authMW := middleware.NewAuthMiddleware(jwtSvc)
	intakeRL := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
		Burst: cfg.RateLimit.Burst,
	})

	r := router.New(
		router.Config{
			Mode:       cfg.Server.Mode,
			CORSConfig: middleware.DefaultCORSConfig(),
			StaticDir:  cfg.UploadDir,
		},
		log,
		m,
		health.NewHandler(db),
		authHandler.NewHandler(authSvc, userSvc, v, authMW),
		userHandler.NewHandler(userSvc, v, authMW),
		catalogHandler.NewHandler(catalogSvc, specialtyRepo, patientRepo, insuranceRepo, authMW),
		appointmentHandler.NewHandler(appointmentSvc, v, authMW),
		referralHandler.NewHandler(referralSvc, v, authMW, intakeRL),
		notificationHandler.NewHandler(notificationSvc, v, authMW),
		secretaryHandler.NewHandler(secretarySvc, authMW),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
