package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/clinic-api/internal/authz"
	"github.com/clinicore/clinic-api/internal/config"
	adminHandler "github.com/clinicore/clinic-api/internal/handler/admin"
	appointmentHandler "github.com/clinicore/clinic-api/internal/handler/appointment"
	authHandler "github.com/clinicore/clinic-api/internal/handler/auth"
	patientHandler "github.com/clinicore/clinic-api/internal/handler/patient"
	professionalHandler "github.com/clinicore/clinic-api/internal/handler/professional"
	recordHandler "github.com/clinicore/clinic-api/internal/handler/record"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/notification"
	"github.com/clinicore/clinic-api/internal/repository/postgres"
	"github.com/clinicore/clinic-api/internal/router"
	appointmentService "github.com/clinicore/clinic-api/internal/service/appointment"
	authService "github.com/clinicore/clinic-api/internal/service/auth"
	identityService "github.com/clinicore/clinic-api/internal/service/identity"
	recordService "github.com/clinicore/clinic-api/internal/service/record"
	"github.com/clinicore/clinic-api/internal/worker"
	"github.com/clinicore/clinic-api/pkg/logger"
	"github.com/clinicore/clinic-api/pkg/metrics"
	"github.com/clinicore/clinic-api/pkg/security"
	"github.com/clinicore/clinic-api/pkg/telemed"
	"github.com/clinicore/clinic-api/pkg/token"
	"github.com/clinicore/clinic-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	var encryptor security.Encryptor
	if cfg.Security.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.Security.EncryptionKey)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid encryption key")
		}
		encryptor, err = security.NewAESEncryptor(key)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize encryptor")
		}
	}

	// Repositories
	accountRepo := postgres.NewAccountRepository(db, encryptor)
	patientRepo := postgres.NewPatientRepository(db, encryptor)
	professionalRepo := postgres.NewProfessionalRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	recordRepo := postgres.NewRecordRepository(db)

	// Core components
	m := metrics.NewMetrics("clinic_api")
	engine := authz.NewEngine()
	engine.Observe = func(action authz.Action, allowed bool) {
		decision := "deny"
		if allowed {
			decision = "allow"
		}
		m.AuthzDecisions.WithLabelValues(string(action), decision).Inc()
	}
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := token.NewJWTIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	links := telemed.NewRoomLinkGenerator(cfg.Telemedicine.BaseURL)
	revocations := authService.NewRedisRevocationStore(redisClient)

	var notifier appointmentService.Notifier = notification.Discard{}
	if cfg.SMTP.Enabled {
		mailer := notification.NewMailer(notification.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, accountRepo, patientRepo, professionalRepo)
		notifier = mailer

		if cfg.Reminder.Enabled {
			reminders := worker.NewReminderWorker(
				appointmentRepo,
				mailer,
				appLogger,
				time.Duration(cfg.Reminder.LeadHours)*time.Hour,
				time.Duration(cfg.Reminder.IntervalMinutes)*time.Minute,
			)
			go reminders.Start(context.Background())
		}
	}

	// Services
	authSvc := authService.NewService(accountRepo, patientRepo, professionalRepo, adminRepo, hasher, issuer, revocations)
	identitySvc := identityService.NewService(accountRepo, patientRepo, professionalRepo, engine, hasher)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, patientRepo, professionalRepo, engine, links, notifier, appLogger)
	recordSvc := recordService.NewService(recordRepo, patientRepo, appointmentRepo, engine)

	// Handlers
	v := validator.New()
	authH := authHandler.NewHandler(authSvc, v)
	patientH := patientHandler.NewHandler(identitySvc, appointmentSvc, recordSvc, v)
	professionalH := professionalHandler.NewHandler(identitySvc, v)
	adminH := adminHandler.NewHandler(identitySvc, v)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, v, m)
	recordH := recordHandler.NewHandler(recordSvc, v)

	authMw := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(authMw, db, m, authH, patientH, professionalH, adminH, appointmentH, recordH, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		CORSConfig: middleware.CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           3600,
		},
	})
	r.Setup()

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
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
