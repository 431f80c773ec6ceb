package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/harentsoaR/telehealth-api/internal/config"
	"github.com/harentsoaR/telehealth-api/internal/handlers"
	"github.com/harentsoaR/telehealth-api/internal/i18n"
	"github.com/harentsoaR/telehealth-api/internal/logger"
	"github.com/harentsoaR/telehealth-api/internal/middleware"
	"github.com/harentsoaR/telehealth-api/internal/repository"
	"github.com/harentsoaR/telehealth-api/internal/services"
	"github.com/harentsoaR/telehealth-api/internal/twilio"
	"github.com/harentsoaR/telehealth-api/internal/utils"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		zl.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())
	if err := client.Ping(connectCtx, nil); err != nil {
		zl.Fatal("failed to ping MongoDB", zap.Error(err))
	}
	db := client.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		zl.Fatal("failed to create indexes", zap.Error(err))
	}
	zl.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	// --- Repositories ---
	userRepo := repository.NewMongoUserRepo(db)
	smsProviderRepo := repository.NewMongoSmsProviderRepo(db)
	templateRepo := repository.NewMongoTemplateRepo(db)
	consultationRepo := repository.NewMongoConsultationRepo(db)

	// --- Outbound channels ---
	twilioClient := twilio.NewClient(twilio.Config{
		AccountSID:     cfg.Twilio.AccountSID,
		AuthToken:      cfg.Twilio.AuthToken,
		From:           cfg.Twilio.From,
		APIBaseURL:     cfg.Twilio.APIBaseURL,
		ContentBaseURL: cfg.Twilio.ContentBaseURL,
		MaxFailures:    cfg.Twilio.Breaker.MaxFailures,
		Interval:       time.Duration(cfg.Twilio.Breaker.IntervalSec) * time.Second,
		Timeout:        time.Duration(cfg.Twilio.Breaker.TimeoutSec) * time.Second,
	}, zl.Named("twilio"))
	textbelt := services.NewTextbeltGateway(cfg.Textbelt.APIKey, cfg.Textbelt.URL, zl.Named("textbelt"))
	smsRouter := services.NewSMSRouter(smsProviderRepo, cfg.SMS.DefaultProvider, zl.Named("sms"), twilioClient, textbelt)

	var emailSender services.EmailSender
	switch cfg.Email.Provider {
	case "smtp":
		emailSender = services.NewSMTPSender(cfg.Email.SMTP.Host, cfg.Email.SMTP.Port, cfg.Email.SMTP.Username,
			cfg.Email.SMTP.Password, cfg.Email.FromEmail, cfg.Email.FromName, zl.Named("email"))
	default:
		emailSender = services.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName, zl.Named("email"))
	}

	translator, err := i18n.New()
	if err != nil {
		zl.Fatal("failed to load translations", zap.Error(err))
	}

	// --- Services ---
	userSvc := services.NewUserService(userRepo, services.NewUserGuard(userRepo, zl.Named("users")), zl.Named("users"))
	templateSvc := services.NewTemplateService(templateRepo, twilioClient, zl.Named("templates"))
	smsProviderSvc := services.NewSmsProviderService(smsProviderRepo, zl.Named("sms-providers"))
	notificationSvc := services.NewNotificationService(smsRouter, emailSender, consultationRepo, translator, zl.Named("notifications"))

	tokens := utils.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)
	h := handlers.NewHandler(userSvc, templateSvc, smsProviderSvc, notificationSvc, tokens, zl)

	// --- Gin Router ---
	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(zl.Named("http")))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "locale", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	expertLimiter := middleware.NewIPRateLimiter(ctx, cfg.RateLimit.ExpertLinkPerMinute, zl.Named("ratelimit"))
	h.RegisterRoutes(r, expertLimiter.Handler())

	srv := &http.Server{Addr: ":" + cfg.App.Port, Handler: r}
	go func() {
		zl.Info("starting server", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
