package main

import (
	"context"
	"log"
	"strings"

	"payment-service/config"
	"payment-service/controllers"
	"payment-service/database"
	"payment-service/events"
	"payment-service/gateway"
	"payment-service/gateway/duitku"
	"payment-service/gateway/flip"
	"payment-service/kafka"
	"payment-service/logger"
	"payment-service/models"
	"payment-service/notifier"
	awspkg "payment-service/pkg/aws"
	"payment-service/repository"
	"payment-service/routes"
	"payment-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PaymentService] failed to load config:", err)
	}

	logger.Initialize(cfg.Environment)
	defer logger.Log.Sync()

	if err := database.Connect(cfg.DSN()); err != nil {
		logger.Log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	if err := database.DB.AutoMigrate(&models.Order{}, &models.EnvelopePayment{}, &models.User{}, &models.Invitation{}); err != nil {
		logger.Log.Fatal("failed to migrate schema", zap.Error(err))
	}

	orderRepo := repository.NewGormOrderRepo(database.DB)
	userRepo := repository.NewGormUserRepo(database.DB)

	duitkuAdapter := duitku.New(duitku.Config{
		MerchantCode: cfg.DuitkuMerchantCode,
		APIKey:       cfg.DuitkuAPIKey,
		BaseURL:      cfg.DuitkuBaseURL(),
		CallbackURL:  cfg.CallbackURL,
		ReturnURL:    cfg.AppURL,
	}, nil)
	flipAdapter := flip.New(flip.Config{
		SecretKey:       cfg.FlipSecretKey,
		ValidationToken: cfg.FlipValidationToken,
		BaseURL:         cfg.FlipBaseURL(),
		ReturnURL:       cfg.AppURL,
	}, nil)
	registry := gateway.NewRegistry(duitkuAdapter, flipAdapter)

	var publisher events.Publisher
	switch cfg.EventBackend {
	case "sns":
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Log.Fatal("failed to load aws config", zap.Error(err))
		}
		publisher = events.NewSNSEventPublisher(awspkg.NewSNSClient(awsCfg), cfg.PaymentSNSTopicARN)
	default:
		producer := kafka.NewPaymentEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic, logger.Log)
		defer producer.Close()
		publisher = producer
	}

	var sender notifier.Sender
	if cfg.WhatsAppAPIURL != "" {
		sender = notifier.NewWhatsAppSender(cfg.WhatsAppAPIURL, cfg.WhatsAppToken)
	} else {
		sender = &notifier.DisabledSender{Logger: logger.Log}
	}

	effects := services.NewEffects(userRepo, sender, logger.Log)
	paymentSvc := services.NewPaymentService(registry, orderRepo, logger.Log)
	reconcileSvc := services.NewReconcileService(registry, orderRepo, effects, publisher, logger.Log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
	}))

	pc := controllers.NewPaymentController(paymentSvc, orderRepo, logger.Log)
	wc := controllers.NewWebhookController(reconcileSvc, logger.Log)
	routes.RegisterPaymentRoutes(r, pc, wc)

	logger.Log.Info("payment service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("server failed", zap.Error(err))
	}
}
