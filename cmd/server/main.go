package main

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/remessas-global/payment-screening/internal/api"
	"github.com/remessas-global/payment-screening/internal/config"
	"github.com/remessas-global/payment-screening/internal/crypto"
	"github.com/remessas-global/payment-screening/internal/events"
	"github.com/remessas-global/payment-screening/internal/refdata"
	"github.com/remessas-global/payment-screening/internal/repository/elasticsearch"
	"github.com/remessas-global/payment-screening/internal/repository/s3"
	"github.com/remessas-global/payment-screening/internal/screening"
	"github.com/remessas-global/payment-screening/internal/service"
	"github.com/remessas-global/payment-screening/internal/store"
)

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Info("Starting Payment Screening Service...")

	// 3. Reference data
	sanctionsList, err := refdata.LoadSanctionsList(cfg.RefData.SanctionsListPath)
	if err != nil {
		sugar.Fatalf("Failed to load sanctions list: %v", err)
	}
	highRiskCountries, err := refdata.LoadHighRiskCountries(cfg.RefData.HighRiskCountriesPath)
	if err != nil {
		sugar.Fatalf("Failed to load high-risk countries: %v", err)
	}
	sugar.Infof("Reference data loaded: %d sanctioned entities, %d high-risk countries",
		len(sanctionsList), len(highRiskCountries))

	// 4. Core: store, rule thresholds, audit signer, engine
	txStore := store.New()
	rulesHolder := config.NewRulesHolder(cfg.Rules)

	var signer *crypto.AuditSigner
	if cfg.Auth.AuditHMACSecret != "" {
		signer, err = crypto.NewAuditSigner(cfg.Auth.AuditHMACSecret)
		if err != nil {
			sugar.Fatalf("Failed to initialize audit signer: %v", err)
		}
	} else {
		sugar.Warn("Audit signing DISABLED - Missing HMAC secret")
	}

	var engineSigner screening.AuditSigner
	if signer != nil {
		engineSigner = signer
	}
	engine := screening.NewEngine(sanctionsList, highRiskCountries, txStore, rulesHolder, engineSigner, logger)

	// 5. Optional collaborators
	var auditIndex *elasticsearch.AuditIndex
	if cfg.Elasticsearch.Enabled {
		auditIndex, err = elasticsearch.NewAuditIndex(cfg.Elasticsearch)
		if err != nil {
			sugar.Warnf("Failed to connect to Elasticsearch: %v (Audit search will be unavailable)", err)
			auditIndex = nil
		}
	}

	var archive *s3.ArchiveRepository
	if cfg.S3.Enabled {
		archive, err = s3.NewArchiveRepository(context.Background(), cfg.S3)
		if err != nil {
			sugar.Fatalf("Failed to initialize S3 archive repository: %v", err)
		}
	}

	var alerts service.AlertPublisher
	var alertProducer *events.AlertProducer
	if cfg.Kafka.Enabled {
		alertProducer, err = events.NewAlertProducer(cfg.Kafka)
		if err != nil {
			sugar.Fatalf("Failed to create alert producer: %v", err)
		}
		defer alertProducer.Close()
		alerts = alertProducer
	}

	// 6. Service
	screeningService := service.NewScreeningService(engine, txStore, auditIndex, archive, alerts, signer, logger)

	// 7. Kafka consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Kafka.Enabled {
		consumer, err := events.NewTransactionConsumer(cfg.Kafka, screeningService, logger)
		if err != nil {
			sugar.Fatalf("Failed to create Kafka consumer: %v", err)
		}
		go func() {
			sugar.Info("Starting Kafka consumer loop...")
			if err := consumer.Start(ctx); err != nil {
				sugar.Errorf("Kafka consumer failed: %v", err)
			}
		}()
		defer consumer.Close()
	}

	// 8. API Server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler := api.NewScreeningHandler(screeningService, rulesHolder)

	apiGroup := e.Group("/api")
	handler.RegisterRoutes(apiGroup)

	auditGroup := e.Group("/api/audit")

	// Security: JWT authentication for the audit trail
	var signingKey *rsa.PublicKey
	if keyData, err := os.ReadFile(cfg.Auth.JWTPublicKeyPath); err != nil {
		sugar.Warnf("JWT public key not found at %s: %v", cfg.Auth.JWTPublicKeyPath, err)
	} else if signingKey, err = jwt.ParseRSAPublicKeyFromPEM(keyData); err != nil {
		sugar.Warnf("Failed to parse JWT public key: %v", err)
		signingKey = nil
	}

	if signingKey != nil {
		jwtConfig := echojwt.Config{
			SigningKey:    signingKey,
			SigningMethod: "RS256",
			NewClaimsFunc: func(c echo.Context) jwt.Claims {
				return new(jwt.MapClaims)
			},
		}
		auditGroup.Use(echojwt.WithConfig(jwtConfig))
		sugar.Info("JWT Authentication enabled for /api/audit/*")
	} else {
		sugar.Warn("JWT Authentication DISABLED - Missing Public Key (Security Risk)")
	}

	handler.RegisterAuditRoutes(auditGroup)

	// Health Check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Start Server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Shutting down the server: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sugar.Info("Shutting down service...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		sugar.Fatal(err)
	}
}
