package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/offlinesync"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/middleware"
	"github.com/fekuna/omnipos-inventory-service/internal/pkg/observability"

	custUCPkg "github.com/fekuna/omnipos-inventory-service/internal/customer/usecase"

	invH "github.com/fekuna/omnipos-inventory-service/internal/inventory/handler"
	invUCPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"

	saleH "github.com/fekuna/omnipos-inventory-service/internal/sale/handler"
	saleUCPkg "github.com/fekuna/omnipos-inventory-service/internal/sale/usecase"

	rcvH "github.com/fekuna/omnipos-inventory-service/internal/receiving/handler"
	rcvListenerPkg "github.com/fekuna/omnipos-inventory-service/internal/receiving/listener"
	rcvUCPkg "github.com/fekuna/omnipos-inventory-service/internal/receiving/usecase"

	syncH "github.com/fekuna/omnipos-inventory-service/internal/offlinesync/handler"
	syncUCPkg "github.com/fekuna/omnipos-inventory-service/internal/offlinesync/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Telemetry
	otelProviders, err := observability.Setup(context.Background(), &observability.Config{
		Enabled:        cfg.Otel.Enabled,
		Endpoint:       cfg.Otel.Endpoint,
		AuthHeader:     cfg.Otel.AuthHeader,
		ServiceName:    cfg.Otel.ServiceName,
		ServiceVersion: cfg.Otel.ServiceVersion,
	})
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProviders.Shutdown(ctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()
	tracer := otelProviders.TracerProvider.Tracer("omnipos-inventory-service")

	// 3. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	var appLogger logger.ZapLogger
	if otelProviders.LogCore != nil {
		appLogger = logger.NewZapLogger(logConfig, otelProviders.LogCore)
	} else {
		appLogger = logger.NewZapLogger(logConfig)
	}
	defer appLogger.Sync()

	// 4. Open Store
	repos, err := openRepositories(cfg)
	if err != nil {
		appLogger.Fatal("Could not open store", zap.String("driver", cfg.Server.StoreDriver), zap.Error(err))
	}
	defer repos.Close()
	appLogger.Info("Store ready", zap.String("driver", cfg.Server.StoreDriver))

	// 5. Initialize Redis
	var (
		locker  offlinesync.Locker
		deduper alert.Deduper
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		locker = redisClient
		deduper = redisClient
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 6. Initialize Kafka
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier alert.Notifier = alert.NewLogNotifier(appLogger)
	var receipts broker.Consumer
	if cfg.Kafka.Enabled {
		producer, err := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.AlertsTopic,
		}, otelProviders.TracerProvider)
		if err != nil {
			appLogger.Fatal("Could not create Kafka producer", zap.Error(err))
		}
		defer producer.Close()
		kafkaNotifier := alert.NewKafkaNotifier(producer, deduper, cfg.Alert.DedupeWindow, appLogger)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier

		receipts, err = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ReceiptsTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		if err != nil {
			appLogger.Fatal("Could not create Kafka consumer", zap.Error(err))
		}
		defer receipts.Close()
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("alerts_topic", cfg.Kafka.AlertsTopic), zap.String("receipts_topic", cfg.Kafka.ReceiptsTopic))
	}

	// 7. Initialize UseCases
	authz := auth.NewPrincipalAuthorizer()
	invUC := invUCPkg.NewInventoryUseCase(repos.Tx, repos.Inventory, repos.Batches, repos.Branches, notifier, appLogger)
	custUC := custUCPkg.NewCustomerUseCase(repos.Tx, repos.Customers, appLogger)
	saleUC := saleUCPkg.NewSaleUseCase(saleUCPkg.Deps{
		Tx:        repos.Tx,
		Sales:     repos.Sales,
		Inventory: invUC,
		Drugs:     repos.Drugs,
		Branches:  repos.Branches,
		Customers: repos.Customers,
		Authz:     authz,
		Notifier:  notifier,
		Tracer:    tracer,
		Logger:    appLogger,
	})
	rcvUC := rcvUCPkg.NewReceivingUseCase(rcvUCPkg.Deps{
		Tx:        repos.Tx,
		Orders:    repos.Orders,
		Inventory: invUC,
		Drugs:     repos.Drugs,
		Authz:     authz,
		Tracer:    tracer,
		Logger:    appLogger,
	})
	syncUC := syncUCPkg.NewSyncUseCase(syncUCPkg.Deps{
		Config: syncUCPkg.Config{
			PullPageSize:   cfg.Sync.PullPageSize,
			MaxPushRecords: cfg.Sync.MaxPushRecords,
			PullOverlap:    cfg.Sync.PullOverlap,
			LockTTL:        cfg.Sync.LockTTL,
			LockRetries:    cfg.Sync.LockRetries,
			LockRetryDelay: cfg.Sync.LockRetryDelay,
		},
		Changes:   repos.Changes,
		Locker:    locker,
		Inventory: invUC,
		Sales:     saleUC,
		Receiving: rcvUC,
		Customers: custUC,
		Directory: repos.Customers,
		Tracer:    tracer,
		Logger:    appLogger,
	})

	// 8. Start Listener
	if receipts != nil {
		rcvListener := rcvListenerPkg.NewReceiptListener(receipts, rcvUC, appLogger)
		go rcvListener.Start(ctx)
	}

	// 9. Initialize Handlers
	invHandler := invH.NewInventoryHandler(invUC, authz, appLogger)
	saleHandler := saleH.NewSaleHandler(saleUC, appLogger)
	rcvHandler := rcvH.NewReceivingHandler(rcvUC, appLogger)
	syncHandler := syncH.NewSyncHandler(syncUC, authz, appLogger)

	// 10. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(appLogger),
			middleware.ContextInterceptor(),
			middleware.LoggingInterceptor(appLogger),
		),
	)

	// Register Services
	grpcServer.RegisterService(&invH.ServiceDesc, invHandler)
	grpcServer.RegisterService(&saleH.ServiceDesc, saleHandler)
	grpcServer.RegisterService(&rcvH.ServiceDesc, rcvHandler)
	grpcServer.RegisterService(&syncH.ServiceDesc, syncHandler)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
