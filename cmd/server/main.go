package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/opena2a/rpc-capabilities/internal/application"
	"github.com/opena2a/rpc-capabilities/internal/config"
	"github.com/opena2a/rpc-capabilities/internal/domain"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/auth"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/database"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/metrics"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/repository"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/store"
	httptransport "github.com/opena2a/rpc-capabilities/internal/interfaces/http"
	"github.com/opena2a/rpc-capabilities/internal/interfaces/http/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	var audit domain.AuditRecorder = domain.NoopAuditRecorder{}
	pgCfg := database.NewPostgresConfig()
	if pgCfg.Configured() {
		db, err := database.Connect(pgCfg)
		if err != nil {
			log.Fatal("failed to connect to audit database:", err)
		}
		defer db.Close()

		if err := runMigrations(db); err != nil {
			log.Fatal("audit database migrations failed:", err)
		}
		audit = repository.NewGrantAuditRepository(sqlx.NewDb(db, "postgres"))
		log.Println("audit sink: postgres connected")
	} else {
		log.Println("audit sink: disabled (POSTGRES_HOST/POSTGRES_DB not set)")
	}

	var mirror *store.RedisMirror
	if cfg.Redis.Configured() {
		redisClient, err := initRedis(cfg)
		if err != nil {
			log.Printf("redis connection failed, continuing without a permission mirror: %v", err)
		} else {
			defer redisClient.Close()
			mirror, err = store.NewRedisMirror(redisClient)
			if err != nil {
				log.Printf("redis mirror init failed, continuing without one: %v", err)
				mirror = nil
			} else {
				log.Println("permission mirror: redis connected")
			}
		}
	} else {
		log.Println("permission mirror: disabled (REDIS_HOST not set)")
	}

	permStore := application.NewPermissionStore(store.NewMemoryStateContainer(store.EmptyState()), mirror)
	jwtService := auth.NewJWTService()
	recorder := metrics.Recorder{}
	broker := application.NewApprovalBroker()

	approvalFunc := func(ctx context.Context, req domain.PermissionRequest) (map[string]domain.RequestedPermission, error) {
		ctx, cancel := context.WithTimeout(ctx, cfg.Capabilities.ApprovalTimeout)
		defer cancel()
		return broker.Await(ctx, req)
	}

	controller, err := application.NewController(application.Config{
		SafeMethods:         cfg.Capabilities.SafeMethods,
		RestrictedMethods:   exampleRestrictedMethods(),
		MethodPrefix:        cfg.Capabilities.MethodPrefix,
		RequestUserApproval: approvalFunc,
		AuditRecorder:       audit,
		MetricsRecorder:     recorder,
		Store:               permStore,
	})
	if err != nil {
		log.Fatal("failed to build controller:", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "rpc-capabilities",
		ErrorHandler: customErrorHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	allowedOrigins := []string{"http://localhost:3000"}
	if custom := os.Getenv("ALLOWED_ORIGINS"); custom != "" {
		allowedOrigins = []string{custom}
	}

	httptransport.RegisterRoutes(app, httptransport.Deps{
		RPC:            handlers.NewRPCHandlers(controller),
		Admin:          handlers.NewAdminHandlers(controller, broker),
		JWT:            jwtService,
		AllowedOrigins: allowedOrigins,
	})

	port := cfg.Server.Port
	log.Printf("rpc-capabilities listening on :%s", port)

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("server forced to shutdown:", err)
	}
	log.Println("server exited")
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func customErrorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("error [%d] %s %s - %v", code, c.Method(), c.Path(), err)

	return c.Status(code).JSON(fiber.Map{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}
