package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/fantribe/fantribe/app/controllers"
	"github.com/fantribe/fantribe/app/repository"
	"github.com/fantribe/fantribe/internal/pkg/archive"
	"github.com/fantribe/fantribe/internal/pkg/cache"
	"github.com/fantribe/fantribe/internal/pkg/cinetpay"
	"github.com/fantribe/fantribe/internal/pkg/database"
	"github.com/fantribe/fantribe/internal/pkg/env"
	"github.com/fantribe/fantribe/internal/pkg/jobqueue"
	"github.com/fantribe/fantribe/internal/pkg/media"
	"github.com/fantribe/fantribe/internal/pkg/payments"
	"github.com/fantribe/fantribe/internal/pkg/router"
)

func main() {
	app := NewApplication()

	// Background workers
	manager := jobqueue.GetManager()
	manager.Start()

	// Graceful shutdown on SIGINT/SIGTERM
	shutdownDone := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down...")
		manager.Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		close(shutdownDone)
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	if err != nil {
		log.Fatal(err)
	}
	<-shutdownDone
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())

	// Payment provider + processing service
	providerClient := cinetpay.NewClientFromEnv()
	paymentService := payments.NewServiceFromDB(database.GetDB()).
		WithEnqueuer(jobqueue.GetManager())
	controllers.InitializePaymentControllers(paymentService, providerClient)
	controllers.InitializeCheckoutControllers(providerClient)

	// Media library
	mediaClient := media.NewClientFromEnv()
	controllers.InitializeMediaControllers(mediaClient)
	jobqueue.SetMediaClient(mediaClient)

	// Cold archive (optional)
	if cfg, err := archive.LoadConfig(); err != nil {
		log.Printf("Warning: Archive configuration invalid: %v", err)
	} else if cfg.IsEnabled() {
		if client, cerr := archive.NewClient(cfg); cerr != nil {
			log.Printf("Warning: Archive client unavailable: %v", cerr)
		} else {
			jobqueue.SetArchiveClient(client)
		}
	}

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/fantribe to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		Views:     html.New(basePath+"views", ".html"),
		BodyLimit: 10 * 1024 * 1024,
	})

	// ignore and cache favicon
	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// static files
	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
