package main

import (
	"fmt"
	"log"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/JonasWeber/CheckFlow/app/controllers"
	"github.com/JonasWeber/CheckFlow/internal/pkg/cache"
	"github.com/JonasWeber/CheckFlow/internal/pkg/database"
	"github.com/JonasWeber/CheckFlow/internal/pkg/env"
	"github.com/JonasWeber/CheckFlow/internal/pkg/payment"
	"github.com/JonasWeber/CheckFlow/internal/pkg/router"
)

func main() {
	app, err := NewApplication()
	if err != nil {
		log.Fatal(err)
	}
	log.Fatal(app.Listen(fmt.Sprintf("%s:%s",
		env.GetEnv("APP_HOST", "localhost"),
		env.GetEnv("APP_PORT", "4000"),
	)))
}

// NewApplication wires the injected client handles (DB, cache, processor)
// into the service and controllers and returns the configured Fiber app.
func NewApplication() (*fiber.App, error) {
	env.SetupEnvFile()

	db, err := database.Connect()
	if err != nil {
		return nil, fmt.Errorf("database setup: %w", err)
	}

	redis := cache.New(
		env.GetEnv("CACHE_HOST", "localhost"),
		env.GetEnv("CACHE_PORT", "6379"),
	)

	processor := payment.NewStripeProcessor(
		env.GetEnv("STRIPE_SECRET_KEY", ""),
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
	)
	catalog := payment.ParseCatalog(env.GetEnv("STRIPE_PRICE_IDS", ""))
	if catalog.Len() == 0 {
		log.Print("warning: STRIPE_PRICE_IDS is empty, every checkout request will fail price lookup")
	}

	svc := payment.NewServiceFromDB(db, processor, catalog, cache.NewCardStore(redis))
	pc := controllers.NewPaymentController(svc)

	app := fiber.New(fiber.Config{
		BodyLimit: 1024 * 1024, // webhooks and checkout bodies are small
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	// ROUTER
	router.InstallRouter(app, db, pc)

	return app, nil
}
