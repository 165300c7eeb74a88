package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/JonasWeber/CheckFlow/app/controllers"
	"github.com/JonasWeber/CheckFlow/internal/pkg/middleware"
)

// InstallRouter registers all routes on the app. The browser-facing API
// group answers CORS preflight and is rate limited; the webhook route stays
// outside both, its authentication is the payload signature.
func InstallRouter(app *fiber.App, db *gorm.DB, pc *controllers.PaymentController) {
	hc := controllers.NewHealthController(db)

	api := app.Group("/api", limiter.New(limiter.Config{Max: 60}), cors.New())
	api.Get("/healthz", hc.HandleHealthz)
	api.Post("/checkout/session", middleware.OptionalBearerAuth(db), pc.HandleCreateCheckoutSession)

	// Processor webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/stripe", pc.HandleStripeWebhook)
}
