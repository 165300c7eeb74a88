package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/JonasWeber/CheckFlow/internal/pkg/payment"
	"github.com/JonasWeber/CheckFlow/internal/pkg/usercontext"
)

// PaymentController exposes the checkout and webhook endpoints. It holds the
// injected payment service rather than reaching for process-wide state.
type PaymentController struct {
	svc *payment.Service
}

func NewPaymentController(svc *payment.Service) *PaymentController {
	return &PaymentController{svc: svc}
}

// HandleCreateCheckoutSession opens a processor-hosted checkout session and
// returns its redirect URL. The caller redirects the buyer's browser; no UI
// is rendered here.
func (pc *PaymentController) HandleCreateCheckoutSession(c *fiber.Ctx) error {
	var req payment.CreateCheckoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var caller *payment.Caller
	if userCtx := usercontext.GetUserContext(c); userCtx.IsLoggedIn {
		caller = &payment.Caller{UserID: userCtx.UserID, Email: userCtx.Email}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	result, err := pc.svc.CreateCheckoutSession(ctx, req, caller)
	if err != nil {
		if payment.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, payment.ErrPriceNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "price not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "checkout session creation failed",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"url":       result.URL,
		"sessionId": result.SessionID,
	})
}

// HandleStripeWebhook receives asynchronous processor events. The raw body
// is authenticated against the signature header before it is interpreted in
// any way; only then is the event recorded and dispatched. A reconciliation
// failure answers 500 so the sender redelivers.
func (pc *PaymentController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	event, err := pc.svc.VerifyWebhook(rawBody, signature)
	if err != nil {
		if errors.Is(err, payment.ErrMissingSignature) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing signature"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid signature"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := pc.svc.RecordWebhookEvent(ctx, payment.WebhookEventInput{
		EventID:     event.ID,
		EventType:   string(event.Type),
		PayloadJSON: string(rawBody),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook persist failed"})
	}
	if !created && stored.Processed() {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	handleErr := pc.svc.HandleEvent(ctx, event)
	_ = pc.svc.MarkWebhookProcessed(ctx, stored.ID, handleErr)
	if handleErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "event processing failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// HealthController answers liveness probes with a DB ping.
type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

func (hc *HealthController) HandleHealthz(c *fiber.Ctx) error {
	sqlDB, err := hc.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Context())
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
