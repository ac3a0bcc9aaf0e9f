package distributor

import (
	"context"
	"crypto/subtle"

	"crowdin-distributor/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WebhookSecretHeader carries the shared secret configured on the Crowdin webhook.
const WebhookSecretHeader = "X-Webhook-Secret"

// webhookPayload is the part of a Crowdin webhook body that is logged.
type webhookPayload struct {
	Event  string `json:"event"`
	Events []struct {
		Event string `json:"event"`
	} `json:"events"`
}

func (p webhookPayload) names() []string {
	var out []string
	if p.Event != "" {
		out = append(out, p.Event)
	}
	for _, e := range p.Events {
		out = append(out, e.Event)
	}
	return out
}

// Handler serves the distributor HTTP endpoints.
type Handler struct {
	service *Service
	secret  string
	// base outlives single requests so background passes are not cut short.
	base context.Context
}

// NewHandler creates a new HTTP handler. Passes triggered by webhooks run on base.
func NewHandler(base context.Context, service *Service, webhookSecret string) *Handler {
	return &Handler{service: service, secret: webhookSecret, base: base}
}

// RegisterRoutes registers the distributor routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)
	app.Post("/webhooks/crowdin", h.HandleWebhook)
	app.Get("/runs/last", h.HandleLastRun)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleWebhook starts a reconciliation pass. With ?wait=true the response
// carries the pass report; otherwise it returns 202 immediately.
func (h *Handler) HandleWebhook(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.Get(WebhookSecretHeader)), []byte(h.secret)) != 1 {
		l.Warn("Rejected webhook with invalid secret")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid webhook secret"})
	}

	var payload webhookPayload
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			l.Warn("Ignoring unreadable webhook body", zap.Error(err))
		}
	}
	l.Info("Webhook received", zap.Strings("events", payload.names()))

	done := h.service.Trigger(h.base)
	if c.QueryBool("wait") {
		select {
		case report := <-done:
			return c.JSON(report)
		case <-c.Context().Done():
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "request cancelled"})
		}
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// HandleLastRun returns the most recent pass report.
func (h *Handler) HandleLastRun(c *fiber.Ctx) error {
	report := h.service.Last()
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no run has finished yet"})
	}
	return c.JSON(report)
}
