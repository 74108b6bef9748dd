package controller

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/pkg/serverutils"
	"freight-broker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const SignatureHeader = "X-Webhook-Signature"

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Webhook(ctx *fiber.Ctx) error
}

// WebhookAuth controls signature checking. With an empty Secret every
// delivery is refused unless AllowUnsigned is set.
type WebhookAuth struct {
	Secret        string
	AllowUnsigned bool
}

type paymentController struct {
	service service.IReconcilerService
	auth    WebhookAuth
	logger  logger.ILogger
}

func NewPaymentController(service service.IReconcilerService, auth WebhookAuth, log logger.ILogger) IPaymentController {
	return &paymentController{service: service, auth: auth, logger: log}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")
	h.Post("/pix/webhook", c.Webhook)
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	raw := append([]byte(nil), ctx.Body()...)

	if c.auth.Secret == "" && !c.auth.AllowUnsigned {
		c.logger.Error(logger.ModuleReconciler, "Webhook refused, no signing secret configured", nil)
		return ctx.Status(fiber.StatusServiceUnavailable).
			JSON(serverutils.ErrorResponse(serverutils.CodeWebhookNotConfigured, "webhook is not configured"))
	}

	if c.auth.Secret != "" && !ValidSignature(c.auth.Secret, raw, ctx.Get(SignatureHeader)) {
		c.logger.Warn(logger.ModuleReconciler, "Webhook signature rejected", map[string]interface{}{
			"ip": ctx.IP(),
		})
		return ctx.Status(fiber.StatusUnauthorized).
			JSON(serverutils.ErrorResponse(serverutils.CodeInvalidSignature, "invalid webhook signature"))
	}

	ack, err := c.service.HandleEvent(ctx.UserContext(), raw)
	if err != nil {
		// 5xx makes the provider redeliver
		return serverutils.RespondRetryable(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Event acknowledged", dto.WebhookAckResponse{
		Outcome:  string(ack.Outcome),
		ChargeId: ack.ChargeId,
	}))
}

// ValidSignature checks a hex HMAC-SHA256 of body.
func ValidSignature(secret string, body []byte, signature string) bool {
	given, err := hex.DecodeString(signature)
	if err != nil || len(given) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(given, mac.Sum(nil))
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
