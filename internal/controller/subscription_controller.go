package controller

import (
	"context"
	"strconv"

	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/pkg/serverutils"
	"freight-broker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	GetStatus(ctx *fiber.Ctx) error
	ActivateTrial(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	RegisterCharge(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	service service.ISubscriptionService
	auth    fiber.Handler
}

func NewSubscriptionController(service service.ISubscriptionService, auth fiber.Handler) ISubscriptionController {
	return &subscriptionController{service: service, auth: auth}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/subscription", c.auth)
	h.Get("/", c.GetStatus)
	h.Post("/trial", c.ActivateTrial)
	h.Post("/cancel", c.Cancel)
	h.Post("/charges", c.RegisterCharge)
}

type accountAction func(ctx context.Context, accountId int64, actor entity.Actor) (*dto.SubscriptionStatusResponse, error)

func (c *subscriptionController) GetStatus(ctx *fiber.Ctx) error {
	return c.run(ctx, "Subscription status", c.service.GetStatus)
}

func (c *subscriptionController) ActivateTrial(ctx *fiber.Ctx) error {
	return c.run(ctx, "Trial activated", c.service.ActivateTrial)
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	return c.run(ctx, "Subscription canceled", c.service.CancelSubscription)
}

func (c *subscriptionController) run(ctx *fiber.Ctx, message string, fn accountAction) error {
	actor, accountId, err := targetAccount(ctx)
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}

	res, err := fn(ctx.UserContext(), accountId, actor)
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *subscriptionController) RegisterCharge(ctx *fiber.Ctx) error {
	actor, accountId, err := targetAccount(ctx)
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}

	var req dto.RegisterChargeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.RespondError(ctx, fiber.ErrBadRequest)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return serverutils.RespondError(ctx, err)
	}

	res, err := c.service.RegisterCharge(ctx.UserContext(), accountId, actor, entity.PlanType(req.PlanType))
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Charge registered", res))
}

// targetAccount is the caller's own account unless ?accountId= names another.
// Whether the caller may act on it is decided by the service.
func targetAccount(ctx *fiber.Ctx) (entity.Actor, int64, error) {
	actor, ok := serverutils.ActorFromCtx(ctx)
	if !ok {
		return entity.Actor{}, 0, fiber.ErrUnauthorized
	}

	raw := ctx.Query("accountId")
	if raw == "" {
		return actor, actor.Id, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return entity.Actor{}, 0, fiber.NewError(fiber.StatusBadRequest, "invalid accountId")
	}
	return actor, id, nil
}
