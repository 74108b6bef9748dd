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

type IFreightController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Reactivate(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type freightController struct {
	service service.IFreightService
	auth    fiber.Handler
}

func NewFreightController(service service.IFreightService, auth fiber.Handler) IFreightController {
	return &freightController{service: service, auth: auth}
}

func (c *freightController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/freights", c.auth)
	h.Post("/", c.Create)
	h.Get("/", c.List)
	h.Get("/:id", c.Get)
	h.Post("/:id/reactivate", c.Reactivate)
	h.Post("/:id/complete", c.Complete)
	h.Post("/:id/cancel", c.Cancel)
}

func (c *freightController) Create(ctx *fiber.Ctx) error {
	actor, ok := serverutils.ActorFromCtx(ctx)
	if !ok {
		return serverutils.RespondError(ctx, fiber.ErrUnauthorized)
	}

	var req dto.CreateFreightRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.RespondError(ctx, fiber.ErrBadRequest)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return serverutils.RespondError(ctx, err)
	}

	res, err := c.service.Create(ctx.UserContext(), actor, &req)
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Freight created", res))
}

func (c *freightController) List(ctx *fiber.Ctx) error {
	actor, ok := serverutils.ActorFromCtx(ctx)
	if !ok {
		return serverutils.RespondError(ctx, fiber.ErrUnauthorized)
	}

	var query dto.ListFreightsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.RespondError(ctx, fiber.ErrBadRequest)
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return serverutils.RespondError(ctx, err)
	}

	res, err := c.service.ListByOwner(ctx.UserContext(), actor, query)
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching freights", res))
}

func (c *freightController) Get(ctx *fiber.Ctx) error {
	id, err := freightID(ctx)
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}

	res, err := c.service.Get(ctx.UserContext(), id)
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success fetching freight", res))
}

func (c *freightController) Reactivate(ctx *fiber.Ctx) error {
	return c.transition(ctx, "Freight reactivated", c.service.Reactivate)
}

func (c *freightController) Complete(ctx *fiber.Ctx) error {
	return c.transition(ctx, "Freight completed", c.service.Complete)
}

func (c *freightController) Cancel(ctx *fiber.Ctx) error {
	return c.transition(ctx, "Freight cancelled", c.service.Cancel)
}

type freightTransition func(ctx context.Context, id int64, actor entity.Actor) (*dto.FreightResponse, error)

func (c *freightController) transition(ctx *fiber.Ctx, message string, fn freightTransition) error {
	actor, ok := serverutils.ActorFromCtx(ctx)
	if !ok {
		return serverutils.RespondError(ctx, fiber.ErrUnauthorized)
	}
	id, err := freightID(ctx)
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}

	res, err := fn(ctx.UserContext(), id, actor)
	if err != nil {
		return serverutils.RespondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func freightID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid freight id")
	}
	return id, nil
}
