package controller

import (
	"time"

	"graphnode-be/internal/dto"
	"graphnode-be/internal/pkg/serverutils"
	"graphnode-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISyncController interface {
	RegisterRoutes(r fiber.Router)
	Pull(ctx *fiber.Ctx) error
	Push(ctx *fiber.Ctx) error
	Devices(ctx *fiber.Ctx) error
}

type syncController struct {
	service service.ISyncService
}

func NewSyncController(service service.ISyncService) ISyncController {
	return &syncController{service: service}
}

func (c *syncController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sync/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/pull", c.Pull)
	h.Post("/push", c.Push)
	h.Get("/devices", c.Devices)
}

// deviceInfo reads the optional X-Device-* headers. A missing or malformed
// device id means the call is served without touching the device registry.
func deviceInfo(ctx *fiber.Ctx) *service.DeviceInfo {
	idStr := ctx.Get("X-Device-Id")
	if idStr == "" {
		return nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	return &service.DeviceInfo{
		Id:       id,
		Name:     ctx.Get("X-Device-Name"),
		Platform: ctx.Get("X-Device-Platform"),
	}
}

func (c *syncController) Pull(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var since *time.Time
	if sinceStr := ctx.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid 'since' timestamp, expected RFC3339")
		}
		since = &parsed
	}

	res, err := c.service.Pull(ctx.Context(), userId, since, deviceInfo(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success pull", res))
}

func (c *syncController) Push(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.PushRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Push(ctx.Context(), userId, &req, deviceInfo(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success push", res))
}

func (c *syncController) Devices(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.Devices(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get devices", res))
}
