package handler

import (
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// GET /api/v1/orders?status=&target_kind=&search=&page=&limit=
func (h *OrderHandler) List(c *fiber.Ctx) error {
	res, err := h.service.List(c.UserContext(), repository.OrderFilter{
		Status:     model.OrderStatus(c.Query("status")),
		TargetKind: model.TargetKind(c.Query("target_kind")),
		Search:     c.Query("search"),
		Page:       pageQuery(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	o, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(o)
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	o, err := h.service.Create(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Order created", o)
}

func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	o, err := h.service.Update(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Order updated", o)
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}

// SetStatus moves the order to a new status; delivering a supply order credits the ledger.
// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) SetStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req SetStatusRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if req.Status == "" {
		return badRequest(c, "status is required")
	}
	res, err := h.service.SetStatus(c.UserContext(), id, req.Status, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, res.Message, res)
}
