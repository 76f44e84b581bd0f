package handler

import (
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SupplyHandler struct {
	service service.SupplyService
}

func NewSupplyHandler(s service.SupplyService) *SupplyHandler {
	return &SupplyHandler{service: s}
}

// GET /api/v1/supplies?search=&category=&page=&limit=
func (h *SupplyHandler) List(c *fiber.Ctx) error {
	res, err := h.service.List(c.UserContext(), repository.SupplyFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     pageQuery(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *SupplyHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	item, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(item)
}

func (h *SupplyHandler) Create(c *fiber.Ctx) error {
	var req service.CreateSupplyRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	item, err := h.service.Create(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Supply created", item)
}

func (h *SupplyHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateSupplyRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	item, err := h.service.Update(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Supply updated", item)
}

func (h *SupplyHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supply deleted"})
}

// Adjust records a manual stock entry or withdrawal.
// POST /api/v1/supplies/:id/adjustments
func (h *SupplyHandler) Adjust(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.AdjustStockRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	item, err := h.service.Adjust(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Stock adjusted", item)
}

// Movements lists the ledger entries of one supply, newest first.
// GET /api/v1/supplies/:id/movements?type=IN|OUT
func (h *SupplyHandler) Movements(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	res, err := h.service.Movements(c.UserContext(), repository.MovementFilter{
		SupplyID: &id,
		Type:     model.MovementType(c.Query("type")),
		Page:     pageQuery(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}
