package handler

import (
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	service service.SupplierService
}

func NewSupplierHandler(s service.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: s}
}

func (h *SupplierHandler) List(c *fiber.Ctx) error {
	res, err := h.service.List(c.UserContext(), repository.SupplierFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     pageQuery(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *SupplierHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	s, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(s)
}

func (h *SupplierHandler) Create(c *fiber.Ctx) error {
	var req service.CreateSupplierRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	s, err := h.service.Create(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Supplier created", s)
}

func (h *SupplierHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateSupplierRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	s, err := h.service.Update(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Supplier updated", s)
}

func (h *SupplierHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}
