package handler

import (
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// List returns products with their producible units and stock status.
// GET /api/v1/products?search=&category=&page=&limit=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	res, err := h.service.List(c.UserContext(), repository.ProductFilter{
		Search:   c.Query("search"),
		Category: model.ProductCategory(c.Query("category")),
		Page:     pageQuery(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

// Detail returns the product with recipe, producible_units and stock_status.
// GET /api/v1/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	v, err := h.service.Detail(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(v)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	v, err := h.service.Create(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Product created", v)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateProductRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	v, err := h.service.Update(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Product updated", v)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GET /api/v1/products/:id/recipe
func (h *ProductHandler) Recipe(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	a, err := h.service.Recipe(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(a)
}

// ReplaceRecipe swaps the whole recipe in one step.
// PUT /api/v1/products/:id/recipe
func (h *ProductHandler) ReplaceRecipe(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.ReplaceRecipeRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	v, err := h.service.ReplaceRecipe(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Recipe replaced", v)
}

// POST /api/v1/products/:id/recipe/lines
func (h *ProductHandler) AddRecipeLine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.RecipeLineInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	v, err := h.service.AddRecipeLine(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Recipe line added", v)
}

// PATCH /api/v1/recipe-lines/:id
func (h *ProductHandler) UpdateRecipeLine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateRecipeLineRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	v, err := h.service.UpdateRecipeLine(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Recipe line updated", v)
}

// DELETE /api/v1/recipe-lines/:id
func (h *ProductHandler) DeleteRecipeLine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	v, err := h.service.DeleteRecipeLine(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Recipe line removed", v)
}
