package handler

import (
	"go-insumos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	userService service.UserService
}

func NewRoleHandler(userService service.UserService) *RoleHandler {
	return &RoleHandler{userService: userService}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.userService.Roles(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(roles)
}

// GetPrivileges returns every privilege code that can be granted
// GET /api/v1/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.userService.Privileges(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(privileges)
}
