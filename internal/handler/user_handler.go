package handler

import (
	"go-insumos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.userService.CreateUser(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return created(c, "User created successfully", user)
}

// UpdateUserPrivileges handles privilege assignment
// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.userService.UpdateUserPrivileges(c.UserContext(), userID, req.Privileges, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Privileges updated successfully", user)
}

// GetUsers returns all users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.userService.DeleteUser(c.UserContext(), userID, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
