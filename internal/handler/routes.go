package handler

import (
	"go-insumos-ws/internal/middleware"
	"go-insumos-ws/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Role      *RoleHandler
	Supply    *SupplyHandler
	Product   *ProductHandler
	Order     *OrderHandler
	Alert     *AlertHandler
	Supplier  *SupplierHandler
	Dashboard *DashboardHandler
}

// Register mounts the API under api. loginLimiter guards the login route.
func (h *Handlers) Register(api fiber.Router, auth middleware.Authenticator, loginLimiter fiber.Handler) {
	requireAuth := middleware.RequireAuth(auth)
	can := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	authGroup := api.Group("/auth")
	authGroup.Post("/login", loginLimiter, h.Auth.Login)
	authGroup.Post("/reset-password", loginLimiter, h.Auth.ResetPassword)
	authGroup.Post("/validate-token", h.Auth.ValidateToken)
	authGroup.Post("/heartbeat", requireAuth, h.Auth.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/dashboard/stats", can(model.PrivDashboardView), h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.PrivDashboardView), h.Dashboard.GetStockMovement)

	protected.Get("/supplies", h.Supply.List)
	protected.Get("/supplies/:id", h.Supply.Get)
	protected.Get("/supplies/:id/movements", h.Supply.Movements)
	protected.Post("/supplies", can(model.PrivSupplyCreate), h.Supply.Create)
	protected.Patch("/supplies/:id", can(model.PrivSupplyUpdate), h.Supply.Update)
	protected.Delete("/supplies/:id", can(model.PrivSupplyDelete), h.Supply.Delete)
	protected.Post("/supplies/:id/adjustments", can(model.PrivStockAdjust), h.Supply.Adjust)

	protected.Get("/products", h.Product.List)
	protected.Get("/products/:id", h.Product.Detail)
	protected.Post("/products", can(model.PrivProductCreate), h.Product.Create)
	protected.Patch("/products/:id", can(model.PrivProductUpdate), h.Product.Update)
	protected.Delete("/products/:id", can(model.PrivProductDelete), h.Product.Delete)
	protected.Get("/products/:id/recipe", h.Product.Recipe)
	protected.Put("/products/:id/recipe", can(model.PrivRecipeUpdate), h.Product.ReplaceRecipe)
	protected.Post("/products/:id/recipe/lines", can(model.PrivRecipeUpdate), h.Product.AddRecipeLine)
	protected.Patch("/recipe-lines/:id", can(model.PrivRecipeUpdate), h.Product.UpdateRecipeLine)
	protected.Delete("/recipe-lines/:id", can(model.PrivRecipeUpdate), h.Product.DeleteRecipeLine)

	protected.Get("/orders", h.Order.List)
	protected.Get("/orders/:id", h.Order.Get)
	protected.Post("/orders", can(model.PrivOrderCreate), h.Order.Create)
	protected.Patch("/orders/:id", can(model.PrivOrderUpdate), h.Order.Update)
	protected.Delete("/orders/:id", can(model.PrivOrderDelete), h.Order.Delete)
	protected.Patch("/orders/:id/status", can(model.PrivOrderUpdateStatus), h.Order.SetStatus)

	protected.Get("/alerts", h.Alert.List)
	protected.Get("/alerts/summary", h.Alert.Summary)

	protected.Get("/suppliers", h.Supplier.List)
	protected.Get("/suppliers/:id", h.Supplier.Get)
	protected.Post("/suppliers", can(model.PrivSupplierCreate), h.Supplier.Create)
	protected.Patch("/suppliers/:id", can(model.PrivSupplierUpdate), h.Supplier.Update)
	protected.Delete("/suppliers/:id", can(model.PrivSupplierDelete), h.Supplier.Delete)

	protected.Get("/users", can(model.PrivUserView), h.User.GetUsers)
	protected.Get("/users/:id", can(model.PrivUserView), h.User.GetUser)
	protected.Post("/users", can(model.PrivUserCreate), h.User.CreateUser)
	protected.Delete("/users/:id", can(model.PrivUserDelete), h.User.DeleteUser)
	protected.Put("/users/:id/privileges", can(model.PrivUserUpdatePrivilege), h.User.UpdateUserPrivileges)

	protected.Get("/roles", h.Role.GetRoles)
	protected.Get("/privileges", h.Role.GetPrivileges)
}
