package handler

import (
	"go-insumos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	service service.AlertService
}

func NewAlertHandler(s service.AlertService) *AlertHandler {
	return &AlertHandler{service: s}
}

// List returns the ranked alert list.
// GET /api/v1/alerts?category=all|low-stock|out-of-stock|expiring-soon|expired
func (h *AlertHandler) List(c *fiber.Ctx) error {
	alerts, err := h.service.List(c.UserContext(), c.Query("category"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": alerts, "total": len(alerts)})
}

// GET /api/v1/alerts/summary
func (h *AlertHandler) Summary(c *fiber.Ctx) error {
	sum, err := h.service.Summary(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sum)
}
