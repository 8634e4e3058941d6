package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sabanapos/pedidos-api/internal/application/analytics"
)

// DashboardHandler resumen de ventas del punto de venta.
type DashboardHandler struct {
	uc *analytics.DashboardUseCase
}

func NewDashboardHandler(uc *analytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen de ventas del punto de venta
// @Description  Ventas de hoy y del mes (sin cancelados), pedidos por estado y Top-5 productos del mes.
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del punto de venta"
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/dashboard [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	out, err := h.uc.GetSummary(c.UserContext(), GetEmail(c), GetRole(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
