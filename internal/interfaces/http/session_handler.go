package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/application/usecase"
)

// HeaderSessionToken cabecera con el token opaco de la sesión de carrito.
const HeaderSessionToken = "X-Session-Token"

// SessionHandler sesión de carrito del lado del servidor.
type SessionHandler struct {
	uc *usecase.SessionUseCase
}

func NewSessionHandler(uc *usecase.SessionUseCase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir sesión de carrito
// @Tags         session
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.SessionResponse
// @Router       /api/session [post]
func (h *SessionHandler) Open(c *fiber.Ctx) error {
	out, err := h.uc.Open(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(HeaderSessionToken, out.Token)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Estado de la sesión
// @Tags         session
// @Security     Bearer
// @Produce      json
// @Param        X-Session-Token  header  string  true  "token de sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/session [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), actor(c), c.Get(HeaderSessionToken))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SelectLocation godoc
// @Summary      Elegir punto de venta
// @Description  Cambiar de punto de venta vacía el carrito.
// @Tags         session
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Session-Token  header  string                     true  "token de sesión"
// @Param        body             body    dto.SelectLocationRequest  true  "location_id"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/session/location [put]
func (h *SessionHandler) SelectLocation(c *fiber.Ctx) error {
	var in dto.SelectLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SelectLocation(c.UserContext(), actor(c), c.Get(HeaderSessionToken), in.LocationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetCart godoc
// @Summary      Reemplazar el carrito
// @Tags         session
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Session-Token  header  string              true  "token de sesión"
// @Param        body             body    dto.SetCartRequest  true  "items"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/session/cart [put]
func (h *SessionHandler) SetCart(c *fiber.Ctx) error {
	var in dto.SetCartRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetCart(c.UserContext(), actor(c), c.Get(HeaderSessionToken), in.Items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetPendingOrder godoc
// @Summary      Registrar la orden creada desde el carrito
// @Tags         session
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Session-Token  header  string                      true  "token de sesión"
// @Param        body             body    dto.SetPendingOrderRequest  true  "order_id"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/session/pending-order [put]
func (h *SessionHandler) SetPendingOrder(c *fiber.Ctx) error {
	var in dto.SetPendingOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.OrderID == "" {
		return validation(c, "order_id es requerido")
	}
	out, err := h.uc.SetPendingOrder(c.UserContext(), actor(c), c.Get(HeaderSessionToken), in.OrderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar sesión de carrito
// @Tags         session
// @Security     Bearer
// @Param        X-Session-Token  header  string  true  "token de sesión"
// @Success      204
// @Router       /api/session [delete]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	if err := h.uc.Close(c.UserContext(), actor(c), c.Get(HeaderSessionToken)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
