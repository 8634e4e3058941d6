package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/application/usecase"
)

// CardHandler tarjetas guardadas y saldo del cliente.
type CardHandler struct {
	uc *usecase.CardUseCase
}

func NewCardHandler(uc *usecase.CardUseCase) *CardHandler {
	return &CardHandler{uc: uc}
}

// Add godoc
// @Summary      Guardar tarjeta
// @Description  El número se valida con Luhn y solo se conservan los últimos 4 dígitos y un hash.
// @Tags         cards
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddCardRequest  true  "número y tipo"
// @Success      201   {object}  dto.CardResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cards [post]
func (h *CardHandler) Add(c *fiber.Ctx) error {
	var in dto.AddCardRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Number == "" {
		return validation(c, "number es requerido")
	}
	out, err := h.uc.Add(c.UserContext(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Tarjetas del cliente
// @Tags         cards
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CardResponse
// @Router       /api/cards [get]
func (h *CardHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar tarjeta
// @Tags         cards
// @Security     Bearer
// @Param        id   path  string  true  "ID de la tarjeta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cards/{id} [delete]
func (h *CardHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Balance godoc
// @Summary      Saldo del cliente
// @Tags         balance
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/balance [get]
func (h *CardHandler) Balance(c *fiber.Ctx) error {
	out, err := h.uc.Balance(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// TopUp godoc
// @Summary      Recargar saldo
// @Tags         balance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TopUpRequest  true  "monto y tarjeta"
// @Success      200   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/balance/top-up [post]
func (h *CardHandler) TopUp(c *fiber.Ctx) error {
	var in dto.TopUpRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Amount <= 0 || in.CardID == "" {
		return validation(c, "amount > 0 y card_id son requeridos")
	}
	out, err := h.uc.TopUp(c.UserContext(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
