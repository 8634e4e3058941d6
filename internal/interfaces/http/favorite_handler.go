package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/application/usecase"
)

// FavoriteHandler productos favoritos del cliente.
type FavoriteHandler struct {
	uc *usecase.FavoriteUseCase
}

func NewFavoriteHandler(uc *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{uc: uc}
}

// Add godoc
// @Summary      Marcar favorito
// @Tags         favorites
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddFavoriteRequest  true  "product_id"
// @Success      201   {object}  dto.FavoriteResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/favorites [post]
func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	var in dto.AddFavoriteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ProductID == "" {
		return validation(c, "product_id es requerido")
	}
	out, err := h.uc.Add(c.UserContext(), actor(c), in.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Favoritos del usuario
// @Tags         favorites
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.FavoriteResponse
// @Router       /api/favorites [get]
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Remove godoc
// @Summary      Quitar favorito
// @Tags         favorites
// @Security     Bearer
// @Param        productId  path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/favorites/{productId} [delete]
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.UserContext(), actor(c), c.Params("productId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
