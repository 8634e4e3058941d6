package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/application/ordering"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// OrderHandler checkout, validación en el POS y ciclo de vida de órdenes.
type OrderHandler struct {
	svc *ordering.Service
}

// NewOrderHandler construye el handler.
func NewOrderHandler(svc *ordering.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Validate godoc
// @Summary      Validar y reservar stock de un pedido (POS)
// @Description  Todo o nada: si falta stock de cualquier línea no se descuenta nada y se listan los productos agotados.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateOrderRequest  true  "location_id, items"
// @Success      200   {object}  dto.ValidateOrderResponse
// @Failure      400   {object}  dto.ValidateOrderResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/orders/validate [post]
func (h *OrderHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.LocationID == "" || len(in.Items) == 0 {
		return validation(c, "location_id e items son requeridos")
	}
	items := make([]inventory.ValidateItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.ValidateItem{ID: it.ID, Name: it.Name, Quantity: it.Quantity})
	}
	resID, outOfStock, err := h.svc.ValidateItems(c.UserContext(), orderActor(c), in.LocationID, items)
	if len(outOfStock) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidateOrderResponse{Success: false, OutOfStockItems: outOfStock})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ValidateOrderResponse{Success: true, ReservationID: resID})
}

// Create godoc
// @Summary      Crear pedido
// @Description  Cliente: reserva stock, cobra si paga con saldo, crea la orden y avisa al punto de venta.
// @Description  Operador (POS): crea la orden sobre una reserva previa de /orders/validate.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "location_id, products, payment_method"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.StockErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.LocationID == "" || len(in.Products) == 0 {
		return validation(c, "location_id y products son requeridos")
	}
	lines := make([]ordering.LineInput, 0, len(in.Products))
	for _, p := range in.Products {
		lines = append(lines, ordering.LineInput{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	var (
		o   *entity.Order
		err error
	)
	switch GetRole(c) {
	case entity.RoleClient:
		o, err = h.svc.Checkout(c.UserContext(), ordering.CheckoutInput{
			Customer:      orderActor(c),
			LocationID:    in.LocationID,
			Lines:         lines,
			PaymentMethod: in.PaymentMethod,
		})
	case entity.RoleOperator:
		o, err = h.svc.Create(c.UserContext(), ordering.CreateInput{
			Operator:      orderActor(c),
			UserEmail:     in.UserEmail,
			LocationID:    in.LocationID,
			Lines:         lines,
			PaymentMethod: in.PaymentMethod,
			ReservationID: in.ReservationID,
		})
	default:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin acceso a este recurso"})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(o))
}

// UpdateStatus godoc
// @Summary      Cambiar el estado de un pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la orden"
// @Param        body  body  dto.UpdateStatusRequest  true  "nuevo estado"
// @Success      200   {object}  dto.TransitionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Status == "" {
		return validation(c, "status es requerido")
	}
	res, err := h.svc.Transition(c.UserContext(), c.Params("id"), in.Status, orderActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.TransitionResponse{Order: toOrderResponse(res.Order), PreviousStatus: res.From})
}

// List godoc
// @Summary      Pedidos de un cliente
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        userEmail  query  string  false  "email del cliente (por defecto el propio)"
// @Success      200  {array}   dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.svc.GetByUser(c.UserContext(), orderActor(c), c.Query("userEmail"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponses(orders))
}

// Pending godoc
// @Summary      Pedidos en curso del usuario
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders/pending [get]
func (h *OrderHandler) Pending(c *fiber.Ctx) error {
	orders, err := h.svc.GetPending(c.UserContext(), GetEmail(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponses(orders))
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.svc.GetByID(c.UserContext(), orderActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// Receipt godoc
// @Summary      Comprobante PDF del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	o, pdf, err := h.svc.Receipt(c.UserContext(), orderActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="pedido-%d.pdf"`, o.OrderNumber))
	return c.Send(pdf)
}

// ListByLocation godoc
// @Summary      Pedidos de un punto de venta
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del punto de venta"
// @Param        status  query  string  false  "estados separados por coma"
// @Success      200  {array}   dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/orders [get]
func (h *OrderHandler) ListByLocation(c *fiber.Ctx) error {
	var statuses []string
	for _, s := range strings.Split(c.Query("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, s)
		}
	}
	orders, err := h.svc.ListByLocation(c.UserContext(), orderActor(c), c.Params("id"), statuses)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponses(orders))
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Products))
	for _, l := range o.Products {
		lines = append(lines, dto.OrderLineResponse{ProductID: l.ProductID, Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return dto.OrderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		UserEmail:           o.UserEmail,
		LocationID:          o.LocationID,
		LocationName:        o.LocationName,
		Products:            lines,
		TotalAmount:         o.TotalAmount,
		PaymentMethod:       o.PaymentMethod,
		Status:              o.Status,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		EstimatedPickupTime: o.EstimatedPickupTime,
	}
}

func toOrderResponses(orders []*entity.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}
