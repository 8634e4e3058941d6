package dto

import "time"

// ValidateItem línea enviada por el POS.
type ValidateItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ValidateOrderRequest entrada de POST /orders/validate.
type ValidateOrderRequest struct {
	LocationID string         `json:"location_id"`
	Items      []ValidateItem `json:"items"`
}

// ValidateOrderResponse resultado de la validación; con éxito el stock ya quedó descontado.
type ValidateOrderResponse struct {
	Success         bool     `json:"success"`
	ReservationID   string   `json:"reservation_id,omitempty"`
	OutOfStockItems []string `json:"outOfStockItems,omitempty"`
}

// OrderLineRequest línea pedida.
type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest entrada de POST /orders. ReservationID y UserEmail solo los usa el POS.
type CreateOrderRequest struct {
	LocationID    string             `json:"location_id"`
	Products      []OrderLineRequest `json:"products"`
	PaymentMethod string             `json:"payment_method"`
	ReservationID string             `json:"reservation_id,omitempty"`
	UserEmail     string             `json:"user_email,omitempty"`
}

// UpdateStatusRequest entrada de PATCH /orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OrderLineResponse línea de una orden.
type OrderLineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID                  string              `json:"id"`
	OrderNumber         int                 `json:"order_number"`
	UserEmail           string              `json:"user_email"`
	LocationID          string              `json:"location_id"`
	LocationName        string              `json:"location_name"`
	Products            []OrderLineResponse `json:"products"`
	TotalAmount         int64               `json:"total_amount"`
	PaymentMethod       string              `json:"payment_method"`
	Status              string              `json:"status"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	EstimatedPickupTime time.Time           `json:"estimated_pickup_time"`
}

// TransitionResponse orden actualizada con el estado anterior.
type TransitionResponse struct {
	Order          OrderResponse `json:"order"`
	PreviousStatus string        `json:"previous_status"`
}
