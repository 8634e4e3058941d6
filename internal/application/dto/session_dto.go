package dto

import "time"

// SelectLocationRequest punto de venta elegido en el mapa.
type SelectLocationRequest struct {
	LocationID string `json:"location_id"`
}

// SetCartRequest contenido completo del carrito.
type SetCartRequest struct {
	Items []OrderLineRequest `json:"items"`
}

// SessionResponse estado de la sesión.
type SessionResponse struct {
	Token              string             `json:"token"`
	SelectedLocationID string             `json:"selected_location_id,omitempty"`
	Cart               []OrderLineRequest `json:"cart"`
	PendingOrderID     string             `json:"pending_order_id,omitempty"`
	ExpiresAt          time.Time          `json:"expires_at"`
}

// SetPendingOrderRequest orden recién creada desde el carrito.
type SetPendingOrderRequest struct {
	OrderID string `json:"order_id"`
}
