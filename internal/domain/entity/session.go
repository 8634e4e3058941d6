package entity

import "time"

// CartLine línea del carrito de una sesión.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Session estado del lado del servidor asociado a un token opaco (ubicación elegida, carrito, orden pendiente).
type Session struct {
	Token              string     `json:"token"`
	UserID             string     `json:"user_id"`
	SelectedLocationID string     `json:"selected_location_id,omitempty"`
	Cart               []CartLine `json:"cart"`
	PendingOrderID     string     `json:"pending_order_id,omitempty"`
	ExpiresAt          time.Time  `json:"expires_at"`
}
