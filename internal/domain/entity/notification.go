package entity

import "time"

// Tipos de notificación.
const (
	NotificationOrder           = "order"
	NotificationOrderStatus     = "order_status"
	NotificationStock           = "stock"
	NotificationFavoriteProduct = "favorite_product"
)

// Notification registro durable de un aviso. Solo el destinatario cambia Read o la elimina.
type Notification struct {
	ID        string
	Recipient string // email o "location-{id}"
	Type      string
	Message   string
	OrderID   string
	Read      bool
	Timestamp time.Time
}
