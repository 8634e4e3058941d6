package entity

import "time"

// Estados de una orden.
const (
	OrderStatusConfirmed      = "Confirmed"
	OrderStatusInPreparation  = "In preparation"
	OrderStatusReadyForPickup = "Ready for pickup"
	OrderStatusCompleted      = "Completed"
	OrderStatusCancelled      = "Cancelled"
)

// Métodos de pago aceptados.
const (
	PaymentCard    = "card"
	PaymentBalance = "balance"
	PaymentCash    = "cash"
)

// OrderLine línea de una orden; Name y UnitPrice quedan congelados al crear la orden.
type OrderLine struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice int64
}

// Order representa un pedido para recoger en un punto de venta.
type Order struct {
	ID                  string
	OrderNumber         int // decorativo, no único
	UserEmail           string
	LocationID          string
	LocationName        string
	Products            []OrderLine
	TotalAmount         int64
	PaymentMethod       string
	Status              string
	ReservationID       string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	EstimatedPickupTime time.Time
}
