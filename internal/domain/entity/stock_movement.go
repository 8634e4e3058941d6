package entity

import "time"

// Motivos de movimiento de stock.
const (
	MovementReservation = "reservation" // descuento al confirmar un carrito
	MovementRelease     = "release"     // compensación de una reserva (orden fallida o cancelada)
	MovementRestock     = "restock"     // reposición hecha por un operador
)

// StockMovement registra cada cambio de stock. Las reservas agrupan sus líneas por ReservationID.
type StockMovement struct {
	ID            string
	ReservationID string
	LocationID    string
	ProductID     string
	Reason        string
	Quantity      int // negativo para reserva, positivo para liberación/reposición
	StockAfter    int
	CreatedAt     time.Time
	CreatedBy     string // email del actor
}
