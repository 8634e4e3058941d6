package entity

import "time"

// Product representa un producto del menú de un punto de venta.
// Stock solo lo modifica el libro de stock (reserva, liberación, reposición); Version avanza en cada cambio de stock.
type Product struct {
	ID         string
	LocationID string
	Name       string
	Category   string
	Stock      int
	Price      int64 // pesos
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
