package entity

import (
	"fmt"
	"time"
)

// Tipos de punto de venta.
const (
	LocationKindRestaurant = "restaurant"
	LocationKindCafe       = "cafe"
	LocationKindKiosk      = "kiosk"
)

// Location representa un restaurante, cafetería o kiosco del campus: unidad de inventario y de enrutamiento de pedidos.
type Location struct {
	ID        string
	Name      string
	Kind      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OperatorAssignment asocia una cuenta operadora a un punto de venta (muchos a muchos).
type OperatorAssignment struct {
	LocationID    string
	OperatorEmail string
	CreatedAt     time.Time
}

// LocationRoom dirección de la sala de notificaciones de un punto de venta.
func LocationRoom(locationID string) string {
	return fmt.Sprintf("location-%s", locationID)
}
