package dto

import "time"

// CreateLocationRequest entrada para crear un punto de venta.
type CreateLocationRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
	Kind string `json:"kind" validate:"required,oneof=restaurant cafe kiosk"`
}

// LocationResponse salida de un punto de venta.
type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
