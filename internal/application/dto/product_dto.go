package dto

import "time"

// CreateProductRequest entrada para crear un producto en un punto de venta.
type CreateProductRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"` // stock inicial; luego solo cambia por reserva o reposición
}

// UpdateProductRequest entrada para editar un producto. No incluye stock.
type UpdateProductRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Category *string `json:"category"`
	Price    *int64  `json:"price"`
}

// RestockRequest cantidad a reponer.
type RestockRequest struct {
	Quantity int `json:"quantity"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Stock      int       `json:"stock"`
	Price      int64     `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
