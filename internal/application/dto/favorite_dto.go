package dto

import "time"

// AddFavoriteRequest entrada para marcar un favorito.
type AddFavoriteRequest struct {
	ProductID string `json:"product_id"`
}

// FavoriteResponse favorito con la copia del producto.
type FavoriteResponse struct {
	ProductID  string    `json:"product_id"`
	LocationID string    `json:"location_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Price      int64     `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
}
