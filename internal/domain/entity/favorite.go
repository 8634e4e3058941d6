package entity

import "time"

// ProductSnapshot copia de los campos del producto al momento de marcarlo como favorito.
type ProductSnapshot struct {
	Name     string
	Category string
	Price    int64
}

// Favorite relación cliente-producto, con clave (UserEmail, ProductID).
type Favorite struct {
	UserEmail  string
	ProductID  string
	LocationID string
	Snapshot   ProductSnapshot
	CreatedAt  time.Time
}
