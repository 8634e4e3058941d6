package entity

import "time"

// Card tarjeta guardada de un cliente. NumberHash nunca sale hacia el cliente.
type Card struct {
	ID         string
	UserID     string
	Type       string // visa, mastercard, amex, ...
	Last4      string
	NumberHash string
	CreatedAt  time.Time
}
