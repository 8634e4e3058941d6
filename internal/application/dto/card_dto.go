package dto

import "time"

// AddCardRequest número completo; nunca se devuelve ni se guarda en claro.
type AddCardRequest struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

// CardResponse tarjeta enmascarada.
type CardResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Last4     string    `json:"last4"`
	CreatedAt time.Time `json:"created_at"`
}

// TopUpRequest recarga de saldo en pesos.
type TopUpRequest struct {
	Amount int64  `json:"amount"`
	CardID string `json:"card_id"`
}

// BalanceResponse saldo actual.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}
