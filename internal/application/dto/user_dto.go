package dto

import "time"

// RegisterRequest entrada para registro: el rol se deriva del dominio del email.
// LocationID asigna el operador a su punto de venta (ignorado para clientes).
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name" validate:"omitempty,max=200"`
	LocationID string `json:"location_id,omitempty"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT y usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ProfileResponse perfil del usuario autenticado. Balance solo para clientes; LocationIDs solo para operadores.
type ProfileResponse struct {
	UserResponse
	Balance     *int64   `json:"balance,omitempty"`
	LocationIDs []string `json:"location_ids,omitempty"`
}
