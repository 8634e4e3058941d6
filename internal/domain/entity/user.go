package entity

import "time"

// Roles válidos para User. Se derivan del dominio del correo (ver domain/role).
const (
	RoleClient   = "client"
	RoleOperator = "operator"
)

// User representa una cuenta de la plataforma: cliente (estudiante/docente) u operador de un punto de venta.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // client, operator
	Balance      int64  // saldo en pesos (unidad mínima), solo clientes
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
