package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInsufficientFunds  = errors.New("saldo insuficiente")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrInvalidDomain      = errors.New("dominio de correo no permitido")
	ErrTransientStorage   = errors.New("almacenamiento no disponible temporalmente")
	ErrReservationMissing = errors.New("la orden requiere una reserva de stock previa")
)

// StockShortage describe una línea que no alcanzó stock.
type StockShortage struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

// InsufficientStockError agrupa todas las líneas faltantes de una reserva (no hay commit parcial).
type InsufficientStockError struct {
	Items []StockShortage
}

func (e *InsufficientStockError) Error() string {
	names := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		names = append(names, it.Name)
	}
	return fmt.Sprintf("%s: %s", ErrInsufficientStock.Error(), strings.Join(names, ", "))
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// Names nombres de los productos sin stock, en el orden reportado.
func (e *InsufficientStockError) Names() []string {
	out := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		out = append(out, it.Name)
	}
	return out
}

// TransitionError transición rechazada por la tabla de estados.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %q -> %q", ErrInvalidTransition.Error(), e.From, e.To)
}

// Is permite errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
