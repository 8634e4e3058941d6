package notification

import (
	"context"
	"time"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// LiveHub transporte en vivo hacia las sesiones conectadas (Redis pub/sub o hub en memoria).
// Publicar a un canal sin suscriptores no es un error.
type LiveHub interface {
	Publish(ctx context.Context, channel string, n *entity.Notification) error
	// Subscribe entrega las notificaciones publicadas en cualquiera de los canales hasta que se cancele ctx
	// o se llame a la función de cierre.
	Subscribe(ctx context.Context, channels []string) (<-chan *entity.Notification, func(), error)
}

// DomainEvent evento de dominio publicado al stream externo (Kafka).
type DomainEvent struct {
	Type          string    `json:"type"`
	LocationID    string    `json:"location_id"`
	OrderID       string    `json:"order_id,omitempty"`
	ProductID     string    `json:"product_id,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Message       string    `json:"message"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher publica eventos de dominio. key agrupa por punto de venta para conservar el orden.
type EventPublisher interface {
	Publish(ctx context.Context, key string, ev DomainEvent) error
}
