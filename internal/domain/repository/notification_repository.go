package repository

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// NotificationRepository registro durable de notificaciones.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	// ListByRecipients notificaciones de cualquiera de las direcciones, más recientes primero.
	ListByRecipients(ctx context.Context, recipients []string) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead marca como leídas todas las notificaciones de las direcciones y devuelve cuántas cambió.
	MarkAllRead(ctx context.Context, recipients []string) (int, error)
	Delete(ctx context.Context, id string) error
}
