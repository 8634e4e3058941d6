package ordering

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// StockReserver operaciones del libro de stock que usa el flujo de pedidos.
type StockReserver interface {
	Reserve(ctx context.Context, locationID, actor string, lines []inventory.ReserveLine) (string, error)
	Release(ctx context.Context, reservationID, actor string) error
	Reservation(ctx context.Context, reservationID string) (*inventory.Reservation, error)
	ValidateItems(ctx context.Context, locationID, actor string, items []inventory.ValidateItem) (string, []string, error)
}

// Notifier reparte avisos (notification.Dispatcher).
type Notifier interface {
	FanOut(ctx context.Context, ev notification.Event) ([]string, error)
}

// ReceiptRenderer genera el comprobante de una orden (PDF).
type ReceiptRenderer interface {
	Render(order *entity.Order) ([]byte, error)
}
