package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo movimientos de stock (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create registra un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, reservation_id, location_id, product_id, reason, quantity, stock_after, created_at, created_by)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ReservationID, m.LocationID, m.ProductID, m.Reason, m.Quantity, m.StockAfter, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert stock movement", err)
	}
	return nil
}

// ListByReservation movimientos de una reserva en orden de creación.
func (r *StockMovementRepo) ListByReservation(ctx context.Context, reservationID string) ([]*entity.StockMovement, error) {
	if _, err := uuid.Parse(reservationID); err != nil {
		return nil, nil
	}
	query := `
		SELECT id, reservation_id::text, location_id, product_id, reason, quantity, stock_after, created_at, created_by
		FROM stock_movements WHERE reservation_id = $1::uuid ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, reservationID)
	if err != nil {
		return nil, wrap("list stock movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ReservationID, &m.LocationID, &m.ProductID, &m.Reason, &m.Quantity, &m.StockAfter, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, wrap("scan stock movement", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
