package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes sobre PostgreSQL. Las líneas se guardan como JSONB.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para órdenes.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

type orderLineRow struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

const orderColumns = `id, order_number, user_email, location_id, location_name, products, total_amount,
	payment_method, status, COALESCE(reservation_id::text, ''), created_at, updated_at, estimated_pickup_time`

// Create persiste la orden con sus líneas congeladas.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	lines := make([]orderLineRow, 0, len(o.Products))
	for _, l := range o.Products {
		lines = append(lines, orderLineRow(l))
	}
	products, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	var reservation any
	if o.ReservationID != "" {
		reservation = o.ReservationID
	}
	query := `
		INSERT INTO orders (id, order_number, user_email, location_id, location_name, products, total_amount,
			payment_method, status, reservation_id, created_at, updated_at, estimated_pickup_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.UserEmail, o.LocationID, o.LocationName, products, o.TotalAmount,
		o.PaymentMethod, o.Status, reservation, o.CreatedAt, o.UpdatedAt, o.EstimatedPickupTime,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if constraintName(err) == "orders_reservation_uniq" {
				return fmt.Errorf("reserva %s ya tiene orden: %w", o.ReservationID, domain.ErrConflict)
			}
			return domain.ErrDuplicate
		}
		return wrap("insert order", err)
	}
	return nil
}

// GetByID obtiene una orden. nil, nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, wrap("get order", err)
	}
	return o, nil
}

// ListByUser órdenes del cliente, más recientes primero.
func (r *OrderRepo) ListByUser(ctx context.Context, userEmail string) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE lower(user_email) = lower($1) ORDER BY created_at DESC`
	return r.list(ctx, query, userEmail)
}

// ListByLocation órdenes del punto de venta; statuses vacío = todas.
func (r *OrderRepo) ListByLocation(ctx context.Context, locationID string, statuses []string) ([]*entity.Order, error) {
	if len(statuses) == 0 {
		query := `SELECT ` + orderColumns + ` FROM orders WHERE location_id = $1 ORDER BY created_at DESC`
		return r.list(ctx, query, locationID)
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE location_id = $1 AND status = ANY($2) ORDER BY created_at DESC`
	return r.list(ctx, query, locationID, statuses)
}

// UpdateStatus cambio condicional: solo aplica si el estado actual sigue siendo from.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`, id, from, to, at)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return wrap("update order status", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return wrap("update order status", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *OrderRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, wrap("list orders", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, wrap("scan order", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list orders", err)
	}
	return list, nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o        entity.Order
		products []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserEmail, &o.LocationID, &o.LocationName, &products, &o.TotalAmount,
		&o.PaymentMethod, &o.Status, &o.ReservationID, &o.CreatedAt, &o.UpdatedAt, &o.EstimatedPickupTime,
	)
	if err != nil {
		return nil, err
	}
	var lines []orderLineRow
	if err := json.Unmarshal(products, &lines); err != nil {
		return nil, err
	}
	o.Products = make([]entity.OrderLine, 0, len(lines))
	for _, l := range lines {
		o.Products = append(o.Products, entity.OrderLine(l))
	}
	return &o, nil
}
