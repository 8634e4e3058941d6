package postgres

import (
	"context"
	"sort"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar una tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetForUpdate bloquea las filas de los productos (SELECT FOR UPDATE) en orden de ID.
func (r *StockRepo) GetForUpdate(ctx context.Context, locationID string, productIDs []string) ([]*entity.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	ids := validUUIDs(productIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)
	query := `
		SELECT id, location_id, name, category, stock, price, version, created_at, updated_at
		FROM products
		WHERE location_id = $1 AND id = ANY($2::uuid[])
		ORDER BY id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, locationID, ids)
	if err != nil {
		return nil, wrap("get stock for update", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.LocationID, &p.Name, &p.Category, &p.Stock, &p.Price, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, wrap("scan stock", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("get stock for update", err)
	}
	return list, nil
}

// SetStock escribe el stock con compare-and-swap sobre version.
func (r *StockRepo) SetStock(ctx context.Context, productID string, stock int, expectedVersion int64) error {
	if stock < 0 {
		return domain.ErrInsufficientStock
	}
	query := `
		UPDATE products SET stock = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3`
	tag, err := r.q.Exec(ctx, query, productID, stock, expectedVersion)
	if err != nil {
		return wrap("set stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}
