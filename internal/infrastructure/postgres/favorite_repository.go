package postgres

import (
	"context"
	"encoding/json"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.FavoriteRepository = (*FavoriteRepo)(nil)

// FavoriteRepo favoritos con la instantánea del producto en JSONB.
type FavoriteRepo struct {
	q Querier
}

func NewFavoriteRepository(q Querier) *FavoriteRepo {
	return &FavoriteRepo{q: q}
}

type snapshotRow struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
}

// Upsert marca el favorito o refresca su instantánea si ya existía.
func (r *FavoriteRepo) Upsert(ctx context.Context, fav *entity.Favorite) error {
	snapshot, err := json.Marshal(snapshotRow(fav.Snapshot))
	if err != nil {
		return err
	}
	query := `
		INSERT INTO favorites (user_email, product_id, location_id, snapshot, created_at)
		VALUES (lower($1), $2, $3, $4, $5)
		ON CONFLICT (user_email, product_id) DO UPDATE
		SET location_id = EXCLUDED.location_id, snapshot = EXCLUDED.snapshot`
	if _, err := r.q.Exec(ctx, query, fav.UserEmail, fav.ProductID, fav.LocationID, snapshot, fav.CreatedAt); err != nil {
		return wrap("upsert favorite", err)
	}
	return nil
}

func (r *FavoriteRepo) Delete(ctx context.Context, userEmail, productID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM favorites WHERE user_email = lower($1) AND product_id = $2`, userEmail, productID)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return wrap("delete favorite", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FavoriteRepo) ListByUser(ctx context.Context, userEmail string) ([]*entity.Favorite, error) {
	query := `
		SELECT user_email, product_id, location_id, snapshot, created_at
		FROM favorites WHERE user_email = lower($1) ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, userEmail)
	if err != nil {
		return nil, wrap("list favorites", err)
	}
	defer rows.Close()
	var list []*entity.Favorite
	for rows.Next() {
		var (
			f   entity.Favorite
			raw []byte
		)
		if err := rows.Scan(&f.UserEmail, &f.ProductID, &f.LocationID, &raw, &f.CreatedAt); err != nil {
			return nil, wrap("scan favorite", err)
		}
		var snap snapshotRow
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, err
		}
		f.Snapshot = entity.ProductSnapshot(snap)
		list = append(list, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list favorites", err)
	}
	return list, nil
}
