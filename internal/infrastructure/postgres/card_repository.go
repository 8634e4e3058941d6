package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.CardRepository = (*CardRepo)(nil)

// CardRepo tarjetas guardadas. Solo se persiste el hash bcrypt del número.
type CardRepo struct {
	q Querier
}

func NewCardRepository(q Querier) *CardRepo {
	return &CardRepo{q: q}
}

func (r *CardRepo) Create(ctx context.Context, c *entity.Card) error {
	query := `
		INSERT INTO cards (id, user_id, type, last4, number_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, c.ID, c.UserID, c.Type, c.Last4, c.NumberHash, c.CreatedAt); err != nil {
		return wrap("insert card", err)
	}
	return nil
}

func (r *CardRepo) GetByID(ctx context.Context, id string) (*entity.Card, error) {
	var c entity.Card
	err := r.q.QueryRow(ctx, `SELECT id, user_id, type, last4, number_hash, created_at FROM cards WHERE id = $1`, id).Scan(
		&c.ID, &c.UserID, &c.Type, &c.Last4, &c.NumberHash, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, wrap("get card", err)
	}
	return &c, nil
}

func (r *CardRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Card, error) {
	rows, err := r.q.Query(ctx, `SELECT id, user_id, type, last4, number_hash, created_at FROM cards WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, wrap("list cards", err)
	}
	defer rows.Close()
	var list []*entity.Card
	for rows.Next() {
		var c entity.Card
		if err := rows.Scan(&c.ID, &c.UserID, &c.Type, &c.Last4, &c.NumberHash, &c.CreatedAt); err != nil {
			return nil, wrap("scan card", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CardRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return wrap("delete card", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
