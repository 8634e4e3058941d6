package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo registro durable de notificaciones.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

const notificationColumns = `id, recipient, type, message, COALESCE(order_id::text, ''), read, created_at`

func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	var orderID any
	if n.OrderID != "" {
		orderID = n.OrderID
	}
	query := `
		INSERT INTO notifications (id, recipient, type, message, order_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query, n.ID, n.Recipient, n.Type, n.Message, orderID, n.Read, n.Timestamp); err != nil {
		return wrap("insert notification", err)
	}
	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	var n entity.Notification
	err := r.q.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id).Scan(
		&n.ID, &n.Recipient, &n.Type, &n.Message, &n.OrderID, &n.Read, &n.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, wrap("get notification", err)
	}
	return &n, nil
}

func (r *NotificationRepo) ListByRecipients(ctx context.Context, recipients []string) ([]*entity.Notification, error) {
	if len(recipients) == 0 {
		return nil, nil
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient = ANY($1) ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, recipients)
	if err != nil {
		return nil, wrap("list notifications", err)
	}
	defer rows.Close()
	var list []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Type, &n.Message, &n.OrderID, &n.Read, &n.Timestamp); err != nil {
			return nil, wrap("scan notification", err)
		}
		list = append(list, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list notifications", err)
	}
	return list, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return wrap("mark notification read", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipients []string) (int, error) {
	if len(recipients) == 0 {
		return 0, nil
	}
	tag, err := r.q.Exec(ctx, `UPDATE notifications SET read = true WHERE recipient = ANY($1) AND NOT read`, recipients)
	if err != nil {
		return 0, wrap("mark all notifications read", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return wrap("delete notification", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
