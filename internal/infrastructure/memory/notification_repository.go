package memory

import (
	"context"
	"sort"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo notificaciones en memoria.
type NotificationRepo struct {
	s *Store
}

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *n
	r.s.notifications[n.ID] = &cp
	return nil
}

func (r *NotificationRepo) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (r *NotificationRepo) ListByRecipients(_ context.Context, recipients []string) ([]*entity.Notification, error) {
	set := toSet(recipients)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Notification
	for _, n := range r.s.notifications {
		if set[n.Recipient] {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, recipients []string) (int, error) {
	set := toSet(recipients)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	changed := 0
	for _, n := range r.s.notifications {
		if set[n.Recipient] && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

func (r *NotificationRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notifications[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}
