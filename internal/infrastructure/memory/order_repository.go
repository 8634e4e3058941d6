package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes en memoria.
type OrderRepo struct {
	s *Store
}

func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ID]; ok {
		return domain.ErrDuplicate
	}
	if order.ReservationID != "" {
		for _, o := range r.s.orders {
			if o.ReservationID == order.ReservationID {
				return fmt.Errorf("reserva %s ya tiene orden: %w", order.ReservationID, domain.ErrConflict)
			}
		}
	}
	r.s.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (r *OrderRepo) ListByUser(_ context.Context, userEmail string) ([]*entity.Order, error) {
	return r.filter(func(o *entity.Order) bool { return strings.EqualFold(o.UserEmail, userEmail) }), nil
}

func (r *OrderRepo) ListByLocation(_ context.Context, locationID string, statuses []string) ([]*entity.Order, error) {
	return r.filter(func(o *entity.Order) bool {
		if o.LocationID != locationID {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if o.Status == s {
				return true
			}
		}
		return false
	}), nil
}

// UpdateStatus compare-and-swap sobre el estado actual.
func (r *OrderRepo) UpdateStatus(_ context.Context, id, from, to string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != from {
		return domain.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

func (r *OrderRepo) filter(keep func(*entity.Order) bool) []*entity.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Order
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
