package memory

import (
	"context"
	"sort"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.CardRepository = (*CardRepo)(nil)

// CardRepo tarjetas en memoria.
type CardRepo struct {
	s *Store
}

func (r *CardRepo) Create(_ context.Context, card *entity.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *card
	r.s.cards[card.ID] = &cp
	return nil
}

func (r *CardRepo) GetByID(_ context.Context, id string) (*entity.Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cards[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CardRepo) ListByUser(_ context.Context, userID string) ([]*entity.Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Card
	for _, c := range r.s.cards {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *CardRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cards[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.cards, id)
	return nil
}
