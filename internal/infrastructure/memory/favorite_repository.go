package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.FavoriteRepository = (*FavoriteRepo)(nil)

// FavoriteRepo favoritos en memoria con clave (email, producto).
type FavoriteRepo struct {
	s *Store
}

func favoriteKey(email, productID string) string {
	return strings.ToLower(email) + "|" + productID
}

func (r *FavoriteRepo) Upsert(_ context.Context, fav *entity.Favorite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *fav
	r.s.favorites[favoriteKey(fav.UserEmail, fav.ProductID)] = &cp
	return nil
}

func (r *FavoriteRepo) Delete(_ context.Context, userEmail, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := favoriteKey(userEmail, productID)
	if _, ok := r.s.favorites[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.favorites, key)
	return nil
}

func (r *FavoriteRepo) ListByUser(_ context.Context, userEmail string) ([]*entity.Favorite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Favorite
	for _, f := range r.s.favorites {
		if strings.EqualFold(f.UserEmail, userEmail) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
