package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo puntos de venta y asignaciones en memoria.
type LocationRepo struct {
	s *Store
}

func (r *LocationRepo) Create(_ context.Context, location *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[location.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *location
	r.s.locations[location.ID] = &cp
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *LocationRepo) List(_ context.Context) ([]*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AssignOperator es idempotente para el mismo par (punto de venta, operador).
func (r *LocationRepo) AssignOperator(_ context.Context, a *entity.OperatorAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[a.LocationID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.s.assignments {
		if existing.LocationID == a.LocationID && strings.EqualFold(existing.OperatorEmail, a.OperatorEmail) {
			return nil
		}
	}
	r.s.assignments = append(r.s.assignments, *a)
	return nil
}

func (r *LocationRepo) OperatorsOf(_ context.Context, locationID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []string
	for _, a := range r.s.assignments {
		if a.LocationID == locationID {
			out = append(out, a.OperatorEmail)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *LocationRepo) LocationsOf(_ context.Context, operatorEmail string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []string
	for _, a := range r.s.assignments {
		if strings.EqualFold(a.OperatorEmail, operatorEmail) {
			out = append(out, a.LocationID)
		}
	}
	sort.Strings(out)
	return out, nil
}
