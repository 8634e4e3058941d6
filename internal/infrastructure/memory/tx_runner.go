package memory

import (
	"context"
	"sort"

	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones del libro de stock en memoria: una a la vez, escrituras en buffer
// y aplicadas todas juntas solo si fn no falla.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos atados a la transacción y hace commit o descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{s: r.s, stock: make(map[string]stockWrite)}
	if err := fn(&stockTx{tx: tx}, &movementTx{tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

type stockWrite struct {
	stock           int
	expectedVersion int64
}

type memTx struct {
	s         *Store
	stock     map[string]stockWrite
	movements []*entity.StockMovement
}

func (t *memTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	// Compare-and-swap de todo el lote antes de escribir
	for id, w := range t.stock {
		p, ok := t.s.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if p.Version != w.expectedVersion {
			return domain.ErrConflict
		}
	}
	for id, w := range t.stock {
		p := t.s.products[id]
		p.Stock = w.stock
		p.Version++
	}
	t.s.movements = append(t.s.movements, t.movements...)
	return nil
}

type stockTx struct {
	tx *memTx
}

// GetForUpdate lee a través del buffer de la transacción.
func (r *stockTx) GetForUpdate(_ context.Context, locationID string, productIDs []string) ([]*entity.Product, error) {
	r.tx.s.mu.RLock()
	defer r.tx.s.mu.RUnlock()
	var out []*entity.Product
	for _, id := range productIDs {
		p, ok := r.tx.s.products[id]
		if !ok || p.LocationID != locationID {
			continue
		}
		cp := copyProduct(p)
		if w, ok := r.tx.stock[id]; ok {
			cp.Stock = w.stock
			cp.Version = w.expectedVersion + 1
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stockTx) SetStock(_ context.Context, productID string, stock int, expectedVersion int64) error {
	if stock < 0 {
		return domain.ErrInsufficientStock
	}
	r.tx.s.mu.RLock()
	p, ok := r.tx.s.products[productID]
	var current int64
	if ok {
		current = p.Version
	}
	r.tx.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	base := current
	if w, ok := r.tx.stock[productID]; ok {
		base = w.expectedVersion + 1
		if expectedVersion != base {
			return domain.ErrConflict
		}
		// segunda escritura en la misma transacción: conserva la versión original
		r.tx.stock[productID] = stockWrite{stock: stock, expectedVersion: w.expectedVersion}
		return nil
	}
	if expectedVersion != base {
		return domain.ErrConflict
	}
	r.tx.stock[productID] = stockWrite{stock: stock, expectedVersion: expectedVersion}
	return nil
}

type movementTx struct {
	tx *memTx
}

func (r *movementTx) Create(_ context.Context, m *entity.StockMovement) error {
	cp := *m
	r.tx.movements = append(r.tx.movements, &cp)
	return nil
}

// ListByReservation incluye los movimientos ya confirmados y los de esta transacción.
func (r *movementTx) ListByReservation(_ context.Context, reservationID string) ([]*entity.StockMovement, error) {
	r.tx.s.mu.RLock()
	defer r.tx.s.mu.RUnlock()
	var out []*entity.StockMovement
	for _, m := range r.tx.s.movements {
		if m.ReservationID == reservationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	for _, m := range r.tx.movements {
		if m.ReservationID == reservationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Movements copia de todos los movimientos confirmados (auditoría y pruebas).
func (s *Store) Movements() []entity.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.StockMovement, 0, len(s.movements))
	for _, m := range s.movements {
		out = append(out, *m)
	}
	return out
}
