package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
	"github.com/sabanapos/pedidos-api/pkg/retry"
)

// DefaultLowStockThreshold umbral de stock bajo.
const DefaultLowStockThreshold = 5

// Config parámetros del libro de stock.
type Config struct {
	LowStockThreshold int
	Retry             retry.Policy
}

// Ledger es el único camino de escritura del stock de productos: reserva al confirmar un carrito,
// liberación (compensación) y reposición por parte de un operador.
//
// Cada operación corre en una sola transacción que bloquea las filas de todo el lote
// (SELECT FOR UPDATE en PostgreSQL, compare-and-swap de versión en memoria), de modo que
// dos checkouts concurrentes del mismo producto nunca venden más de lo que hay.
type Ledger struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	sink        EventSink
	cfg         Config
	log         zerolog.Logger
	now         func() time.Time
}

// NewLedger construye el libro de stock. sink puede ser nil (sin avisos de stock bajo).
func NewLedger(txRunner TxRunner, productRepo repository.ProductRepository, sink EventSink, cfg Config, log zerolog.Logger) *Ledger {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = DefaultLowStockThreshold
	}
	return &Ledger{
		txRunner:    txRunner,
		productRepo: productRepo,
		sink:        sink,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// ReserveLine cantidad pedida de un producto.
type ReserveLine struct {
	ProductID string
	Quantity  int
}

// Reserve descuenta el stock de todas las líneas o de ninguna. Si alguna línea excede el stock
// disponible devuelve *domain.InsufficientStockError con todos los productos faltantes.
// Devuelve el ID de reserva que permite compensar con Release.
func (l *Ledger) Reserve(ctx context.Context, locationID, actor string, lines []ReserveLine) (string, error) {
	if locationID == "" {
		return "", domain.ErrInvalidInput
	}
	qty, ids, err := mergeLines(lines)
	if err != nil {
		return "", err
	}

	reservationID := uuid.New().String()
	var low []LowStockEvent

	err = retry.Once(ctx, l.cfg.Retry, "reservar stock", func(ctx context.Context) error {
		low = low[:0]
		return l.txRunner.Run(ctx, func(stockRepo repository.StockRepository, movRepo repository.StockMovementRepository) error {
			// Bloquea las filas de todo el lote antes de comparar
			products, err := stockRepo.GetForUpdate(ctx, locationID, ids)
			if err != nil {
				return err
			}
			byID := indexProducts(products)

			var shortages []domain.StockShortage
			for _, id := range ids {
				p, ok := byID[id]
				if !ok {
					return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
				}
				if p.Stock < qty[id] {
					shortages = append(shortages, domain.StockShortage{
						ProductID: id, Name: p.Name, Requested: qty[id], Available: p.Stock,
					})
				}
			}
			if len(shortages) > 0 {
				return &domain.InsufficientStockError{Items: shortages}
			}

			now := l.now()
			for _, id := range ids {
				p := byID[id]
				newStock := p.Stock - qty[id]
				if err := stockRepo.SetStock(ctx, id, newStock, p.Version); err != nil {
					return err
				}
				if err := movRepo.Create(ctx, &entity.StockMovement{
					ID:            uuid.New().String(),
					ReservationID: reservationID,
					LocationID:    locationID,
					ProductID:     id,
					Reason:        entity.MovementReservation,
					Quantity:      -qty[id],
					StockAfter:    newStock,
					CreatedAt:     now,
					CreatedBy:     actor,
				}); err != nil {
					return err
				}
				if newStock <= l.cfg.LowStockThreshold {
					low = append(low, LowStockEvent{LocationID: locationID, ProductID: id, ProductName: p.Name, Stock: newStock})
				}
			}
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	l.log.Info().
		Str("reservation_id", reservationID).
		Str("location_id", locationID).
		Int("lines", len(ids)).
		Msg("stock reservado")
	l.emitLowStock(ctx, low)
	return reservationID, nil
}

// Release devuelve al stock lo descontado por una reserva. Es idempotente: una reserva ya liberada no se libera dos veces.
func (l *Ledger) Release(ctx context.Context, reservationID, actor string) error {
	if reservationID == "" {
		return domain.ErrInvalidInput
	}
	released := false
	err := retry.Once(ctx, l.cfg.Retry, "liberar reserva", func(ctx context.Context) error {
		released = false
		return l.txRunner.Run(ctx, func(stockRepo repository.StockRepository, movRepo repository.StockMovementRepository) error {
			movs, err := movRepo.ListByReservation(ctx, reservationID)
			if err != nil {
				return err
			}
			if len(movs) == 0 {
				return domain.ErrNotFound
			}
			qty := make(map[string]int)
			var locationID string
			for _, m := range movs {
				if m.Reason == entity.MovementRelease {
					return nil // ya liberada
				}
				if m.Reason == entity.MovementReservation {
					qty[m.ProductID] += -m.Quantity
					locationID = m.LocationID
				}
			}
			ids := sortedKeys(qty)
			products, err := stockRepo.GetForUpdate(ctx, locationID, ids)
			if err != nil {
				return err
			}
			// Con las filas bloqueadas se relee: otra liberación concurrente pudo confirmar mientras se esperaba el lock
			movs, err = movRepo.ListByReservation(ctx, reservationID)
			if err != nil {
				return err
			}
			for _, m := range movs {
				if m.Reason == entity.MovementRelease {
					return nil
				}
			}
			byID := indexProducts(products)
			now := l.now()
			for _, id := range ids {
				p, ok := byID[id]
				if !ok {
					// producto eliminado después de la reserva: no hay fila que acreditar
					continue
				}
				newStock := p.Stock + qty[id]
				if err := stockRepo.SetStock(ctx, id, newStock, p.Version); err != nil {
					return err
				}
				if err := movRepo.Create(ctx, &entity.StockMovement{
					ID:            uuid.New().String(),
					ReservationID: reservationID,
					LocationID:    locationID,
					ProductID:     id,
					Reason:        entity.MovementRelease,
					Quantity:      qty[id],
					StockAfter:    newStock,
					CreatedAt:     now,
					CreatedBy:     actor,
				}); err != nil {
					return err
				}
			}
			released = true
			return nil
		})
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// el índice único de liberaciones rechazó una segunda liberación
		return nil
	}
	if err != nil {
		return err
	}
	if released {
		l.log.Info().Str("reservation_id", reservationID).Msg("reserva liberada")
	}
	return nil
}

// Restock suma quantity al stock de un producto (reposición del operador) y devuelve el producto actualizado.
func (l *Ledger) Restock(ctx context.Context, locationID, productID, actor string, quantity int) (*entity.Product, error) {
	if locationID == "" || productID == "" || quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var updated entity.Product
	err := retry.Once(ctx, l.cfg.Retry, "reponer stock", func(ctx context.Context) error {
		return l.txRunner.Run(ctx, func(stockRepo repository.StockRepository, movRepo repository.StockMovementRepository) error {
			products, err := stockRepo.GetForUpdate(ctx, locationID, []string{productID})
			if err != nil {
				return err
			}
			if len(products) == 0 {
				return domain.ErrNotFound
			}
			p := products[0]
			newStock := p.Stock + quantity
			if err := stockRepo.SetStock(ctx, productID, newStock, p.Version); err != nil {
				return err
			}
			updated = *p
			updated.Stock = newStock
			updated.Version = p.Version + 1
			return movRepo.Create(ctx, &entity.StockMovement{
				ID:         uuid.New().String(),
				LocationID: locationID,
				ProductID:  productID,
				Reason:     entity.MovementRestock,
				Quantity:   quantity,
				StockAfter: newStock,
				CreatedAt:  l.now(),
				CreatedBy:  actor,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Reservation cantidades descontadas por una reserva.
type Reservation struct {
	ID         string
	LocationID string
	Lines      map[string]int // producto -> cantidad
	Released   bool
}

// Reservation lee los movimientos de una reserva. Devuelve domain.ErrNotFound si no existe.
func (l *Ledger) Reservation(ctx context.Context, reservationID string) (*Reservation, error) {
	if reservationID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *Reservation
	err := retry.Once(ctx, l.cfg.Retry, "leer reserva", func(ctx context.Context) error {
		return l.txRunner.Run(ctx, func(_ repository.StockRepository, movRepo repository.StockMovementRepository) error {
			movs, err := movRepo.ListByReservation(ctx, reservationID)
			if err != nil {
				return err
			}
			if len(movs) == 0 {
				return domain.ErrNotFound
			}
			res := &Reservation{ID: reservationID, Lines: make(map[string]int)}
			for _, m := range movs {
				switch m.Reason {
				case entity.MovementReservation:
					res.LocationID = m.LocationID
					res.Lines[m.ProductID] += -m.Quantity
				case entity.MovementRelease:
					res.Released = true
				}
			}
			out = res
			return nil
		})
	})
	return out, err
}

// ValidateItem línea tal como la envía el POS al validar un pedido.
type ValidateItem struct {
	ID       string
	Name     string
	Quantity int
}

// ValidateItems reserva las líneas y, si falta stock, devuelve los nombres de los productos faltantes
// (sin descontar nada). Con éxito el stock ya quedó descontado.
func (l *Ledger) ValidateItems(ctx context.Context, locationID, actor string, items []ValidateItem) (reservationID string, outOfStock []string, err error) {
	lines := make([]ReserveLine, 0, len(items))
	names := make(map[string]string, len(items))
	for _, it := range items {
		lines = append(lines, ReserveLine{ProductID: it.ID, Quantity: it.Quantity})
		if it.Name != "" {
			names[it.ID] = it.Name
		}
	}
	reservationID, err = l.Reserve(ctx, locationID, actor, lines)
	if err == nil {
		return reservationID, nil, nil
	}
	var short *domain.InsufficientStockError
	if errors.As(err, &short) {
		for _, s := range short.Items {
			name := s.Name
			if n, ok := names[s.ProductID]; ok {
				name = n
			}
			outOfStock = append(outOfStock, name)
		}
		return "", outOfStock, err
	}
	return "", nil, err
}

// ListLowStock productos del punto de venta en o por debajo del umbral de stock bajo.
func (l *Ledger) ListLowStock(ctx context.Context, locationID string) ([]*entity.Product, error) {
	if locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return l.productRepo.ListLowStock(ctx, locationID, l.cfg.LowStockThreshold)
}

// Threshold umbral de stock bajo efectivo.
func (l *Ledger) Threshold() int { return l.cfg.LowStockThreshold }

func (l *Ledger) emitLowStock(ctx context.Context, events []LowStockEvent) {
	if l.sink == nil {
		return
	}
	for _, ev := range events {
		if err := l.sink.LowStock(ctx, ev); err != nil {
			l.log.Warn().Err(err).Str("product_id", ev.ProductID).Msg("aviso de stock bajo no registrado")
		}
	}
}

// mergeLines valida y suma líneas repetidas del mismo producto; devuelve los IDs ordenados.
func mergeLines(lines []ReserveLine) (map[string]int, []string, error) {
	if len(lines) == 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	qty := make(map[string]int, len(lines))
	for _, ln := range lines {
		if ln.ProductID == "" || ln.Quantity <= 0 {
			return nil, nil, domain.ErrInvalidInput
		}
		qty[ln.ProductID] += ln.Quantity
	}
	return qty, sortedKeys(qty), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexProducts(products []*entity.Product) map[string]*entity.Product {
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}
