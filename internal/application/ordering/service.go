// Package ordering orquesta el ciclo de vida de una orden: reserva de stock, creación,
// transiciones de estado y avisos a clientes y operadores.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/order"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

// Actor quien ejecuta la operación (datos del token).
type Actor struct {
	UserID string
	Email  string
	Role   string
}

// LineInput línea pedida.
type LineInput struct {
	ProductID string
	Quantity  int
}

// CheckoutInput carrito confirmado por un cliente.
type CheckoutInput struct {
	Customer      Actor
	LocationID    string
	Lines         []LineInput
	PaymentMethod string
}

// CreateInput orden sobre una reserva ya hecha (validación en el POS).
type CreateInput struct {
	Operator      Actor
	UserEmail     string
	LocationID    string
	Lines         []LineInput
	PaymentMethod string
	ReservationID string
}

// TransitionResult estado anterior y nuevo para que el llamador sepa qué se notificó.
type TransitionResult struct {
	Order *entity.Order
	From  string
	To    string
}

// Service casos de uso de órdenes.
type Service struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	locations repository.LocationRepository
	users     repository.UserRepository
	stock     StockReserver
	notifier  Notifier
	receipts  ReceiptRenderer
	log       zerolog.Logger
	now       func() time.Time
}

// NewService construye el servicio de órdenes. receipts puede ser nil.
func NewService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	users repository.UserRepository,
	stock StockReserver,
	notifier Notifier,
	receipts ReceiptRenderer,
	log zerolog.Logger,
) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		locations: locations,
		users:     users,
		stock:     stock,
		notifier:  notifier,
		receipts:  receipts,
		log:       log,
		now:       time.Now,
	}
}

// Checkout reserva stock, cobra (si el pago es con saldo), crea la orden y avisa al punto de venta.
// Si algo falla después de reservar, la reserva se libera y el saldo se devuelve.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*entity.Order, error) {
	if in.Customer.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validatePayment(in.PaymentMethod); err != nil {
		return nil, err
	}
	o, err := s.buildOrder(ctx, in.Customer.Email, in.LocationID, in.Lines, in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	resID, err := s.stock.Reserve(ctx, in.LocationID, in.Customer.Email, toReserveLines(in.Lines))
	if err != nil {
		return nil, err
	}
	o.ReservationID = resID

	charged := false
	if in.PaymentMethod == entity.PaymentBalance {
		if _, err := s.users.AddBalance(ctx, in.Customer.UserID, -o.TotalAmount); err != nil {
			s.compensate(ctx, o, in.Customer.UserID, false)
			return nil, err
		}
		charged = true
	}

	if err := s.orders.Create(ctx, o); err != nil {
		s.compensate(ctx, o, in.Customer.UserID, charged)
		return nil, fmt.Errorf("crear orden: %w", err)
	}

	s.log.Info().
		Str("order_id", o.ID).
		Int("order_number", o.OrderNumber).
		Str("location_id", o.LocationID).
		Int64("total", o.TotalAmount).
		Msg("orden creada")
	s.notifyNewOrder(ctx, o)
	return o, nil
}

// ValidateItems reserva en el POS las líneas de un pedido presencial. Solo un operador asignado
// al punto de venta puede hacerlo; si falta stock devuelve los nombres faltantes sin descontar nada.
func (s *Service) ValidateItems(ctx context.Context, actor Actor, locationID string, items []inventory.ValidateItem) (string, []string, error) {
	if err := s.requireOperatorOf(ctx, actor, locationID); err != nil {
		return "", nil, err
	}
	return s.stock.ValidateItems(ctx, locationID, actor.Email, items)
}

// Create crea una orden sobre una reserva previa del mismo punto de venta. Las líneas deben
// coincidir con lo reservado y cada reserva respalda una sola orden. El pago con saldo se cobra aquí.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	if in.ReservationID == "" {
		return nil, domain.ErrReservationMissing
	}
	if in.UserEmail == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := s.requireOperatorOf(ctx, in.Operator, in.LocationID); err != nil {
		return nil, err
	}
	if err := validatePayment(in.PaymentMethod); err != nil {
		return nil, err
	}
	customer, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.UserEmail)))
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.Role != entity.RoleClient {
		return nil, fmt.Errorf("cliente %s: %w", in.UserEmail, domain.ErrInvalidInput)
	}
	res, err := s.stock.Reservation(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	if res.Released {
		return nil, fmt.Errorf("reserva %s liberada: %w", in.ReservationID, domain.ErrConflict)
	}
	if res.LocationID != in.LocationID || !sameLines(res.Lines, in.Lines) {
		return nil, fmt.Errorf("las líneas no coinciden con la reserva: %w", domain.ErrInvalidInput)
	}

	o, err := s.buildOrder(ctx, customer.Email, in.LocationID, in.Lines, in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	o.ReservationID = in.ReservationID

	charged := false
	if in.PaymentMethod == entity.PaymentBalance {
		if _, err := s.users.AddBalance(ctx, customer.ID, -o.TotalAmount); err != nil {
			return nil, err
		}
		charged = true
	}
	if err := s.orders.Create(ctx, o); err != nil {
		// La reserva sigue siendo del POS (o de la orden que ya la usa): solo se devuelve el cobro
		if charged {
			if _, rerr := s.users.AddBalance(ctx, customer.ID, o.TotalAmount); rerr != nil {
				s.log.Error().Err(rerr).Str("user_id", customer.ID).Int64("amount", o.TotalAmount).Msg("no se pudo devolver el saldo")
			}
		}
		return nil, fmt.Errorf("crear orden: %w", err)
	}

	s.log.Info().
		Str("order_id", o.ID).
		Str("reservation_id", o.ReservationID).
		Str("operator", in.Operator.Email).
		Msg("orden creada en el POS")
	s.notifyNewOrder(ctx, o)
	return o, nil
}

// Transition cambia el estado de una orden si la tabla lo permite y avisa al cliente y a la sala.
// Solo un operador asignado al punto de venta puede hacerlo.
func (s *Service) Transition(ctx context.Context, orderID, to string, actor Actor) (*TransitionResult, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.requireOperatorOf(ctx, actor, o.LocationID); err != nil {
		return nil, err
	}
	from := o.Status
	if err := order.ValidateTransition(from, to); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.orders.UpdateStatus(ctx, o.ID, from, to, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Otra transición ganó; se revalida contra el estado actual
			if cur, gerr := s.orders.GetByID(ctx, o.ID); gerr == nil && cur != nil {
				if verr := order.ValidateTransition(cur.Status, to); verr != nil {
					return nil, verr
				}
			}
		}
		return nil, err
	}
	o.Status = to
	o.UpdatedAt = now

	if to == entity.OrderStatusCancelled {
		s.undoCancelled(ctx, o, actor.Email)
	}

	s.log.Info().Str("order_id", o.ID).Str("from", from).Str("to", to).Str("actor", actor.Email).Msg("estado de orden actualizado")
	if _, err := s.notifier.FanOut(ctx, notification.Event{
		Type:          entity.NotificationOrderStatus,
		LocationID:    o.LocationID,
		CustomerEmail: o.UserEmail,
		OrderID:       o.ID,
		Message:       statusMessage(o),
	}); err != nil {
		s.log.Error().Err(err).Str("order_id", o.ID).Msg("no se pudo notificar el cambio de estado")
	}
	return &TransitionResult{Order: o, From: from, To: to}, nil
}

// GetByUser órdenes de un cliente, más recientes primero. Un cliente solo consulta las suyas.
func (s *Service) GetByUser(ctx context.Context, viewer Actor, userEmail string) ([]*entity.Order, error) {
	if userEmail == "" {
		userEmail = viewer.Email
	}
	if viewer.Role != entity.RoleOperator && !strings.EqualFold(viewer.Email, userEmail) {
		return nil, domain.ErrForbidden
	}
	return s.orders.ListByUser(ctx, userEmail)
}

// GetPending órdenes del cliente que aún no terminan.
func (s *Service) GetPending(ctx context.Context, userEmail string) ([]*entity.Order, error) {
	all, err := s.orders.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	pending := make([]*entity.Order, 0, len(all))
	for _, o := range all {
		if !order.IsTerminal(o.Status) {
			pending = append(pending, o)
		}
	}
	return pending, nil
}

// GetByID devuelve la orden si el usuario es su cliente o un operador del punto de venta.
func (s *Service) GetByID(ctx context.Context, viewer Actor, id string) (*entity.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if strings.EqualFold(o.UserEmail, viewer.Email) {
		return o, nil
	}
	if err := s.requireOperatorOf(ctx, viewer, o.LocationID); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByLocation órdenes del punto de venta filtradas por estado (vacío = todas).
func (s *Service) ListByLocation(ctx context.Context, viewer Actor, locationID string, statuses []string) ([]*entity.Order, error) {
	for _, st := range statuses {
		if !order.IsKnown(st) {
			return nil, fmt.Errorf("estado %q: %w", st, domain.ErrInvalidInput)
		}
	}
	if err := s.requireOperatorOf(ctx, viewer, locationID); err != nil {
		return nil, err
	}
	return s.orders.ListByLocation(ctx, locationID, statuses)
}

// Receipt comprobante PDF de la orden.
func (s *Service) Receipt(ctx context.Context, viewer Actor, id string) (*entity.Order, []byte, error) {
	if s.receipts == nil {
		return nil, nil, fmt.Errorf("generador de comprobantes no configurado")
	}
	o, err := s.GetByID(ctx, viewer, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.receipts.Render(o)
	if err != nil {
		return nil, nil, fmt.Errorf("generar comprobante: %w", err)
	}
	return o, pdf, nil
}

func (s *Service) buildOrder(ctx context.Context, userEmail, locationID string, lines []LineInput, payment string) (*entity.Order, error) {
	if locationID == "" || len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	loc, err := s.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("punto de venta %s: %w", locationID, domain.ErrNotFound)
	}

	out := make([]entity.OrderLine, 0, len(lines))
	var total int64
	for _, ln := range lines {
		if ln.ProductID == "" || ln.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		p, err := s.products.GetByID(ctx, ln.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.LocationID != locationID {
			return nil, fmt.Errorf("producto %s: %w", ln.ProductID, domain.ErrNotFound)
		}
		out = append(out, entity.OrderLine{ProductID: p.ID, Name: p.Name, Quantity: ln.Quantity, UnitPrice: p.Price})
		total += p.Price * int64(ln.Quantity)
	}

	now := s.now()
	return &entity.Order{
		ID:                  uuid.New().String(),
		OrderNumber:         10000 + rand.Intn(90000),
		UserEmail:           userEmail,
		LocationID:          loc.ID,
		LocationName:        loc.Name,
		Products:            out,
		TotalAmount:         total,
		PaymentMethod:       payment,
		Status:              entity.OrderStatusConfirmed,
		CreatedAt:           now,
		UpdatedAt:           now,
		EstimatedPickupTime: now.Add(time.Duration(5+rand.Intn(11)) * time.Minute),
	}, nil
}

// compensate deshace la reserva y, si hubo cobro, devuelve el saldo.
func (s *Service) compensate(ctx context.Context, o *entity.Order, userID string, refund bool) {
	if err := s.stock.Release(ctx, o.ReservationID, o.UserEmail); err != nil {
		s.log.Error().Err(err).Str("reservation_id", o.ReservationID).Msg("no se pudo liberar la reserva")
	}
	if refund {
		if _, err := s.users.AddBalance(ctx, userID, o.TotalAmount); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Int64("amount", o.TotalAmount).Msg("no se pudo devolver el saldo")
		}
	}
}

// undoCancelled devuelve el stock reservado y el saldo cobrado de una orden cancelada.
func (s *Service) undoCancelled(ctx context.Context, o *entity.Order, actor string) {
	if o.ReservationID != "" {
		if err := s.stock.Release(ctx, o.ReservationID, actor); err != nil {
			s.log.Error().Err(err).Str("order_id", o.ID).Msg("no se pudo liberar la reserva de la orden cancelada")
		}
	}
	if o.PaymentMethod != entity.PaymentBalance {
		return
	}
	u, err := s.users.GetByEmail(ctx, o.UserEmail)
	if err != nil || u == nil {
		s.log.Error().Err(err).Str("order_id", o.ID).Msg("cliente no encontrado para reembolso")
		return
	}
	if _, err := s.users.AddBalance(ctx, u.ID, o.TotalAmount); err != nil {
		s.log.Error().Err(err).Str("order_id", o.ID).Msg("no se pudo reembolsar el saldo")
	}
}

func (s *Service) notifyNewOrder(ctx context.Context, o *entity.Order) {
	_, err := s.notifier.FanOut(ctx, notification.Event{
		Type:          entity.NotificationOrder,
		LocationID:    o.LocationID,
		CustomerEmail: o.UserEmail,
		OrderID:       o.ID,
		Message:       fmt.Sprintf("Nuevo pedido #%d de %s", o.OrderNumber, o.UserEmail),
	})
	if err != nil {
		s.log.Error().Err(err).Str("order_id", o.ID).Msg("no se pudo notificar la nueva orden")
	}
}

func (s *Service) requireOperatorOf(ctx context.Context, actor Actor, locationID string) error {
	if actor.Role != entity.RoleOperator {
		return domain.ErrForbidden
	}
	locs, err := s.locations.LocationsOf(ctx, actor.Email)
	if err != nil {
		return err
	}
	for _, id := range locs {
		if id == locationID {
			return nil
		}
	}
	return domain.ErrForbidden
}

func validatePayment(method string) error {
	switch method {
	case entity.PaymentCard, entity.PaymentBalance, entity.PaymentCash:
		return nil
	}
	return fmt.Errorf("método de pago %q: %w", method, domain.ErrInvalidInput)
}

func toReserveLines(lines []LineInput) []inventory.ReserveLine {
	out := make([]inventory.ReserveLine, 0, len(lines))
	for _, ln := range lines {
		out = append(out, inventory.ReserveLine{ProductID: ln.ProductID, Quantity: ln.Quantity})
	}
	return out
}

func sameLines(reserved map[string]int, lines []LineInput) bool {
	got := make(map[string]int, len(lines))
	for _, ln := range lines {
		got[ln.ProductID] += ln.Quantity
	}
	if len(got) != len(reserved) {
		return false
	}
	for id, q := range got {
		if reserved[id] != q {
			return false
		}
	}
	return true
}

func statusMessage(o *entity.Order) string {
	switch o.Status {
	case entity.OrderStatusInPreparation:
		return fmt.Sprintf("Tu pedido #%d está en preparación", o.OrderNumber)
	case entity.OrderStatusReadyForPickup:
		return fmt.Sprintf("Tu pedido #%d está listo para recoger en %s", o.OrderNumber, o.LocationName)
	case entity.OrderStatusCompleted:
		return fmt.Sprintf("Tu pedido #%d fue entregado", o.OrderNumber)
	case entity.OrderStatusCancelled:
		return fmt.Sprintf("Tu pedido #%d fue cancelado", o.OrderNumber)
	}
	return fmt.Sprintf("Tu pedido #%d cambió a %s", o.OrderNumber, o.Status)
}
