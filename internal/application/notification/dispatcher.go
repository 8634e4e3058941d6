// Package notification persiste avisos y los reparte a clientes y operadores.
// El registro durable siempre se escribe primero; el envío en vivo es de mejor esfuerzo.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ inventory.EventSink = (*Dispatcher)(nil)

// Event aviso a repartir.
type Event struct {
	Type          string
	LocationID    string
	CustomerEmail string // requerido para order_status
	OrderID       string
	ProductID     string
	Message       string
}

// Viewer identidad de quien lee o modifica sus notificaciones.
type Viewer struct {
	Email string
	Role  string
}

// Dispatcher despachador de notificaciones.
type Dispatcher struct {
	repo      repository.NotificationRepository
	locations repository.LocationRepository
	hub       LiveHub
	publisher EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewDispatcher construye el despachador. hub y publisher pueden ser nil.
func NewDispatcher(repo repository.NotificationRepository, locations repository.LocationRepository, hub LiveHub, publisher EventPublisher, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		locations: locations,
		hub:       hub,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// FanOut crea un registro por destinatario y luego intenta el envío en vivo.
// order_status va al cliente y a la sala del punto de venta; los demás tipos solo a la sala.
// Devuelve los IDs de las notificaciones creadas.
func (d *Dispatcher) FanOut(ctx context.Context, ev Event) ([]string, error) {
	recipients, err := recipientsFor(ev)
	if err != nil {
		return nil, err
	}

	now := d.now()
	created := make([]*entity.Notification, 0, len(recipients))
	for _, rcpt := range recipients {
		n := &entity.Notification{
			ID:        uuid.New().String(),
			Recipient: rcpt,
			Type:      ev.Type,
			Message:   ev.Message,
			OrderID:   ev.OrderID,
			Timestamp: now,
		}
		if err := d.repo.Create(ctx, n); err != nil {
			return nil, fmt.Errorf("guardar notificación: %w", err)
		}
		created = append(created, n)
	}

	d.pushLive(ctx, ev.LocationID, created)
	d.publish(ctx, ev, now)

	ids := make([]string, 0, len(created))
	for _, n := range created {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

// LowStock convierte un evento del libro de stock en un aviso para la sala del punto de venta.
func (d *Dispatcher) LowStock(ctx context.Context, ev inventory.LowStockEvent) error {
	msg := fmt.Sprintf("Stock bajo: %s (%d disponibles)", ev.ProductName, ev.Stock)
	if ev.Stock == 0 {
		msg = fmt.Sprintf("Agotado: %s", ev.ProductName)
	}
	_, err := d.FanOut(ctx, Event{
		Type:       entity.NotificationStock,
		LocationID: ev.LocationID,
		ProductID:  ev.ProductID,
		Message:    msg,
	})
	return err
}

// Addresses direcciones que un usuario puede leer: su correo y, para operadores,
// las salas de sus puntos de venta.
func (d *Dispatcher) Addresses(ctx context.Context, v Viewer) ([]string, error) {
	if v.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	out := []string{v.Email}
	if v.Role != entity.RoleOperator {
		return out, nil
	}
	locs, err := d.locations.LocationsOf(ctx, v.Email)
	if err != nil {
		return nil, err
	}
	for _, id := range locs {
		out = append(out, entity.LocationRoom(id))
	}
	return out, nil
}

// List notificaciones visibles para el usuario, más recientes primero.
func (d *Dispatcher) List(ctx context.Context, v Viewer) ([]*entity.Notification, error) {
	addrs, err := d.Addresses(ctx, v)
	if err != nil {
		return nil, err
	}
	return d.repo.ListByRecipients(ctx, addrs)
}

// MarkRead marca una notificación como leída. Solo su destinatario puede hacerlo.
func (d *Dispatcher) MarkRead(ctx context.Context, v Viewer, id string) error {
	if _, err := d.owned(ctx, v, id); err != nil {
		return err
	}
	return d.repo.MarkRead(ctx, id)
}

// MarkAllRead marca como leídas todas las notificaciones visibles y devuelve cuántas cambiaron.
func (d *Dispatcher) MarkAllRead(ctx context.Context, v Viewer) (int, error) {
	addrs, err := d.Addresses(ctx, v)
	if err != nil {
		return 0, err
	}
	return d.repo.MarkAllRead(ctx, addrs)
}

// Delete elimina una notificación del destinatario, leída o no.
func (d *Dispatcher) Delete(ctx context.Context, v Viewer, id string) error {
	if _, err := d.owned(ctx, v, id); err != nil {
		return err
	}
	return d.repo.Delete(ctx, id)
}

// Subscribe abre el canal en vivo para las direcciones del usuario.
func (d *Dispatcher) Subscribe(ctx context.Context, v Viewer) (<-chan *entity.Notification, func(), error) {
	if d.hub == nil {
		return nil, nil, fmt.Errorf("transporte en vivo no configurado")
	}
	addrs, err := d.Addresses(ctx, v)
	if err != nil {
		return nil, nil, err
	}
	// Los operadores reciben los avisos de sala por su canal de correo; ver pushLive.
	return d.hub.Subscribe(ctx, addrs[:1])
}

func (d *Dispatcher) owned(ctx context.Context, v Viewer, id string) (*entity.Notification, error) {
	n, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.ErrNotFound
	}
	addrs, err := d.Addresses(ctx, v)
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		if strings.EqualFold(a, n.Recipient) {
			return n, nil
		}
	}
	return nil, domain.ErrForbidden
}

// pushLive envía cada registro a su canal. Los registros de sala también van al canal de
// correo de cada operador asignado. Los fallos se registran y se ignoran.
func (d *Dispatcher) pushLive(ctx context.Context, locationID string, created []*entity.Notification) {
	if d.hub == nil {
		return
	}
	room := entity.LocationRoom(locationID)
	var operators []string
	for _, n := range created {
		channels := []string{n.Recipient}
		if n.Recipient == room {
			if operators == nil {
				ops, err := d.locations.OperatorsOf(ctx, locationID)
				if err != nil {
					d.log.Warn().Err(err).Str("location_id", locationID).Msg("no se pudieron resolver operadores")
				}
				operators = append([]string{}, ops...)
			}
			channels = append(channels, operators...)
		}
		for _, ch := range channels {
			if err := d.hub.Publish(ctx, ch, n); err != nil {
				d.log.Warn().Err(err).
					Str("notification_id", n.ID).
					Str("channel", ch).
					Msg("envío en vivo falló; queda el registro durable")
			}
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, ev Event, at time.Time) {
	if d.publisher == nil {
		return
	}
	err := d.publisher.Publish(ctx, ev.LocationID, DomainEvent{
		Type:          ev.Type,
		LocationID:    ev.LocationID,
		OrderID:       ev.OrderID,
		ProductID:     ev.ProductID,
		CustomerEmail: ev.CustomerEmail,
		Message:       ev.Message,
		OccurredAt:    at,
	})
	if err != nil {
		d.log.Warn().Err(err).Str("type", ev.Type).Msg("evento de dominio no publicado")
	}
}

func recipientsFor(ev Event) ([]string, error) {
	if ev.LocationID == "" || ev.Message == "" {
		return nil, domain.ErrInvalidInput
	}
	room := entity.LocationRoom(ev.LocationID)
	switch ev.Type {
	case entity.NotificationOrderStatus:
		if ev.CustomerEmail == "" {
			return nil, domain.ErrInvalidInput
		}
		return []string{ev.CustomerEmail, room}, nil
	case entity.NotificationOrder, entity.NotificationStock, entity.NotificationFavoriteProduct:
		return []string{room}, nil
	}
	return nil, fmt.Errorf("tipo de notificación %q: %w", ev.Type, domain.ErrInvalidInput)
}
