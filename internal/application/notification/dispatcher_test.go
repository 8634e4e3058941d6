package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/infrastructure/memory"
)

// mockHub doble del transporte en vivo.
type mockHub struct {
	mock.Mock
}

func (m *mockHub) Publish(ctx context.Context, channel string, n *entity.Notification) error {
	args := m.Called(ctx, channel, n)
	return args.Error(0)
}

func (m *mockHub) Subscribe(ctx context.Context, channels []string) (<-chan *entity.Notification, func(), error) {
	args := m.Called(ctx, channels)
	return nil, func() {}, args.Error(2)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, ev notification.DomainEvent) error {
	args := m.Called(ctx, key, ev)
	return args.Error(0)
}

const (
	locID    = "loc-1"
	operator = "ops@sabanapos.edu.co"
	student  = "stu@unisabana.edu.co"
)

func setup(t *testing.T, hub notification.LiveHub, pub notification.EventPublisher) (*notification.Dispatcher, memory.Repos) {
	t.Helper()
	repos := memory.NewRepos(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: locID, Name: "Kiosco Central", Kind: entity.LocationKindKiosk}))
	require.NoError(t, repos.Locations.AssignOperator(ctx, &entity.OperatorAssignment{LocationID: locID, OperatorEmail: operator}))
	return notification.NewDispatcher(repos.Notifications, repos.Locations, hub, pub, zerolog.Nop()), repos
}

func TestFanOut_OrderStatus_ClienteYSala(t *testing.T) {
	hub := memory.NewHub()
	d, _ := setup(t, hub, nil)
	ctx := context.Background()

	ids, err := d.FanOut(ctx, notification.Event{
		Type:          entity.NotificationOrderStatus,
		LocationID:    locID,
		CustomerEmail: student,
		OrderID:       "o-1",
		Message:       "Tu pedido está listo",
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	stu, err := d.List(ctx, notification.Viewer{Email: student, Role: entity.RoleClient})
	require.NoError(t, err)
	require.Len(t, stu, 1)
	assert.Equal(t, "o-1", stu[0].OrderID)
	assert.False(t, stu[0].Read)

	ops, err := d.List(ctx, notification.Viewer{Email: operator, Role: entity.RoleOperator})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, entity.LocationRoom(locID), ops[0].Recipient)
}

func TestFanOut_TransporteCaido_RegistroPersiste(t *testing.T) {
	hub := &mockHub{}
	hub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, locID, mock.Anything).Return(errors.New("kafka: broker caído"))
	d, _ := setup(t, hub, pub)

	ids, err := d.FanOut(context.Background(), notification.Event{
		Type:       entity.NotificationOrder,
		LocationID: locID,
		OrderID:    "o-2",
		Message:    "Nuevo pedido #12345",
	})
	require.NoError(t, err, "la falla del envío en vivo no falla el fan-out")
	require.Len(t, ids, 1)

	// sala + operador asignado
	hub.AssertNumberOfCalls(t, "Publish", 2)
	hub.AssertCalled(t, "Publish", mock.Anything, entity.LocationRoom(locID), mock.Anything)
	hub.AssertCalled(t, "Publish", mock.Anything, operator, mock.Anything)
	pub.AssertExpectations(t)

	list, err := d.List(context.Background(), notification.Viewer{Email: operator, Role: entity.RoleOperator})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ids[0], list[0].ID)
}

func TestFanOut_EventoInvalido(t *testing.T) {
	d, _ := setup(t, nil, nil)
	ctx := context.Background()

	_, err := d.FanOut(ctx, notification.Event{Type: entity.NotificationOrderStatus, LocationID: locID, Message: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "order_status requiere cliente")

	_, err = d.FanOut(ctx, notification.Event{Type: "promo", LocationID: locID, Message: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarkRead_SoloElDestinatario(t *testing.T) {
	d, _ := setup(t, nil, nil)
	ctx := context.Background()
	ids, err := d.FanOut(ctx, notification.Event{
		Type: entity.NotificationOrderStatus, LocationID: locID, CustomerEmail: student, OrderID: "o-1", Message: "Listo",
	})
	require.NoError(t, err)

	other := notification.Viewer{Email: "otro@unisabana.edu.co", Role: entity.RoleClient}
	assert.ErrorIs(t, d.MarkRead(ctx, other, ids[0]), domain.ErrForbidden)
	assert.ErrorIs(t, d.Delete(ctx, other, ids[0]), domain.ErrForbidden)
	assert.ErrorIs(t, d.MarkRead(ctx, other, "no-existe"), domain.ErrNotFound)

	me := notification.Viewer{Email: student, Role: entity.RoleClient}
	require.NoError(t, d.MarkRead(ctx, me, ids[0]))
	list, err := d.List(ctx, me)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)

	require.NoError(t, d.Delete(ctx, me, ids[0]))
	list, err = d.List(ctx, me)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMarkAllRead_CuentaLasCambiadas(t *testing.T) {
	d, _ := setup(t, nil, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := d.FanOut(ctx, notification.Event{Type: entity.NotificationOrder, LocationID: locID, Message: "Nuevo pedido"})
		require.NoError(t, err)
	}
	op := notification.Viewer{Email: operator, Role: entity.RoleOperator}
	n, err := d.MarkAllRead(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = d.MarkAllRead(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLowStock_AvisoParaLaSala(t *testing.T) {
	d, _ := setup(t, nil, nil)
	ctx := context.Background()
	require.NoError(t, d.LowStock(ctx, inventory.LowStockEvent{LocationID: locID, ProductID: "p-1", ProductName: "Empanada", Stock: 0}))

	list, err := d.List(ctx, notification.Viewer{Email: operator, Role: entity.RoleOperator})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.NotificationStock, list[0].Type)
	assert.Equal(t, "Agotado: Empanada", list[0].Message)
}

func TestSubscribe_OperadorRecibeAvisosDeSala(t *testing.T) {
	hub := memory.NewHub()
	d, _ := setup(t, hub, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, closeFn, err := d.Subscribe(ctx, notification.Viewer{Email: operator, Role: entity.RoleOperator})
	require.NoError(t, err)
	defer closeFn()

	_, err = d.FanOut(context.Background(), notification.Event{Type: entity.NotificationOrder, LocationID: locID, OrderID: "o-9", Message: "Nuevo pedido"})
	require.NoError(t, err)

	select {
	case n := <-ch:
		assert.Equal(t, "o-9", n.OrderID)
	case <-time.After(time.Second):
		t.Fatal("no llegó la notificación en vivo")
	}
}
