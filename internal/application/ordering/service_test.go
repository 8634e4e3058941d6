package ordering_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/application/ordering"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/order"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
	"github.com/sabanapos/pedidos-api/internal/infrastructure/memory"
	"github.com/sabanapos/pedidos-api/pkg/retry"
)

const (
	locID    = "loc-1"
	operator = "ops@sabanapos.edu.co"
	student  = "stu@unisabana.edu.co"
)

var (
	opActor  = ordering.Actor{UserID: "u-op", Email: operator, Role: entity.RoleOperator}
	stuActor = ordering.Actor{UserID: "u-stu", Email: student, Role: entity.RoleClient}
)

// ── Helpers ───────────────────────────────────────────────────────────────────

type env struct {
	repos      memory.Repos
	ledger     *inventory.Ledger
	dispatcher *notification.Dispatcher
	svc        *ordering.Service
}

// failingOrders falla al crear para probar la compensación.
type failingOrders struct {
	repository.OrderRepository
}

func (failingOrders) Create(context.Context, *entity.Order) error {
	return errors.New("insert order: conexión perdida")
}

func newEnv(t *testing.T, orders repository.OrderRepository) *env {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepos(memory.NewStore())
	if orders == nil {
		orders = repos.Orders
	}
	d := notification.NewDispatcher(repos.Notifications, repos.Locations, memory.NewHub(), nil, zerolog.Nop())
	l := inventory.NewLedger(repos.TxRunner, repos.Products, d, inventory.Config{
		LowStockThreshold: 5,
		Retry:             retry.Policy{Timeout: time.Second, Backoff: time.Millisecond},
	}, zerolog.Nop())
	svc := ordering.NewService(orders, repos.Products, repos.Locations, repos.Users, l, d, nil, zerolog.Nop())

	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: locID, Name: "Punto Sabana", Kind: entity.LocationKindCafe}))
	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: "loc-2", Name: "Kiosco Norte", Kind: entity.LocationKindKiosk}))
	require.NoError(t, repos.Locations.AssignOperator(ctx, &entity.OperatorAssignment{LocationID: locID, OperatorEmail: operator}))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: "u-stu", Email: student, Role: entity.RoleClient, Balance: 20000}))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: "u-op", Email: operator, Role: entity.RoleOperator}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p-1", LocationID: locID, Name: "Empanada", Stock: 10, Price: 3000}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p-2", LocationID: locID, Name: "Tinto", Stock: 20, Price: 1500}))
	return &env{repos: repos, ledger: l, dispatcher: d, svc: svc}
}

func (e *env) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := e.repos.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (e *env) balance(t *testing.T) int64 {
	t.Helper()
	u, err := e.repos.Users.GetByID(context.Background(), "u-stu")
	require.NoError(t, err)
	return u.Balance
}

func (e *env) checkout(t *testing.T, payment string) *entity.Order {
	t.Helper()
	o, err := e.svc.Checkout(context.Background(), ordering.CheckoutInput{
		Customer:      stuActor,
		LocationID:    locID,
		Lines:         []ordering.LineInput{{ProductID: "p-1", Quantity: 2}, {ProductID: "p-2", Quantity: 1}},
		PaymentMethod: payment,
	})
	require.NoError(t, err)
	return o
}

func (e *env) notifications(t *testing.T, v notification.Viewer, typ string) []*entity.Notification {
	t.Helper()
	all, err := e.dispatcher.List(context.Background(), v)
	require.NoError(t, err)
	var out []*entity.Notification
	for _, n := range all {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// ── Checkout ─────────────────────────────────────────────────────────────────

func TestCheckout_CreaOrdenConfirmadaYAvisaAlPunto(t *testing.T) {
	e := newEnv(t, nil)
	before := time.Now()
	o := e.checkout(t, entity.PaymentCard)

	assert.Equal(t, entity.OrderStatusConfirmed, o.Status)
	assert.Equal(t, int64(7500), o.TotalAmount)
	assert.Equal(t, "Punto Sabana", o.LocationName)
	assert.NotEmpty(t, o.ReservationID)
	assert.GreaterOrEqual(t, o.OrderNumber, 10000)
	assert.LessOrEqual(t, o.OrderNumber, 99999)
	pickup := o.EstimatedPickupTime.Sub(o.CreatedAt)
	assert.GreaterOrEqual(t, pickup, 5*time.Minute)
	assert.LessOrEqual(t, pickup, 15*time.Minute)
	assert.False(t, o.CreatedAt.Before(before))

	assert.Equal(t, 8, e.stock(t, "p-1"))
	assert.Equal(t, 19, e.stock(t, "p-2"))

	ops := e.notifications(t, notification.Viewer{Email: operator, Role: entity.RoleOperator}, entity.NotificationOrder)
	require.Len(t, ops, 1)
	assert.Equal(t, o.ID, ops[0].OrderID)
}

func TestCheckout_StockInsuficiente_SinOrden(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.svc.Checkout(context.Background(), ordering.CheckoutInput{
		Customer:      stuActor,
		LocationID:    locID,
		Lines:         []ordering.LineInput{{ProductID: "p-1", Quantity: 11}},
		PaymentMethod: entity.PaymentCash,
	})
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, []string{"Empanada"}, short.Names())

	orders, err := e.svc.GetByUser(context.Background(), stuActor, student)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_PagoConSaldo(t *testing.T) {
	e := newEnv(t, nil)
	e.checkout(t, entity.PaymentBalance)
	assert.Equal(t, int64(12500), e.balance(t))
}

func TestCheckout_SaldoInsuficiente_LiberaReserva(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.svc.Checkout(context.Background(), ordering.CheckoutInput{
		Customer:      stuActor,
		LocationID:    locID,
		Lines:         []ordering.LineInput{{ProductID: "p-1", Quantity: 10}},
		PaymentMethod: entity.PaymentBalance,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, 10, e.stock(t, "p-1"), "la reserva se compensa")
	assert.Equal(t, int64(20000), e.balance(t))
}

func TestCheckout_FallaAlCrear_CompensaReservaYSaldo(t *testing.T) {
	e := newEnv(t, nil)
	e = newEnv(t, failingOrders{OrderRepository: e.repos.Orders})

	_, err := e.svc.Checkout(context.Background(), ordering.CheckoutInput{
		Customer:      stuActor,
		LocationID:    locID,
		Lines:         []ordering.LineInput{{ProductID: "p-1", Quantity: 3}},
		PaymentMethod: entity.PaymentBalance,
	})
	require.Error(t, err)
	assert.Equal(t, 10, e.stock(t, "p-1"))
	assert.Equal(t, int64(20000), e.balance(t))
}

func TestCheckout_Validaciones(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	_, err := e.svc.Checkout(ctx, ordering.CheckoutInput{Customer: stuActor, LocationID: locID, Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 1}}, PaymentMethod: "bitcoin"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.svc.Checkout(ctx, ordering.CheckoutInput{Customer: stuActor, LocationID: "loc-x", Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 1}}, PaymentMethod: entity.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.svc.Checkout(ctx, ordering.CheckoutInput{Customer: stuActor, LocationID: "loc-2", Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 1}}, PaymentMethod: entity.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto de otro punto de venta")
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestCreate_RequiereReserva(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.svc.Create(context.Background(), ordering.CreateInput{
		Operator: opActor, UserEmail: student, LocationID: locID, PaymentMethod: entity.PaymentCash,
		Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrReservationMissing)
}

func TestCreate_SobreReservaDelPOS(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	resID, _, err := e.ledger.ValidateItems(ctx, locID, operator, []inventory.ValidateItem{{ID: "p-1", Name: "Empanada", Quantity: 2}})
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, ordering.CreateInput{
		Operator: opActor, UserEmail: student, LocationID: locID, PaymentMethod: entity.PaymentCash, ReservationID: resID,
		Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 3}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "líneas distintas a las reservadas")

	o, err := e.svc.Create(ctx, ordering.CreateInput{
		Operator: opActor, UserEmail: student, LocationID: locID, PaymentMethod: entity.PaymentCash, ReservationID: resID,
		Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, o.Status)
	assert.Equal(t, resID, o.ReservationID)
	assert.Equal(t, 8, e.stock(t, "p-1"), "la creación no vuelve a descontar")
}

func (e *env) validate(t *testing.T, qty int) string {
	t.Helper()
	resID, out, err := e.svc.ValidateItems(context.Background(), opActor, locID, []inventory.ValidateItem{{ID: "p-1", Name: "Empanada", Quantity: qty}})
	require.NoError(t, err)
	require.Empty(t, out)
	return resID
}

func TestCreate_UnaReservaRespaldaUnaSolaOrden(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	resID := e.validate(t, 2)
	in := ordering.CreateInput{
		Operator: opActor, UserEmail: student, LocationID: locID, PaymentMethod: entity.PaymentCash, ReservationID: resID,
		Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 2}},
	}

	_, err := e.svc.Create(ctx, in)
	require.NoError(t, err)
	_, err = e.svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrConflict)

	orders, err := e.repos.Orders.ListByUser(ctx, student)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 8, e.stock(t, "p-1"))
}

func TestCreate_PagoConSaldoSeCobraYCancelarLoDevuelve(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	resID := e.validate(t, 2)
	in := ordering.CreateInput{
		Operator: opActor, UserEmail: student, LocationID: locID, PaymentMethod: entity.PaymentBalance, ReservationID: resID,
		Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 2}},
	}

	o, err := e.svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(14000), e.balance(t))

	_, err = e.svc.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(14000), e.balance(t), "el cobro de la orden rechazada se devuelve")

	_, err = e.svc.Transition(ctx, o.ID, entity.OrderStatusCancelled, opActor)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), e.balance(t))
	assert.Equal(t, 10, e.stock(t, "p-1"))
}

func TestCreate_SaldoInsuficienteNoCreaOrden(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	_, err := e.ledger.Restock(ctx, locID, "p-1", operator, 10)
	require.NoError(t, err)
	resID := e.validate(t, 7)

	_, err = e.svc.Create(ctx, ordering.CreateInput{
		Operator: opActor, UserEmail: student, LocationID: locID, PaymentMethod: entity.PaymentBalance, ReservationID: resID,
		Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 7}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, int64(20000), e.balance(t))
	orders, err := e.repos.Orders.ListByUser(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreate_ClienteDebeExistir(t *testing.T) {
	e := newEnv(t, nil)
	resID := e.validate(t, 1)
	for _, email := range []string{"nadie@unisabana.edu.co", operator} {
		_, err := e.svc.Create(context.Background(), ordering.CreateInput{
			Operator: opActor, UserEmail: email, LocationID: locID, PaymentMethod: entity.PaymentCash, ReservationID: resID,
			Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 1}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, email)
	}
}

func TestCreateYValidate_SoloOperadorAsignado(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	otherOp := ordering.Actor{Email: "otro@sabanapos.edu.co", Role: entity.RoleOperator}
	items := []inventory.ValidateItem{{ID: "p-1", Name: "Empanada", Quantity: 1}}

	_, _, err := e.svc.ValidateItems(ctx, otherOp, locID, items)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, _, err = e.svc.ValidateItems(ctx, stuActor, locID, items)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 10, e.stock(t, "p-1"), "una validación rechazada no reserva")

	resID := e.validate(t, 1)
	_, err = e.svc.Create(ctx, ordering.CreateInput{
		Operator: otherOp, UserEmail: student, LocationID: locID, PaymentMethod: entity.PaymentCash, ReservationID: resID,
		Lines: []ordering.LineInput{{ProductID: "p-1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ── Transition ───────────────────────────────────────────────────────────────

func TestTransition_TablaCompleta(t *testing.T) {
	for _, from := range order.AllStatuses() {
		for _, to := range order.AllStatuses() {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				e := newEnv(t, nil)
				ctx := context.Background()
				o := &entity.Order{
					ID: "o-1", OrderNumber: 12345, UserEmail: student, LocationID: locID,
					LocationName: "Punto Sabana", PaymentMethod: entity.PaymentCash, Status: from,
					CreatedAt: time.Now(), UpdatedAt: time.Now(),
				}
				require.NoError(t, e.repos.Orders.Create(ctx, o))

				res, err := e.svc.Transition(ctx, "o-1", to, opActor)
				stored, gerr := e.repos.Orders.GetByID(ctx, "o-1")
				require.NoError(t, gerr)

				if order.CanTransition(from, to) {
					require.NoError(t, err)
					assert.Equal(t, from, res.From)
					assert.Equal(t, to, res.To)
					assert.Equal(t, to, stored.Status)
				} else {
					assert.ErrorIs(t, err, domain.ErrInvalidTransition)
					assert.Equal(t, from, stored.Status, "el estado no cambia tras un rechazo")
				}
			})
		}
	}
}

func TestTransition_ConfirmadaAListaNotificaUnaVez(t *testing.T) {
	e := newEnv(t, nil)
	o := e.checkout(t, entity.PaymentCard)

	_, err := e.svc.Transition(context.Background(), o.ID, entity.OrderStatusReadyForPickup, opActor)
	require.NoError(t, err)

	stu := e.notifications(t, notification.Viewer{Email: student, Role: entity.RoleClient}, entity.NotificationOrderStatus)
	ops := e.notifications(t, notification.Viewer{Email: operator, Role: entity.RoleOperator}, entity.NotificationOrderStatus)
	require.Len(t, stu, 1)
	require.Len(t, ops, 1)
	assert.Contains(t, stu[0].Message, "listo para recoger")
	assert.Equal(t, o.ID, ops[0].OrderID)
}

func TestTransition_MismoEstadoRechazado(t *testing.T) {
	e := newEnv(t, nil)
	o := e.checkout(t, entity.PaymentCard)
	_, err := e.svc.Transition(context.Background(), o.ID, entity.OrderStatusConfirmed, opActor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, e.notifications(t, notification.Viewer{Email: student, Role: entity.RoleClient}, entity.NotificationOrderStatus))
}

func TestTransition_CanceladaDevuelveStockYSaldo(t *testing.T) {
	e := newEnv(t, nil)
	o := e.checkout(t, entity.PaymentBalance)
	require.Equal(t, 8, e.stock(t, "p-1"))
	require.Equal(t, int64(12500), e.balance(t))

	_, err := e.svc.Transition(context.Background(), o.ID, entity.OrderStatusCancelled, opActor)
	require.NoError(t, err)
	assert.Equal(t, 10, e.stock(t, "p-1"))
	assert.Equal(t, 20, e.stock(t, "p-2"))
	assert.Equal(t, int64(20000), e.balance(t))
}

func TestTransition_SoloOperadorAsignado(t *testing.T) {
	e := newEnv(t, nil)
	o := e.checkout(t, entity.PaymentCard)
	ctx := context.Background()

	_, err := e.svc.Transition(ctx, o.ID, entity.OrderStatusInPreparation, stuActor)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	otherOp := ordering.Actor{Email: "otro@sabanapos.edu.co", Role: entity.RoleOperator}
	_, err = e.svc.Transition(ctx, o.ID, entity.OrderStatusInPreparation, otherOp)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.svc.Transition(ctx, "no-existe", entity.OrderStatusInPreparation, opActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Consultas ────────────────────────────────────────────────────────────────

func TestGetByUserYPending(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	first := e.checkout(t, entity.PaymentCard)
	time.Sleep(2 * time.Millisecond)
	second := e.checkout(t, entity.PaymentCash)

	_, err := e.svc.Transition(ctx, first.ID, entity.OrderStatusCancelled, opActor)
	require.NoError(t, err)

	all, err := e.svc.GetByUser(ctx, stuActor, student)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "más reciente primero")

	pending, err := e.svc.GetPending(ctx, student)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	_, err = e.svc.GetByUser(ctx, stuActor, "otro@unisabana.edu.co")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetByID_Acceso(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	o := e.checkout(t, entity.PaymentCard)

	_, err := e.svc.GetByID(ctx, stuActor, o.ID)
	require.NoError(t, err)
	_, err = e.svc.GetByID(ctx, opActor, o.ID)
	require.NoError(t, err)
	_, err = e.svc.GetByID(ctx, ordering.Actor{Email: "x@unisabana.edu.co", Role: entity.RoleClient}, o.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListByLocation_FiltraEstados(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a := e.checkout(t, entity.PaymentCard)
	e.checkout(t, entity.PaymentCard)
	_, err := e.svc.Transition(ctx, a.ID, entity.OrderStatusInPreparation, opActor)
	require.NoError(t, err)

	list, err := e.svc.ListByLocation(ctx, opActor, locID, []string{entity.OrderStatusInPreparation})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, err = e.svc.ListByLocation(ctx, opActor, locID, []string{"Perdido"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.svc.ListByLocation(ctx, opActor, "loc-2", nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
