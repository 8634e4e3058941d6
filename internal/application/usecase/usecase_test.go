package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/application/inventory"
	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/application/usecase"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/infrastructure/memory"
	"github.com/sabanapos/pedidos-api/pkg/retry"
)

var (
	op     = usecase.Actor{UserID: "u-op", Email: "ops@sabanapos.edu.co", Role: entity.RoleOperator}
	client = usecase.Actor{UserID: "u-stu", Email: "stu@unisabana.edu.co", Role: entity.RoleClient}
)

type deps struct {
	repos      memory.Repos
	ledger     *inventory.Ledger
	dispatcher *notification.Dispatcher
}

func newDeps(t *testing.T) *deps {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepos(memory.NewStore())
	d := notification.NewDispatcher(repos.Notifications, repos.Locations, nil, nil, zerolog.Nop())
	l := inventory.NewLedger(repos.TxRunner, repos.Products, d, inventory.Config{
		Retry: retry.Policy{Timeout: time.Second, Backoff: time.Millisecond},
	}, zerolog.Nop())
	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: "loc-1", Name: "Punto Sabana", Kind: entity.LocationKindCafe}))
	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: "loc-2", Name: "Kiosco Norte", Kind: entity.LocationKindKiosk}))
	require.NoError(t, repos.Locations.AssignOperator(ctx, &entity.OperatorAssignment{LocationID: "loc-1", OperatorEmail: op.Email}))
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: client.UserID, Email: client.Email, Role: entity.RoleClient}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p-1", LocationID: "loc-1", Name: "Empanada", Category: "snacks", Stock: 10, Price: 3000}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p-9", LocationID: "loc-2", Name: "Jugo", Stock: 4, Price: 4000}))
	return &deps{repos: repos, ledger: l, dispatcher: d}
}

// ── Productos ────────────────────────────────────────────────────────────────

func TestProduct_CreateConStockInicialPasaPorElLibro(t *testing.T) {
	d := newDeps(t)
	uc := usecase.NewProductUseCase(d.repos.Products, d.repos.Locations, d.ledger)

	p, err := uc.Create(context.Background(), op, "loc-1", dto.CreateProductRequest{Name: "Arepa", Category: "snacks", Price: 4500, Stock: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, p.Stock)
	assert.Equal(t, "loc-1", p.LocationID)

	_, err = uc.Create(context.Background(), op, "loc-2", dto.CreateProductRequest{Name: "Pan", Price: 1000})
	assert.ErrorIs(t, err, domain.ErrForbidden, "operador no asignado")

	_, err = uc.Create(context.Background(), client, "loc-1", dto.CreateProductRequest{Name: "Pan", Price: 1000})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestProduct_UpdateNoTocaStock(t *testing.T) {
	d := newDeps(t)
	uc := usecase.NewProductUseCase(d.repos.Products, d.repos.Locations, d.ledger)
	name := "Empanada de pipián"
	price := int64(3500)

	p, err := uc.Update(context.Background(), op, "p-1", dto.UpdateProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, name, p.Name)
	assert.Equal(t, int64(3500), p.Price)
	assert.Equal(t, 10, p.Stock)
}

func TestProduct_RestockYLowStock(t *testing.T) {
	d := newDeps(t)
	uc := usecase.NewProductUseCase(d.repos.Products, d.repos.Locations, d.ledger)
	ctx := context.Background()

	low, err := uc.LowStock(ctx, op, "loc-1")
	require.NoError(t, err)
	assert.Empty(t, low)

	_, err = d.ledger.Reserve(ctx, "loc-1", client.Email, []inventory.ReserveLine{{ProductID: "p-1", Quantity: 7}})
	require.NoError(t, err)
	low, err = uc.LowStock(ctx, op, "loc-1")
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, 3, low[0].Stock)

	p, err := uc.Restock(ctx, op, "p-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)

	_, err = uc.Restock(ctx, op, "p-9", 5)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ── Favoritos ────────────────────────────────────────────────────────────────

func TestFavorite_SoloClientesYAvisoALaSala(t *testing.T) {
	d := newDeps(t)
	uc := usecase.NewFavoriteUseCase(d.repos.Favorites, d.repos.Products, d.dispatcher, zerolog.Nop())
	ctx := context.Background()

	_, err := uc.Add(ctx, op, "p-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	fav, err := uc.Add(ctx, client, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Empanada", fav.Name)
	assert.Equal(t, int64(3000), fav.Price)

	list, err := uc.List(ctx, client)
	require.NoError(t, err)
	require.Len(t, list, 1)

	notes, err := d.dispatcher.List(ctx, notification.Viewer{Email: op.Email, Role: entity.RoleOperator})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, entity.NotificationFavoriteProduct, notes[0].Type)

	require.NoError(t, uc.Remove(ctx, client, "p-1"))
	list, err = uc.List(ctx, client)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.Add(ctx, client, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Tarjetas y saldo ─────────────────────────────────────────────────────────

func TestCard_AddValidaLuhnYEnmascara(t *testing.T) {
	d := newDeps(t)
	uc := usecase.NewCardUseCase(d.repos.Cards, d.repos.Users)
	ctx := context.Background()

	_, err := uc.Add(ctx, client, dto.AddCardRequest{Number: "4111 1111 1111 1112"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := uc.Add(ctx, client, dto.AddCardRequest{Number: "4111 1111 1111 1111"})
	require.NoError(t, err)
	assert.Equal(t, "1111", c.Last4)
	assert.Equal(t, "visa", c.Type)

	_, err = uc.Add(ctx, op, dto.AddCardRequest{Number: "4111111111111111"})
	assert.ErrorIs(t, err, domain.ErrForbidden, "los operadores no guardan tarjetas")

	stored, err := d.repos.Cards.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.NumberHash, "4111111111111111")
}

func TestCard_TopUpYDelete(t *testing.T) {
	d := newDeps(t)
	uc := usecase.NewCardUseCase(d.repos.Cards, d.repos.Users)
	ctx := context.Background()
	c, err := uc.Add(ctx, client, dto.AddCardRequest{Number: "5555555555554444"})
	require.NoError(t, err)
	assert.Equal(t, "mastercard", c.Type)

	bal, err := uc.TopUp(ctx, client, dto.TopUpRequest{Amount: 15000, CardID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), bal.Balance)

	_, err = uc.TopUp(ctx, client, dto.TopUpRequest{Amount: -5, CardID: c.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other := usecase.Actor{UserID: "u-x", Email: "x@unisabana.edu.co", Role: entity.RoleClient}
	assert.ErrorIs(t, uc.Delete(ctx, other, c.ID), domain.ErrForbidden)
	require.NoError(t, uc.Delete(ctx, client, c.ID))

	got, err := uc.Balance(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), got.Balance)
}

// ── Sesión ───────────────────────────────────────────────────────────────────

func TestSession_UbicacionYCarrito(t *testing.T) {
	d := newDeps(t)
	uc := usecase.NewSessionUseCase(memory.NewSessionStore(), d.repos.Locations, d.repos.Products, time.Hour)
	ctx := context.Background()

	s, err := uc.Open(ctx, client)
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)

	_, err = uc.SetCart(ctx, client, s.Token, []dto.OrderLineRequest{{ProductID: "p-1", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin ubicación elegida")

	_, err = uc.SelectLocation(ctx, client, s.Token, "loc-1")
	require.NoError(t, err)
	s, err = uc.SetCart(ctx, client, s.Token, []dto.OrderLineRequest{{ProductID: "p-1", Quantity: 2}})
	require.NoError(t, err)
	assert.Len(t, s.Cart, 1)

	_, err = uc.SetCart(ctx, client, s.Token, []dto.OrderLineRequest{{ProductID: "p-9", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto de otro punto de venta")

	s, err = uc.SelectLocation(ctx, client, s.Token, "loc-2")
	require.NoError(t, err)
	assert.Empty(t, s.Cart, "cambiar de ubicación vacía el carrito")

	other := usecase.Actor{UserID: "u-x", Email: "x@unisabana.edu.co", Role: entity.RoleClient}
	_, err = uc.Get(ctx, other, s.Token)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, uc.Close(ctx, client, s.Token))
	_, err = uc.Get(ctx, client, s.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
