// Package memory implementa los puertos de persistencia en memoria del proceso.
// Se usa con STORAGE_DRIVER=memory (desarrollo local) y en las pruebas de casos de uso.
package memory

import (
	"sync"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// Store estado compartido por todos los repositorios en memoria.
// mu protege los mapas; txMu serializa las transacciones del libro de stock.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users         map[string]*entity.User
	locations     map[string]*entity.Location
	assignments   []entity.OperatorAssignment
	products      map[string]*entity.Product
	movements     []*entity.StockMovement
	orders        map[string]*entity.Order
	notifications map[string]*entity.Notification
	favorites     map[string]*entity.Favorite
	cards         map[string]*entity.Card
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		users:         make(map[string]*entity.User),
		locations:     make(map[string]*entity.Location),
		products:      make(map[string]*entity.Product),
		orders:        make(map[string]*entity.Order),
		notifications: make(map[string]*entity.Notification),
		favorites:     make(map[string]*entity.Favorite),
		cards:         make(map[string]*entity.Card),
	}
}

// Repos agrupa los adaptadores sobre un mismo Store.
type Repos struct {
	Users         *UserRepo
	Locations     *LocationRepo
	Products      *ProductRepo
	Orders        *OrderRepo
	Notifications *NotificationRepo
	Favorites     *FavoriteRepo
	Cards         *CardRepo
	TxRunner      *TxRunner
}

// NewRepos construye todos los repositorios sobre s.
func NewRepos(s *Store) Repos {
	return Repos{
		Users:         &UserRepo{s: s},
		Locations:     &LocationRepo{s: s},
		Products:      &ProductRepo{s: s},
		Orders:        &OrderRepo{s: s},
		Notifications: &NotificationRepo{s: s},
		Favorites:     &FavoriteRepo{s: s},
		Cards:         &CardRepo{s: s},
		TxRunner:      NewTxRunner(s),
	}
}

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Products = append([]entity.OrderLine(nil), o.Products...)
	return &cp
}
