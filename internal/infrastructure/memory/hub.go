package memory

import (
	"context"
	"sync"

	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

var _ notification.LiveHub = (*Hub)(nil)

const subscriberBuffer = 32

// Hub transporte en vivo dentro del proceso. Un suscriptor lento pierde mensajes en lugar de bloquear al emisor.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch     chan *entity.Notification
	once   sync.Once
	closed chan struct{}
}

// NewHub crea un hub vacío.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Publish entrega n a los suscriptores del canal.
func (h *Hub) Publish(_ context.Context, channel string, n *entity.Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[channel] {
		cp := *n
		select {
		case sub.ch <- &cp:
		case <-sub.closed:
		default:
		}
	}
	return nil
}

// Subscribe registra un suscriptor para los canales indicados.
func (h *Hub) Subscribe(ctx context.Context, channels []string) (<-chan *entity.Notification, func(), error) {
	sub := &subscriber{
		ch:     make(chan *entity.Notification, subscriberBuffer),
		closed: make(chan struct{}),
	}
	h.mu.Lock()
	for _, c := range channels {
		if h.subs[c] == nil {
			h.subs[c] = make(map[*subscriber]struct{})
		}
		h.subs[c][sub] = struct{}{}
	}
	h.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			h.mu.Lock()
			for _, c := range channels {
				delete(h.subs[c], sub)
				if len(h.subs[c]) == 0 {
					delete(h.subs, c)
				}
			}
			h.mu.Unlock()
			close(sub.closed)
			close(sub.ch)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-sub.closed:
		}
	}()
	return sub.ch, cancel, nil
}
