package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

var _ notification.LiveHub = (*Hub)(nil)

const (
	channelPrefix    = "pedidos:notif:"
	subscriberBuffer = 32
)

// Hub transporte en vivo sobre Redis pub/sub: cualquier réplica de la API entrega a sus sesiones conectadas.
type Hub struct {
	client *goredis.Client
	log    zerolog.Logger
}

// NewHub construye el hub sobre un cliente ya conectado.
func NewHub(client *goredis.Client, log zerolog.Logger) *Hub {
	return &Hub{client: client, log: log}
}

type wireNotification struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	OrderID   string    `json:"order_id,omitempty"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Hub) Publish(ctx context.Context, channel string, n *entity.Notification) error {
	payload, err := json.Marshal(wireNotification(*n))
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := h.client.Publish(ctx, channelPrefix+channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe abre una suscripción Redis para los canales; los mensajes ilegibles se descartan.
func (h *Hub) Subscribe(ctx context.Context, channels []string) (<-chan *entity.Notification, func(), error) {
	names := make([]string, 0, len(channels))
	for _, c := range channels {
		names = append(names, channelPrefix+c)
	}
	ps := h.client.Subscribe(ctx, names...)
	// Receive espera la confirmación de la suscripción antes de devolver el canal.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan *entity.Notification, subscriberBuffer)
	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var w wireNotification
				if err := json.Unmarshal([]byte(msg.Payload), &w); err != nil {
					h.log.Warn().Err(err).Str("channel", msg.Channel).Msg("notificación en vivo ilegible")
					continue
				}
				n := entity.Notification(w)
				select {
				case out <- &n:
				default:
				}
			}
		}
	}()
	return out, cancel, nil
}
