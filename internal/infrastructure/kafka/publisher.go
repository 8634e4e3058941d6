// Package kafka publica los eventos de dominio (pedidos, cambios de estado, stock bajo) en un tópico Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/pkg/config"
)

var _ notification.EventPublisher = (*Publisher)(nil)

// messageWriter lo que usa Publisher de *kafkago.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// DefaultPublishTimeout tope de cada publicación; un broker caído no debe frenar checkouts ni transiciones.
const DefaultPublishTimeout = 2 * time.Second

// Publisher escribe un mensaje JSON por evento. La clave es el punto de venta para conservar el orden por partición.
type Publisher struct {
	w       messageWriter
	timeout time.Duration
}

// NewPublisher crea el writer para los brokers y el tópico configurados. La escritura es asíncrona;
// los lotes que fallan se registran en log.
func NewPublisher(cfg config.KafkaConfig, log zerolog.Logger) *Publisher {
	return &Publisher{
		w: &kafkago.Writer{
			Addr:                   kafkago.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireOne,
			BatchTimeout:           50 * time.Millisecond,
			WriteTimeout:           5 * time.Second,
			AllowAutoTopicCreation: true,
			Async:                  true,
			Completion: func(msgs []kafkago.Message, err error) {
				if err != nil {
					log.Warn().Err(err).Int("messages", len(msgs)).Msg("kafka: lote no entregado")
				}
			},
		},
		timeout: DefaultPublishTimeout,
	}
}

func newPublisherWithWriter(w messageWriter, timeout time.Duration) *Publisher {
	return &Publisher{w: w, timeout: timeout}
}

func (p *Publisher) Publish(ctx context.Context, key string, ev notification.DomainEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	}
	// El evento no depende de que la petición HTTP siga abierta, pero sí tiene un tope propio
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

// Close vacía los mensajes pendientes.
func (p *Publisher) Close() error {
	return p.w.Close()
}
