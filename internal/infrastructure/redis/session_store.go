package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sabanapos/pedidos-api/internal/application/usecase"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

var _ usecase.SessionStore = (*SessionStore)(nil)

const sessionPrefix = "pedidos:session:"

// SessionStore sesiones serializadas en JSON con TTL nativo de Redis.
type SessionStore struct {
	client *goredis.Client
}

func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Save(ctx context.Context, sess *entity.Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionPrefix+sess.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w: %v", domain.ErrTransientStorage, err)
	}
	return nil
}

// Get nil, nil si la clave no existe (o ya expiró).
func (s *SessionStore) Get(ctx context.Context, token string) (*entity.Session, error) {
	raw, err := s.client.Get(ctx, sessionPrefix+token).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w: %v", domain.ErrTransientStorage, err)
	}
	var sess entity.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w: %v", domain.ErrTransientStorage, err)
	}
	return nil
}
