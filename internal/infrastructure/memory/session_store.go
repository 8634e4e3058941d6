package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sabanapos/pedidos-api/internal/application/usecase"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

var _ usecase.SessionStore = (*SessionStore)(nil)

// SessionStore sesiones en memoria con expiración perezosa.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

type sessionEntry struct {
	s       entity.Session
	expires time.Time
}

// NewSessionStore crea un almacén de sesiones vacío.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]sessionEntry), now: time.Now}
}

func (st *SessionStore) Save(_ context.Context, s *entity.Session, ttl time.Duration) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	cp := *s
	cp.Cart = append([]entity.CartLine(nil), s.Cart...)
	st.sessions[s.Token] = sessionEntry{s: cp, expires: st.now().Add(ttl)}
	return nil
}

func (st *SessionStore) Get(_ context.Context, token string) (*entity.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[token]
	if !ok {
		return nil, nil
	}
	if !st.now().Before(e.expires) {
		delete(st.sessions, token)
		return nil, nil
	}
	cp := e.s
	cp.Cart = append([]entity.CartLine(nil), e.s.Cart...)
	return &cp, nil
}

func (st *SessionStore) Delete(_ context.Context, token string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, token)
	return nil
}
