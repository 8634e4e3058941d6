// Package retry acota cada intento de almacenamiento con un timeout y reintenta una sola vez los fallos transitorios.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sabanapos/pedidos-api/internal/domain"
)

// Policy timeout por intento y espera antes del único reintento.
type Policy struct {
	Timeout time.Duration
	Backoff time.Duration
}

// DefaultPolicy 3s por intento, 100ms de espera.
func DefaultPolicy() Policy {
	return Policy{Timeout: 3 * time.Second, Backoff: 100 * time.Millisecond}
}

// IsTransient errores que justifican reintentar: almacenamiento caído, timeout del intento o CAS perdido.
func IsTransient(err error) bool {
	return errors.Is(err, domain.ErrTransientStorage) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, domain.ErrConflict)
}

// Once ejecuta fn con un contexto acotado; si falla de forma transitoria espera Backoff y
// lo intenta una vez más. El segundo fallo transitorio se devuelve envuelto en domain.ErrTransientStorage.
func Once(ctx context.Context, p Policy, op string, fn func(ctx context.Context) error) error {
	var last error
	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := runAttempt(ctx, p.Timeout, fn)
		if err == nil {
			return nil
		}
		if !IsTransient(err) || ctx.Err() != nil {
			return err
		}
		last = err
		if attempt == 0 && p.Backoff > 0 {
			select {
			case <-time.After(p.Backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if errors.Is(last, domain.ErrTransientStorage) {
		return fmt.Errorf("%s: %w", op, last)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrTransientStorage, last)
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
