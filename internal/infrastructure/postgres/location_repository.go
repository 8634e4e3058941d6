package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo puntos de venta y asignación de operadores sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste un punto de venta.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	query := `
		INSERT INTO locations (id, name, kind, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, l.ID, l.Name, l.Kind, l.CreatedAt, l.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert location", err)
	}
	return nil
}

// GetByID obtiene un punto de venta. nil, nil si no existe.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	query := `SELECT id, name, kind, created_at, updated_at FROM locations WHERE id = $1`
	var l entity.Location
	err := r.q.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.Kind, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, wrap("get location", err)
	}
	return &l, nil
}

// List todos los puntos de venta por nombre.
func (r *LocationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, kind, created_at, updated_at FROM locations ORDER BY name`)
	if err != nil {
		return nil, wrap("list locations", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Kind, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, wrap("scan location", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// AssignOperator asocia un operador; repetir la asignación no es error.
func (r *LocationRepo) AssignOperator(ctx context.Context, a *entity.OperatorAssignment) error {
	query := `
		INSERT INTO location_operators (location_id, operator_email, created_at)
		VALUES ($1, lower($2), $3)
		ON CONFLICT (location_id, operator_email) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, a.LocationID, a.OperatorEmail, a.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return domain.ErrNotFound
		}
		return wrap("assign operator", err)
	}
	return nil
}

// OperatorsOf correos de los operadores del punto de venta.
func (r *LocationRepo) OperatorsOf(ctx context.Context, locationID string) ([]string, error) {
	return r.strings(ctx, `SELECT operator_email FROM location_operators WHERE location_id = $1 ORDER BY operator_email`, locationID)
}

// LocationsOf puntos de venta del operador.
func (r *LocationRepo) LocationsOf(ctx context.Context, operatorEmail string) ([]string, error) {
	return r.strings(ctx, `SELECT location_id::text FROM location_operators WHERE operator_email = lower($1) ORDER BY location_id`, operatorEmail)
}

func (r *LocationRepo) strings(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, wrap("list operators", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, wrap("scan operator", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
