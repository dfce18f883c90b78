package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ReferenceRepository reads categories, priorities, states and equipment. Rows that
// are inactive or soft-deleted do not exist for any of these methods.
type ReferenceRepository interface {
	CategoryExists(ctx context.Context, id int64) (bool, error)
	PriorityExists(ctx context.Context, id int64) (bool, error)
	EquipmentExists(ctx context.Context, id int64) (bool, error)
	StateIDByName(ctx context.Context, name string) (int64, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListPriorities(ctx context.Context) ([]domain.Priority, error)
	ListStates(ctx context.Context) ([]domain.State, error)
	ListEquipment(ctx context.Context) ([]domain.Equipment, error)
}

type referenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository builds the repository.
func NewReferenceRepository(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepository{pool: pool}
}

func (r *referenceRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM categorias WHERE id=$1 AND activo AND deleted_at IS NULL)`, id)
}

func (r *referenceRepository) PriorityExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM prioridades WHERE id=$1 AND activo AND deleted_at IS NULL)`, id)
}

func (r *referenceRepository) EquipmentExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM equipos WHERE id=$1 AND activo AND deleted_at IS NULL)`, id)
}

func (r *referenceRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var found bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// StateIDByName returns pgx.ErrNoRows when the state is missing.
func (r *referenceRepository) StateIDByName(ctx context.Context, name string) (int64, error) {
	const query = `
        SELECT id FROM estados_ticket
        WHERE nombre=$1 AND activo AND deleted_at IS NULL
        LIMIT 1`
	var id int64
	if err := r.pool.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *referenceRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const query = `
        SELECT id, nombre, COALESCE(descripcion, '')
        FROM categorias WHERE activo AND deleted_at IS NULL ORDER BY id`
	return collect(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Category, error) {
		var c domain.Category
		err := row.Scan(&c.ID, &c.Name, &c.Description)
		return c, err
	})
}

func (r *referenceRepository) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	const query = `
        SELECT id, nombre, nivel, COALESCE(color, '')
        FROM prioridades WHERE activo AND deleted_at IS NULL ORDER BY nivel, id`
	return collect(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Priority, error) {
		var p domain.Priority
		err := row.Scan(&p.ID, &p.Name, &p.Level, &p.Color)
		return p, err
	})
}

func (r *referenceRepository) ListStates(ctx context.Context) ([]domain.State, error) {
	const query = `
        SELECT id, nombre, COALESCE(descripcion, ''), es_final, orden
        FROM estados_ticket WHERE activo AND deleted_at IS NULL ORDER BY orden, id`
	return collect(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.State, error) {
		var s domain.State
		err := row.Scan(&s.ID, &s.Name, &s.Description, &s.IsFinal, &s.Order)
		return s, err
	})
}

func (r *referenceRepository) ListEquipment(ctx context.Context) ([]domain.Equipment, error) {
	const query = `
        SELECT id, nombre, COALESCE(tipo, ''), COALESCE(marca, ''), COALESCE(modelo, ''),
               COALESCE(numero_serie, ''), COALESCE(ubicacion, '')
        FROM equipos WHERE activo AND deleted_at IS NULL ORDER BY id`
	return collect(ctx, r.pool, query, func(row pgx.CollectableRow) (domain.Equipment, error) {
		var e domain.Equipment
		err := row.Scan(&e.ID, &e.Name, &e.Type, &e.Brand, &e.Model, &e.SerialNumber, &e.Location)
		return e, err
	})
}

func collect[T any](ctx context.Context, pool *pgxpool.Pool, query string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}
