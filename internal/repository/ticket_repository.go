package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetDetail(ctx context.Context, filter TicketFilter) (*domain.TicketDetail, error)
	List(ctx context.Context, query TicketListQuery) ([]domain.TicketDetail, error)
	Count(ctx context.Context, filter TicketFilter) (int, error)
	Stats(ctx context.Context, filter TicketFilter) (domain.TicketStats, error)
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// Create inserts ticket and fills its id. Constraint violations come back as
// ErrDuplicateTicketNumber, ErrDuplicate or ErrForeignKey.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (numero_ticket, titulo, descripcion, categoria_id, prioridad_id, estado_id,
                             usuario_solicitante_id, equipo_afectado_id, fecha_creacion)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, fecha_creacion`
	err := r.pool.QueryRow(ctx, query,
		ticket.Number,
		ticket.Title,
		ticket.Description,
		ticket.CategoryID,
		ticket.PriorityID,
		ticket.StateID,
		ticket.RequesterID,
		ticket.EquipmentID,
		ticket.CreatedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		return translatePgError(err)
	}
	return nil
}

// GetDetail returns the single row matching filter, or pgx.ErrNoRows.
func (r *ticketRepository) GetDetail(ctx context.Context, filter TicketFilter) (*domain.TicketDetail, error) {
	where, args := buildTicketWhere(filter, nil)
	row := r.pool.QueryRow(ctx, ticketDetailSelect+" "+where+" LIMIT 1", args...)
	detail, err := scanTicketDetail(row)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *ticketRepository) List(ctx context.Context, query TicketListQuery) ([]domain.TicketDetail, error) {
	sql, args := buildTicketListSQL(query)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketDetail{}
	for rows.Next() {
		detail, err := scanTicketDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, detail)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int, error) {
	sql, args := buildTicketCountSQL(filter)
	var total int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ticketRepository) Stats(ctx context.Context, filter TicketFilter) (domain.TicketStats, error) {
	sql, args := buildTicketStatsSQL(filter)
	var stats domain.TicketStats
	err := r.pool.QueryRow(ctx, sql, args...).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.InProgress,
		&stats.Resolved,
		&stats.Closed,
		&stats.HighPriority,
	)
	return stats, err
}

// LastNumberWithPrefix returns the highest ticket number starting with prefix, or ""
// when none exists. Longer numbers sort first so a five-digit day still wins.
func (r *ticketRepository) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	const query = `
        SELECT numero_ticket FROM tickets
        WHERE numero_ticket LIKE $1
        ORDER BY LENGTH(numero_ticket) DESC, numero_ticket DESC
        LIMIT 1`
	var number string
	err := r.pool.QueryRow(ctx, query, escapeLike(prefix)+"%").Scan(&number)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return number, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanTicketDetail(row pgx.Row) (domain.TicketDetail, error) {
	var d domain.TicketDetail
	err := row.Scan(
		&d.ID,
		&d.Number,
		&d.Title,
		&d.Description,
		&d.CategoryID,
		&d.PriorityID,
		&d.StateID,
		&d.RequesterID,
		&d.TechnicianID,
		&d.EquipmentID,
		&d.CreatedAt,
		&d.AssignedAt,
		&d.ResolvedAt,
		&d.ClosedAt,
		&d.CategoryName,
		&d.PriorityName,
		&d.PriorityLevel,
		&d.StateName,
		&d.RequesterName,
		&d.RequesterEmail,
		&d.TechnicianName,
		&d.EquipmentName,
	)
	return d, err
}
