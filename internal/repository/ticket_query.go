package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter holds equality and range predicates, all combined with AND.
// RequesterID and TechnicianID carry the caller's visibility scope.
type TicketFilter struct {
	TicketID      *int64
	RequesterID   *int64
	TechnicianID  *int64
	StateID       *int64
	CategoryID    *int64
	PriorityID    *int64
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

// TicketListQuery is one page of a filtered, sorted listing.
type TicketListQuery struct {
	Filter    TicketFilter
	Sort      domain.SortField
	Direction domain.SortDirection
	Limit     int
	Offset    int
}

var sortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt:     "t.fecha_creacion",
	domain.SortByTitle:         "t.titulo",
	domain.SortByPriorityLevel: "p.nivel",
	domain.SortByState:         "e.nombre",
	domain.SortByNumber:        "t.numero_ticket",
}

const ticketDetailSelect = `
        SELECT t.id, t.numero_ticket, t.titulo, t.descripcion, t.categoria_id, t.prioridad_id, t.estado_id,
               t.usuario_solicitante_id, t.tecnico_asignado_id, t.equipo_afectado_id,
               t.fecha_creacion, t.fecha_asignacion, t.fecha_resolucion, t.fecha_cierre,
               c.nombre, p.nombre, p.nivel, e.nombre, s.nombre, s.email, tec.nombre, eq.nombre
        FROM tickets t
        JOIN categorias c ON c.id = t.categoria_id
        JOIN prioridades p ON p.id = t.prioridad_id
        JOIN estados_ticket e ON e.id = t.estado_id
        JOIN usuarios s ON s.id = t.usuario_solicitante_id
        LEFT JOIN usuarios tec ON tec.id = t.tecnico_asignado_id
        LEFT JOIN equipos eq ON eq.id = t.equipo_afectado_id`

// buildTicketWhere renders filter as a WHERE clause with $n placeholders. Only
// column names from this function reach the SQL text; values always travel as args.
func buildTicketWhere(filter TicketFilter, args []any) (string, []any) {
	clauses := []string{"1=1"}

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s $%d", column, len(args)))
	}

	if filter.TicketID != nil {
		add("t.id =", *filter.TicketID)
	}
	if filter.RequesterID != nil {
		add("t.usuario_solicitante_id =", *filter.RequesterID)
	}
	if filter.TechnicianID != nil {
		add("t.tecnico_asignado_id =", *filter.TechnicianID)
	}
	if filter.StateID != nil {
		add("t.estado_id =", *filter.StateID)
	}
	if filter.CategoryID != nil {
		add("t.categoria_id =", *filter.CategoryID)
	}
	if filter.PriorityID != nil {
		add("t.prioridad_id =", *filter.PriorityID)
	}
	if filter.CreatedFrom != nil {
		add("t.fecha_creacion >=", *filter.CreatedFrom)
	}
	if filter.CreatedBefore != nil {
		add("t.fecha_creacion <", *filter.CreatedBefore)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause maps an allow-listed sort key to SQL. Unknown keys fall back to the
// creation date so a caller-controlled string can never reach the query text.
func orderClause(field domain.SortField, dir domain.SortDirection) string {
	column, ok := sortColumns[field]
	if !ok {
		column = sortColumns[domain.SortByCreatedAt]
	}
	direction := "DESC"
	if dir == domain.SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, t.id %s", column, direction, direction)
}

func buildTicketListSQL(q TicketListQuery) (string, []any) {
	where, args := buildTicketWhere(q.Filter, nil)
	args = append(args, q.Limit, q.Offset)
	sql := fmt.Sprintf("%s %s %s LIMIT $%d OFFSET $%d",
		ticketDetailSelect, where, orderClause(q.Sort, q.Direction), len(args)-1, len(args))
	return sql, args
}

func buildTicketCountSQL(filter TicketFilter) (string, []any) {
	where, args := buildTicketWhere(filter, nil)
	return "SELECT COUNT(*) FROM tickets t " + where, args
}

func buildTicketStatsSQL(filter TicketFilter) (string, []any) {
	args := []any{
		domain.StatePending,
		domain.StateInProgress,
		domain.StateResolved,
		domain.StateClosed,
		domain.HighPriorityLevel,
	}
	where, args := buildTicketWhere(filter, args)
	sql := `SELECT COUNT(*),
               COUNT(*) FILTER (WHERE e.nombre = $1),
               COUNT(*) FILTER (WHERE e.nombre = $2),
               COUNT(*) FILTER (WHERE e.nombre = $3),
               COUNT(*) FILTER (WHERE e.nombre = $4),
               COUNT(*) FILTER (WHERE p.nivel = $5)
        FROM tickets t
        JOIN estados_ticket e ON e.id = t.estado_id
        JOIN prioridades p ON p.id = t.prioridad_id ` + where
	return sql, args
}
