package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	titleMaxLength       = 255
	descriptionMinLength = 10
	descriptionMaxLength = 1000

	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	defaultMaxNumberAttempts = 5

	// AssignmentNote accompanies every newly created ticket.
	AssignmentNote = "El ticket será asignado a un técnico por el equipo de soporte"
)

var tracer = otel.Tracer("github.com/spec-kit/helpdesk-service/internal/service")

// TicketService coordinates ticket creation and role-scoped queries.
type TicketService struct {
	tickets     repository.TicketRepository
	references  repository.ReferenceRepository
	numbers     TicketNumberGenerator
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	maxAttempts int
	location    *time.Location
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	ReferenceRepo repository.ReferenceRepository
	Numbers       TicketNumberGenerator
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	MaxAttempts   int
	Location      *time.Location
	Now           func() time.Time
}

// TicketCreateInput carries the raw creation payload. Ids are kept as text so that
// presence and numeric checks happen in validation order.
type TicketCreateInput struct {
	Title       string
	Description string
	CategoryID  string
	PriorityID  string
	EquipmentID string
}

// TicketListParams carries raw query-string values; empty means absent.
type TicketListParams struct {
	Page       string
	Limit      string
	StateID    string
	CategoryID string
	PriorityID string
	DateFrom   string
	DateTo     string
	Sort       string
	Direction  string
}

// AppliedFilters echoes the validated listing parameters.
type AppliedFilters struct {
	StateID    *int64
	CategoryID *int64
	PriorityID *int64
	DateFrom   string
	DateTo     string
	Sort       domain.SortField
	Direction  domain.SortDirection
}

// TicketView is a ticket row with the flags derived for the caller.
type TicketView struct {
	domain.TicketDetail
	Flags domain.TicketFlags
}

// TicketListResult is one page of visible tickets.
type TicketListResult struct {
	Tickets    []TicketView
	Pagination domain.Pagination
	Filters    AppliedFilters
	Stats      *domain.TicketStats
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:     deps.TicketRepo,
		references:  deps.ReferenceRepo,
		numbers:     deps.Numbers,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		maxAttempts: deps.MaxAttempts,
		location:    deps.Location,
		now:         deps.Now,
	}
	if svc.numbers == nil {
		svc.numbers = NewLastNumberGenerator(deps.TicketRepo)
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.maxAttempts <= 0 {
		svc.maxAttempts = defaultMaxNumberAttempts
	}
	if svc.location == nil {
		svc.location = time.Local
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// CreateTicket validates input, numbers and stores the ticket in the initial state,
// and returns it enriched for the requester.
func (s *TicketService) CreateTicket(ctx context.Context, principal *domain.Principal, input TicketCreateInput) (view *TicketView, err error) {
	ctx, span := tracer.Start(ctx, "TicketService.CreateTicket")
	defer func() { endSpan(span, err) }()

	if principal == nil || principal.UserID <= 0 {
		return nil, apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "usuario no autenticado")
	}

	fields, err := validateCreateInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, fields); err != nil {
		return nil, err
	}

	stateID, err := s.references.StateIDByName(ctx, domain.StatePending)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConfigurationError(apperrors.CodeInitialStateUnset,
				"el estado inicial \""+domain.StatePending+"\" no está configurado", err)
		}
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now().In(s.location)
	ticket := &domain.Ticket{
		Title:       fields.title,
		Description: fields.description,
		CategoryID:  fields.categoryID,
		PriorityID:  fields.priorityID,
		StateID:     stateID,
		RequesterID: principal.UserID,
		EquipmentID: fields.equipmentID,
		CreatedAt:   now,
	}
	if err := s.insertWithNumber(ctx, ticket, now); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("ticket.id", ticket.ID), attribute.String("ticket.number", ticket.Number))

	detail, err := s.tickets.GetDetail(ctx, repository.TicketFilter{TicketID: &ticket.ID})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	observability.IncTicketsCreated()

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  principal.UserID,
		Payload: events.TicketCreatedPayload{
			Number:         detail.Number,
			Title:          detail.Title,
			PriorityLevel:  detail.PriorityLevel,
			RequesterEmail: detail.RequesterEmail,
		},
	})

	return &TicketView{TicketDetail: *detail, Flags: domain.DeriveFlags(*detail, *principal, s.now())}, nil
}

// insertWithNumber draws a number and inserts, drawing again when another request
// took the same number first.
func (s *TicketService) insertWithNumber(ctx context.Context, ticket *domain.Ticket, now time.Time) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		number, err := s.numbers.Next(ctx, now)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		ticket.Number = number

		err = s.tickets.Create(ctx, ticket)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrDuplicateTicketNumber):
			observability.IncTicketNumberConflicts()
			s.logger.Warn("ticket number taken, retrying",
				zap.String("numero_ticket", number),
				zap.Int("attempt", attempt))
			if err := s.numbers.Resync(ctx, now); err != nil {
				s.logger.Warn("unable to resync ticket numbers", zap.Error(err))
			}
		case errors.Is(err, repository.ErrDuplicate):
			return apperrors.NewConflict(apperrors.CodeDuplicate, "datos duplicados", nil)
		case errors.Is(err, repository.ErrForeignKey):
			return apperrors.NewConflict(apperrors.CodeForeignKey, "referencia inválida en los datos del ticket", nil)
		default:
			return apperrors.NewInternalError(err)
		}
	}
	return apperrors.NewConflict(apperrors.CodeDuplicate,
		"no fue posible generar un número de ticket único, intente nuevamente",
		map[string]any{"intentos": s.maxAttempts})
}

type createFields struct {
	title       string
	description string
	categoryID  int64
	priorityID  int64
	equipmentID *int64
}

func validateCreateInput(input TicketCreateInput) (createFields, error) {
	var fields createFields

	fields.title = strings.TrimSpace(input.Title)
	if fields.title == "" {
		return fields, apperrors.NewValidationError(apperrors.CodeTitleRequired, "el título es requerido")
	}
	if utf8.RuneCountInString(fields.title) > titleMaxLength {
		return fields, apperrors.NewValidationError(apperrors.CodeTitleTooLong, "el título no puede exceder 255 caracteres")
	}

	fields.description = strings.TrimSpace(input.Description)
	if fields.description == "" {
		return fields, apperrors.NewValidationError(apperrors.CodeDescriptionRequired, "la descripción es requerida")
	}
	descLen := utf8.RuneCountInString(fields.description)
	if descLen < descriptionMinLength {
		return fields, apperrors.NewValidationError(apperrors.CodeDescriptionTooShort, "la descripción debe tener al menos 10 caracteres")
	}
	if descLen > descriptionMaxLength {
		return fields, apperrors.NewValidationError(apperrors.CodeDescriptionTooLong, "la descripción no puede exceder 1000 caracteres")
	}

	var ok bool
	if fields.categoryID, ok = parsePositiveID(input.CategoryID); !ok {
		return fields, apperrors.NewValidationError(apperrors.CodeInvalidCategory, "categoría inválida")
	}
	if fields.priorityID, ok = parsePositiveID(input.PriorityID); !ok {
		return fields, apperrors.NewValidationError(apperrors.CodeInvalidPriority, "prioridad inválida")
	}

	// A non-numeric equipment id is treated as not supplied.
	if raw := strings.TrimSpace(input.EquipmentID); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			fields.equipmentID = &id
		}
	}
	return fields, nil
}

func (s *TicketService) checkReferences(ctx context.Context, fields createFields) error {
	exists, err := s.references.CategoryExists(ctx, fields.categoryID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !exists {
		return apperrors.NewNotFound(apperrors.CodeCategoryNotFound, "la categoría no existe o está inactiva",
			map[string]any{"categoria_id": fields.categoryID})
	}

	if exists, err = s.references.PriorityExists(ctx, fields.priorityID); err != nil {
		return apperrors.NewInternalError(err)
	}
	if !exists {
		return apperrors.NewNotFound(apperrors.CodePriorityNotFound, "la prioridad no existe o está inactiva",
			map[string]any{"prioridad_id": fields.priorityID})
	}

	if fields.equipmentID == nil {
		return nil
	}
	if exists, err = s.references.EquipmentExists(ctx, *fields.equipmentID); err != nil {
		return apperrors.NewInternalError(err)
	}
	if !exists {
		return apperrors.NewNotFound(apperrors.CodeEquipmentNotFound, "el equipo no existe o está inactivo",
			map[string]any{"equipo_afectado_id": *fields.equipmentID})
	}
	return nil
}

// ListTickets returns the page of tickets visible to principal. Administrators also
// receive statistics over the whole filtered set.
func (s *TicketService) ListTickets(ctx context.Context, principal *domain.Principal, params TicketListParams) (result *TicketListResult, err error) {
	ctx, span := tracer.Start(ctx, "TicketService.ListTickets")
	defer func() { endSpan(span, err) }()

	if principal == nil {
		return nil, apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "usuario no autenticado")
	}

	query, page, filters, err := s.parseListParams(params)
	if err != nil {
		return nil, err
	}
	if err := applyVisibility(&query.Filter, *principal); err != nil {
		return nil, err
	}

	total, err := s.tickets.Count(ctx, query.Filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	rows := []domain.TicketDetail{}
	if total > 0 {
		if rows, err = s.tickets.List(ctx, query); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}

	now := s.now()
	views := make([]TicketView, 0, len(rows))
	for _, row := range rows {
		views = append(views, TicketView{TicketDetail: row, Flags: domain.DeriveFlags(row, *principal, now)})
	}

	result = &TicketListResult{
		Tickets:    views,
		Pagination: domain.NewPagination(page, query.Limit, total),
		Filters:    filters,
	}

	if principal.Role == domain.RoleAdmin {
		stats, err := s.tickets.Stats(ctx, query.Filter)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if stats.Bucketed() > stats.Total {
			s.logger.Warn("ticket state buckets exceed total",
				zap.Int("total", stats.Total),
				zap.Int("bucketed", stats.Bucketed()))
		}
		result.Stats = &stats
	}

	span.SetAttributes(attribute.Int("tickets.total", total), attribute.String("principal.role", string(principal.Role)))
	return result, nil
}

// GetTicket returns one ticket under the same visibility rule as ListTickets.
func (s *TicketService) GetTicket(ctx context.Context, principal *domain.Principal, rawID string) (view *TicketView, err error) {
	ctx, span := tracer.Start(ctx, "TicketService.GetTicket")
	defer func() { endSpan(span, err) }()

	if principal == nil {
		return nil, apperrors.NewUnauthorized(apperrors.CodeNotAuthenticated, "usuario no autenticado")
	}
	id, ok := parsePositiveID(rawID)
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidFilter, "identificador de ticket inválido")
	}

	filter := repository.TicketFilter{TicketID: &id}
	if err := applyVisibility(&filter, *principal); err != nil {
		return nil, err
	}

	detail, err := s.tickets.GetDetail(ctx, filter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(apperrors.CodeTicketNotFound, "ticket no encontrado",
				map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return &TicketView{TicketDetail: *detail, Flags: domain.DeriveFlags(*detail, *principal, s.now())}, nil
}

// applyVisibility narrows filter to the rows principal may see. It runs after the
// caller's filters so nothing can widen it.
func applyVisibility(filter *repository.TicketFilter, principal domain.Principal) error {
	id := principal.UserID
	switch principal.Role {
	case domain.RoleAdmin:
	case domain.RoleTechnician:
		filter.TechnicianID = &id
	case domain.RoleEndUser:
		filter.RequesterID = &id
	default:
		return apperrors.NewForbidden(apperrors.CodeRoleNotRecognized, "rol de usuario no reconocido")
	}
	return nil
}

func (s *TicketService) parseListParams(params TicketListParams) (repository.TicketListQuery, int, AppliedFilters, error) {
	var (
		query   repository.TicketListQuery
		filters AppliedFilters
		err     error
	)

	page := defaultPage
	if raw := strings.TrimSpace(params.Page); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return query, 0, filters, apperrors.NewValidationError(apperrors.CodeInvalidPage, "el número de página debe ser mayor a 0")
		}
	}

	limit := defaultLimit
	if raw := strings.TrimSpace(params.Limit); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			return query, 0, filters, apperrors.NewValidationError(apperrors.CodeInvalidLimit, "el límite debe estar entre 1 y 100")
		}
	}

	filters.Sort = domain.SortByCreatedAt
	if raw := strings.TrimSpace(params.Sort); raw != "" {
		sort, ok := domain.ParseSortField(raw)
		if !ok {
			return query, 0, filters, apperrors.NewValidationError(apperrors.CodeInvalidSort, "campo de ordenamiento inválido")
		}
		filters.Sort = sort
	}

	filters.Direction = domain.SortDesc
	if raw := strings.TrimSpace(params.Direction); raw != "" {
		dir, ok := domain.ParseSortDirection(raw)
		if !ok {
			return query, 0, filters, apperrors.NewValidationError(apperrors.CodeInvalidDirection, "la dirección debe ser ASC o DESC")
		}
		filters.Direction = dir
	}

	if filters.StateID, err = parseFilterID(params.StateID, "estado_id"); err != nil {
		return query, 0, filters, err
	}
	if filters.CategoryID, err = parseFilterID(params.CategoryID, "categoria_id"); err != nil {
		return query, 0, filters, err
	}
	if filters.PriorityID, err = parseFilterID(params.PriorityID, "prioridad_id"); err != nil {
		return query, 0, filters, err
	}

	from, _, err := s.parseDate(params.DateFrom, "fecha_desde")
	if err != nil {
		return query, 0, filters, err
	}
	to, toDay, err := s.parseDate(params.DateTo, "fecha_hasta")
	if err != nil {
		return query, 0, filters, err
	}
	if from != nil && to != nil && from.After(*to) {
		return query, 0, filters, apperrors.NewValidationError(apperrors.CodeInvalidDate, "fecha_desde no puede ser posterior a fecha_hasta")
	}
	if to != nil {
		// The upper bound covers the whole named day.
		before := to.Add(time.Microsecond)
		if toDay {
			before = to.AddDate(0, 0, 1)
		}
		query.Filter.CreatedBefore = &before
		filters.DateTo = strings.TrimSpace(params.DateTo)
	}
	if from != nil {
		query.Filter.CreatedFrom = from
		filters.DateFrom = strings.TrimSpace(params.DateFrom)
	}

	query.Filter.StateID = filters.StateID
	query.Filter.CategoryID = filters.CategoryID
	query.Filter.PriorityID = filters.PriorityID
	query.Sort = filters.Sort
	query.Direction = filters.Direction
	query.Limit = limit
	query.Offset = domain.Offset(page, limit)
	return query, page, filters, nil
}

// parseDate accepts YYYY-MM-DD in the service time zone, or RFC3339. The bool is
// true for the date-only form.
func (s *TicketService) parseDate(raw, name string) (*time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, s.location); err == nil {
		return &t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, false, nil
	}
	return nil, false, apperrors.NewDomainError(apperrors.CodeInvalidDate,
		"formato de fecha inválido en "+name+", use YYYY-MM-DD", http.StatusBadRequest, map[string]any{"parametro": name})
}

func parseFilterID(raw, name string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, ok := parsePositiveID(raw)
	if !ok {
		return nil, apperrors.NewDomainError(apperrors.CodeInvalidFilter,
			"el filtro "+name+" debe ser un número entero positivo", http.StatusBadRequest, map[string]any{"parametro": name})
	}
	return &id, nil
}

func parsePositiveID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
