package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService is the ticket workflow the handler drives. service.TicketService
// implements it.
type TicketService interface {
	CreateTicket(ctx context.Context, principal *domain.Principal, input service.TicketCreateInput) (*service.TicketView, error)
	ListTickets(ctx context.Context, principal *domain.Principal, params service.TicketListParams) (*service.TicketListResult, error)
	GetTicket(ctx context.Context, principal *domain.Principal, id string) (*service.TicketView, error)
}

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(apperrors.CodeValidation, "cuerpo de la solicitud inválido")
	}

	input := service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  string(req.CategoryID),
		PriorityID:  string(req.PriorityID),
		EquipmentID: string(req.EquipmentID),
	}
	view, err := h.service.CreateTicket(c.UserContext(), principalOf(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "ticket creado exitosamente",
		"data":    ticketResponse(view),
		"info":    service.AssignmentNote,
	})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	params := service.TicketListParams{
		Page:       c.Query("page"),
		Limit:      c.Query("limit"),
		StateID:    c.Query("estado_id"),
		CategoryID: c.Query("categoria_id"),
		PriorityID: c.Query("prioridad_id"),
		DateFrom:   c.Query("fecha_desde"),
		DateTo:     c.Query("fecha_hasta"),
		Sort:       c.Query("orden"),
		Direction:  c.Query("direccion"),
	}
	result, err := h.service.ListTickets(c.UserContext(), principalOf(c), params)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": ticketListResponse(result)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	view, err := h.service.GetTicket(c.UserContext(), principalOf(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": ticketResponse(view)})
}

// principalOf returns nil when the request is anonymous; services reject that.
func principalOf(c *fiber.Ctx) *domain.Principal {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return &principal.Principal
}

func ticketResponse(v *service.TicketView) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             v.ID,
		Number:         v.Number,
		Title:          v.Title,
		Description:    v.Description,
		CategoryID:     v.CategoryID,
		CategoryName:   v.CategoryName,
		PriorityID:     v.PriorityID,
		PriorityName:   v.PriorityName,
		PriorityLevel:  v.PriorityLevel,
		StateID:        v.StateID,
		StateName:      v.StateName,
		RequesterID:    v.RequesterID,
		RequesterName:  v.RequesterName,
		RequesterEmail: v.RequesterEmail,
		TechnicianID:   v.TechnicianID,
		TechnicianName: v.TechnicianName,
		EquipmentID:    v.EquipmentID,
		EquipmentName:  v.EquipmentName,
		CreatedAt:      v.CreatedAt,
		AssignedAt:     v.AssignedAt,
		ResolvedAt:     v.ResolvedAt,
		ClosedAt:       v.ClosedAt,
		ElapsedHours:   v.Flags.ElapsedHours,
		Urgent:         v.Flags.Urgent,
		CanEdit:        v.Flags.CanEdit,
		CanClose:       v.Flags.CanClose,
		PriorityColor:  v.Flags.PriorityColor,
		StateColor:     v.Flags.StateColor,
	}
}

func ticketListResponse(r *service.TicketListResult) dto.TicketListResponse {
	tickets := make([]dto.TicketResponse, 0, len(r.Tickets))
	for i := range r.Tickets {
		tickets = append(tickets, ticketResponse(&r.Tickets[i]))
	}
	resp := dto.TicketListResponse{
		Tickets: tickets,
		Pagination: dto.PaginationResponse{
			CurrentPage:  r.Pagination.CurrentPage,
			TotalPages:   r.Pagination.TotalPages,
			TotalItems:   r.Pagination.TotalItems,
			ItemsPerPage: r.Pagination.ItemsPerPage,
			HasNext:      r.Pagination.HasNext,
			HasPrev:      r.Pagination.HasPrev,
		},
		FiltersApplied: dto.FiltersResponse{
			StateID:    r.Filters.StateID,
			CategoryID: r.Filters.CategoryID,
			PriorityID: r.Filters.PriorityID,
			DateFrom:   r.Filters.DateFrom,
			DateTo:     r.Filters.DateTo,
			Sort:       string(r.Filters.Sort),
			Direction:  string(r.Filters.Direction),
		},
	}
	if s := r.Stats; s != nil {
		resp.Stats = &dto.StatsResponse{
			Total:        s.Total,
			Pending:      s.Pending,
			InProgress:   s.InProgress,
			Resolved:     s.Resolved,
			Closed:       s.Closed,
			HighPriority: s.HighPriority,
		}
	}
	return resp
}
