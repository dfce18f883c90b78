package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ReferenceCatalog lists reference data. service.ReferenceService implements it.
type ReferenceCatalog interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Priorities(ctx context.Context) ([]domain.Priority, error)
	States(ctx context.Context) ([]domain.State, error)
	Equipment(ctx context.Context) ([]domain.Equipment, error)
}

// ReferenceHandler serves the read-only catalogs.
type ReferenceHandler struct {
	catalog ReferenceCatalog
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(catalog ReferenceCatalog) *ReferenceHandler {
	return &ReferenceHandler{catalog: catalog}
}

// Categories GET /categorias.
func (h *ReferenceHandler) Categories(c *fiber.Ctx) error {
	items, err := h.catalog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": mapSlice(items, func(x domain.Category) dto.CategoryResponse {
		return dto.CategoryResponse{ID: x.ID, Name: x.Name, Description: x.Description}
	})})
}

// Priorities GET /prioridades.
func (h *ReferenceHandler) Priorities(c *fiber.Ctx) error {
	items, err := h.catalog.Priorities(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": mapSlice(items, func(x domain.Priority) dto.PriorityResponse {
		color := x.Color
		if color == "" {
			color = domain.PriorityColor(x.Level)
		}
		return dto.PriorityResponse{ID: x.ID, Name: x.Name, Level: x.Level, Color: color}
	})})
}

// States GET /estados.
func (h *ReferenceHandler) States(c *fiber.Ctx) error {
	items, err := h.catalog.States(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": mapSlice(items, func(x domain.State) dto.StateResponse {
		return dto.StateResponse{ID: x.ID, Name: x.Name, Description: x.Description, IsFinal: x.IsFinal, Order: x.Order}
	})})
}

// Equipment GET /equipos.
func (h *ReferenceHandler) Equipment(c *fiber.Ctx) error {
	items, err := h.catalog.Equipment(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": mapSlice(items, func(x domain.Equipment) dto.EquipmentResponse {
		return dto.EquipmentResponse{
			ID:           x.ID,
			Name:         x.Name,
			Type:         x.Type,
			Brand:        x.Brand,
			Model:        x.Model,
			SerialNumber: x.SerialNumber,
			Location:     x.Location,
		}
	})})
}

func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
