package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ReferenceService serves the read-only catalogs tickets point at.
type ReferenceService struct {
	references repository.ReferenceRepository
}

// NewReferenceService constructs the service.
func NewReferenceService(references repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{references: references}
}

func (s *ReferenceService) Categories(ctx context.Context) ([]domain.Category, error) {
	return wrapList(s.references.ListCategories(ctx))
}

func (s *ReferenceService) Priorities(ctx context.Context) ([]domain.Priority, error) {
	return wrapList(s.references.ListPriorities(ctx))
}

func (s *ReferenceService) States(ctx context.Context) ([]domain.State, error) {
	return wrapList(s.references.ListStates(ctx))
}

func (s *ReferenceService) Equipment(ctx context.Context) ([]domain.Equipment, error) {
	return wrapList(s.references.ListEquipment(ctx))
}

func wrapList[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
