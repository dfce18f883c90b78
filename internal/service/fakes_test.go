package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type fakeTicketRepo struct {
	mu         sync.Mutex
	stored     []domain.Ticket
	numbers    []string
	createErrs []error

	listRows []domain.TicketDetail
	total    int
	stats    domain.TicketStats

	lastFilter repository.TicketFilter
	lastQuery  repository.TicketListQuery
	listCalls  int
	statsCalls int
}

func (f *fakeTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, n := range f.numbers {
		if n == t.Number {
			return repository.ErrDuplicateTicketNumber
		}
	}
	t.ID = int64(len(f.stored) + 1)
	f.stored = append(f.stored, *t)
	f.numbers = append(f.numbers, t.Number)
	return nil
}

func (f *fakeTicketRepo) GetDetail(_ context.Context, filter repository.TicketFilter) (*domain.TicketDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	for _, t := range f.stored {
		if filter.TicketID != nil && t.ID != *filter.TicketID {
			continue
		}
		if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.TechnicianID != nil && (t.TechnicianID == nil || *t.TechnicianID != *filter.TechnicianID) {
			continue
		}
		return &domain.TicketDetail{
			Ticket:         t,
			CategoryName:   "Hardware",
			PriorityName:   "Alta",
			PriorityLevel:  1,
			StateName:      domain.StatePending,
			RequesterName:  "Ana",
			RequesterEmail: "ana@example.com",
		}, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) List(_ context.Context, q repository.TicketListQuery) ([]domain.TicketDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	f.listCalls++
	return f.listRows, nil
}

func (f *fakeTicketRepo) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	return f.total, nil
}

func (f *fakeTicketRepo) Stats(_ context.Context, _ repository.TicketFilter) (domain.TicketStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	return f.stats, nil
}

func (f *fakeTicketRepo) LastNumberWithPrefix(_ context.Context, prefix string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	best := ""
	for _, n := range f.numbers {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		if len(n) > len(best) || (len(n) == len(best) && n > best) {
			best = n
		}
	}
	return best, nil
}

type fakeReferenceRepo struct {
	categories map[int64]bool
	priorities map[int64]bool
	equipment  map[int64]bool
	pendingID  int64
	err        error
}

func newFakeReferences() *fakeReferenceRepo {
	return &fakeReferenceRepo{
		categories: map[int64]bool{1: true, 2: true},
		priorities: map[int64]bool{1: true, 2: true, 3: true},
		equipment:  map[int64]bool{7: true},
		pendingID:  1,
	}
}

func (f *fakeReferenceRepo) CategoryExists(_ context.Context, id int64) (bool, error) {
	return f.categories[id], f.err
}

func (f *fakeReferenceRepo) PriorityExists(_ context.Context, id int64) (bool, error) {
	return f.priorities[id], f.err
}

func (f *fakeReferenceRepo) EquipmentExists(_ context.Context, id int64) (bool, error) {
	return f.equipment[id], f.err
}

func (f *fakeReferenceRepo) StateIDByName(_ context.Context, name string) (int64, error) {
	if f.pendingID == 0 || name != domain.StatePending {
		return 0, pgx.ErrNoRows
	}
	return f.pendingID, nil
}

func (f *fakeReferenceRepo) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, Name: "Hardware"}}, f.err
}

func (f *fakeReferenceRepo) ListPriorities(context.Context) ([]domain.Priority, error) {
	return []domain.Priority{{ID: 1, Name: "Alta", Level: 1}}, f.err
}

func (f *fakeReferenceRepo) ListStates(context.Context) ([]domain.State, error) {
	return nil, f.err
}

func (f *fakeReferenceRepo) ListEquipment(context.Context) ([]domain.Equipment, error) {
	return nil, f.err
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.published = append(d.published, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func requireCode(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, code, de.Code)
	assert.Equal(t, status, de.HTTPStatus)
}
