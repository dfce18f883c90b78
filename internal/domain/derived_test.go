package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestElapsedHoursUsesClosureWhenClosed(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	closed := created.Add(90 * time.Minute)
	now := created.Add(100 * time.Hour)

	assert.Equal(t, 1.5, ElapsedHours(created, &closed, now))
	assert.Equal(t, 100.0, ElapsedHours(created, nil, now))
}

func TestElapsedHoursRoundsToTwoDecimals(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	now := created.Add(20 * time.Minute)
	assert.Equal(t, 0.33, ElapsedHours(created, nil, now))
}

func TestIsUrgentBoundary(t *testing.T) {
	assert.False(t, IsUrgent(1, 24.0))
	assert.True(t, IsUrgent(1, 24.01))
	assert.False(t, IsUrgent(2, 500))
	assert.False(t, IsUrgent(3, 25))
	assert.False(t, IsUrgent(1, 3))
}

func TestPriorityColor(t *testing.T) {
	assert.Equal(t, "red", PriorityColor(1))
	assert.Equal(t, "orange", PriorityColor(2))
	assert.Equal(t, "green", PriorityColor(3))
	assert.Equal(t, "green", PriorityColor(0))
}

func TestStateColor(t *testing.T) {
	assert.Equal(t, "orange", StateColor("Pendiente"))
	assert.Equal(t, "blue", StateColor("En Progreso"))
	assert.Equal(t, "green", StateColor("Resuelto"))
	assert.Equal(t, "gray", StateColor("Cerrado"))
	assert.Equal(t, "black", StateColor("Escalado"))
}

func TestCanManage(t *testing.T) {
	admin := Principal{UserID: 1, Role: RoleAdmin}
	tech := Principal{UserID: 7, Role: RoleTechnician}
	user := Principal{UserID: 9, Role: RoleEndUser}

	assert.True(t, CanManage(admin, nil))
	assert.True(t, CanManage(tech, int64Ptr(7)))
	assert.False(t, CanManage(tech, int64Ptr(8)))
	assert.False(t, CanManage(tech, nil))
	assert.False(t, CanManage(user, int64Ptr(9)))
}

func TestDeriveFlags(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	row := TicketDetail{
		Ticket:        Ticket{ID: 3, CreatedAt: created, TechnicianID: int64Ptr(7)},
		PriorityLevel: 1,
		StateName:     StateInProgress,
	}

	flags := DeriveFlags(row, Principal{UserID: 7, Role: RoleTechnician}, created.Add(30*time.Hour))
	assert.Equal(t, 30.0, flags.ElapsedHours)
	assert.True(t, flags.Urgent)
	assert.True(t, flags.CanEdit)
	assert.True(t, flags.CanClose)
	assert.Equal(t, "red", flags.PriorityColor)
	assert.Equal(t, "blue", flags.StateColor)
}
