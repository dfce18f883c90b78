package domain

import (
	"math"
	"time"
)

const (
	HighPriorityLevel   = 1
	urgentAfterHours    = 24.0
	defaultStateColor   = "black"
	highPriorityColor   = "red"
	mediumPriorityColor = "orange"
	lowPriorityColor    = "green"
)

var stateColors = map[string]string{
	StatePending:    "orange",
	StateInProgress: "blue",
	StateResolved:   "green",
	StateClosed:     "gray",
}

// TicketFlags are computed per row for a given caller and instant; never stored.
type TicketFlags struct {
	ElapsedHours  float64
	Urgent        bool
	CanEdit       bool
	CanClose      bool
	PriorityColor string
	StateColor    string
}

// ElapsedHours measures from creation to closure, or to now while the ticket is open,
// rounded to two decimals.
func ElapsedHours(createdAt time.Time, closedAt *time.Time, now time.Time) float64 {
	end := now
	if closedAt != nil {
		end = *closedAt
	}
	hours := end.Sub(createdAt).Hours()
	return math.Round(hours*100) / 100
}

// IsUrgent holds for top-priority tickets open strictly longer than a day.
func IsUrgent(priorityLevel int, elapsedHours float64) bool {
	return priorityLevel == HighPriorityLevel && elapsedHours > urgentAfterHours
}

// PriorityColor maps a priority level to its badge color.
func PriorityColor(level int) string {
	switch level {
	case 1:
		return highPriorityColor
	case 2:
		return mediumPriorityColor
	default:
		return lowPriorityColor
	}
}

// StateColor maps a state name to its badge color; unknown states fall back to black.
func StateColor(stateName string) string {
	if color, ok := stateColors[stateName]; ok {
		return color
	}
	return defaultStateColor
}

// CanManage reports whether the caller may edit or close the ticket: administrators
// always, technicians only on tickets assigned to them by id.
func CanManage(caller Principal, technicianID *int64) bool {
	switch caller.Role {
	case RoleAdmin:
		return true
	case RoleTechnician:
		return technicianID != nil && *technicianID == caller.UserID
	default:
		return false
	}
}

// DeriveFlags computes every derived field of a row for caller at now.
func DeriveFlags(t TicketDetail, caller Principal, now time.Time) TicketFlags {
	hours := ElapsedHours(t.CreatedAt, t.ClosedAt, now)
	manage := CanManage(caller, t.TechnicianID)
	return TicketFlags{
		ElapsedHours:  hours,
		Urgent:        IsUrgent(t.PriorityLevel, hours),
		CanEdit:       manage,
		CanClose:      manage,
		PriorityColor: PriorityColor(t.PriorityLevel),
		StateColor:    StateColor(t.StateName),
	}
}
