package domain

import "time"

// Ticket is the persisted support request.
type Ticket struct {
	ID           int64
	Number       string
	Title        string
	Description  string
	CategoryID   int64
	PriorityID   int64
	StateID      int64
	RequesterID  int64
	TechnicianID *int64
	EquipmentID  *int64
	CreatedAt    time.Time
	AssignedAt   *time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
}

// TicketDetail is a ticket joined with the names of everything it references.
type TicketDetail struct {
	Ticket
	CategoryName   string
	PriorityName   string
	PriorityLevel  int
	StateName      string
	RequesterName  string
	RequesterEmail string
	TechnicianName *string
	EquipmentName  *string
}

// TicketStats aggregates a filtered ticket set by state and urgency.
type TicketStats struct {
	Total        int
	Pending      int
	InProgress   int
	Resolved     int
	Closed       int
	HighPriority int
}

// Bucketed is the number of tickets that fell in one of the four standard states.
func (s TicketStats) Bucketed() int {
	return s.Pending + s.InProgress + s.Resolved + s.Closed
}
