package domain

// Standard ticket state names seeded by the migrations.
const (
	StatePending    = "Pendiente"
	StateInProgress = "En Progreso"
	StateResolved   = "Resuelto"
	StateClosed     = "Cerrado"
)

// Category classifies tickets (hardware, software, network...).
type Category struct {
	ID          int64
	Name        string
	Description string
}

// Priority carries a numeric level: 1 high, 2 medium, 3 low.
type Priority struct {
	ID    int64
	Name  string
	Level int
	Color string
}

// State is a ticket lifecycle state.
type State struct {
	ID          int64
	Name        string
	Description string
	IsFinal     bool
	Order       int
}

// Equipment is an inventoried device a ticket can point at.
type Equipment struct {
	ID           int64
	Name         string
	Type         string
	Brand        string
	Model        string
	SerialNumber string
	Location     string
}
