package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

// FlexibleID accepts a JSON number or a string and keeps its text, so the service
// can tell absent, non-numeric and valid ids apart.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
	default:
		*f = FlexibleID(data)
	}
	return nil
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string     `json:"titulo"`
	Description string     `json:"descripcion"`
	CategoryID  FlexibleID `json:"categoria_id"`
	PriorityID  FlexibleID `json:"prioridad_id"`
	EquipmentID FlexibleID `json:"equipo_afectado_id"`
}

// TicketResponse is an enriched ticket row with its derived fields.
type TicketResponse struct {
	ID             int64      `json:"id"`
	Number         string     `json:"numero_ticket"`
	Title          string     `json:"titulo"`
	Description    string     `json:"descripcion"`
	CategoryID     int64      `json:"categoria_id"`
	CategoryName   string     `json:"categoria_nombre"`
	PriorityID     int64      `json:"prioridad_id"`
	PriorityName   string     `json:"prioridad_nombre"`
	PriorityLevel  int        `json:"prioridad_nivel"`
	StateID        int64      `json:"estado_id"`
	StateName      string     `json:"estado_nombre"`
	RequesterID    int64      `json:"usuario_solicitante_id"`
	RequesterName  string     `json:"solicitante_nombre"`
	RequesterEmail string     `json:"solicitante_email"`
	TechnicianID   *int64     `json:"tecnico_asignado_id"`
	TechnicianName *string    `json:"tecnico_nombre"`
	EquipmentID    *int64     `json:"equipo_afectado_id"`
	EquipmentName  *string    `json:"equipo_nombre"`
	CreatedAt      time.Time  `json:"fecha_creacion"`
	AssignedAt     *time.Time `json:"fecha_asignacion"`
	ResolvedAt     *time.Time `json:"fecha_resolucion"`
	ClosedAt       *time.Time `json:"fecha_cierre"`

	ElapsedHours  float64 `json:"horas_transcurridas"`
	Urgent        bool    `json:"es_urgente"`
	CanEdit       bool    `json:"puede_editar"`
	CanClose      bool    `json:"puede_cerrar"`
	PriorityColor string  `json:"prioridad_color"`
	StateColor    string  `json:"estado_color"`
}

// PaginationResponse describes the returned page.
type PaginationResponse struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalItems   int  `json:"total_items"`
	ItemsPerPage int  `json:"items_per_page"`
	HasNext      bool `json:"has_next"`
	HasPrev      bool `json:"has_prev"`
}

// FiltersResponse echoes the applied listing parameters.
type FiltersResponse struct {
	StateID    *int64 `json:"estado_id,omitempty"`
	CategoryID *int64 `json:"categoria_id,omitempty"`
	PriorityID *int64 `json:"prioridad_id,omitempty"`
	DateFrom   string `json:"fecha_desde,omitempty"`
	DateTo     string `json:"fecha_hasta,omitempty"`
	Sort       string `json:"orden"`
	Direction  string `json:"direccion"`
}

// StatsResponse aggregates the filtered set for administrators.
type StatsResponse struct {
	Total        int `json:"total_tickets"`
	Pending      int `json:"pendientes"`
	InProgress   int `json:"en_progreso"`
	Resolved     int `json:"resueltos"`
	Closed       int `json:"cerrados"`
	HighPriority int `json:"alta_prioridad"`
}

// TicketListResponse is the data block of GET /tickets.
type TicketListResponse struct {
	Tickets        []TicketResponse   `json:"tickets"`
	Pagination     PaginationResponse `json:"pagination"`
	FiltersApplied FiltersResponse    `json:"filters_applied"`
	Stats          *StatsResponse     `json:"estadisticas,omitempty"`
}
