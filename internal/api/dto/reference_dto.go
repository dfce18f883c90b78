package dto

// CategoryResponse payload.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

// PriorityResponse payload.
type PriorityResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Level int    `json:"nivel"`
	Color string `json:"color"`
}

// StateResponse payload.
type StateResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	IsFinal     bool   `json:"es_final"`
	Order       int    `json:"orden"`
}

// EquipmentResponse payload.
type EquipmentResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"nombre"`
	Type         string `json:"tipo"`
	Brand        string `json:"marca"`
	Model        string `json:"modelo"`
	SerialNumber string `json:"numero_serie"`
	Location     string `json:"ubicacion"`
}
