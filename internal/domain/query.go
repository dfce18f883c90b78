package domain

import "strings"

// SortField is an allow-listed ticket ordering key.
type SortField string

const (
	SortByCreatedAt     SortField = "fecha_creacion"
	SortByTitle         SortField = "titulo"
	SortByPriorityLevel SortField = "prioridad_nivel"
	SortByState         SortField = "estado"
	SortByNumber        SortField = "numero_ticket"
)

// ParseSortField accepts only the allow-listed keys, exactly as spelled.
func ParseSortField(raw string) (SortField, bool) {
	switch field := SortField(raw); field {
	case SortByCreatedAt, SortByTitle, SortByPriorityLevel, SortByState, SortByNumber:
		return field, true
	}
	return "", false
}

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

func ParseSortDirection(raw string) (SortDirection, bool) {
	switch dir := SortDirection(strings.ToUpper(strings.TrimSpace(raw))); dir {
	case SortAsc, SortDesc:
		return dir, true
	}
	return "", false
}

// Pagination describes one page of a result set.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
	HasNext      bool
	HasPrev      bool
}

// NewPagination derives page counts from totals. An empty set has zero pages.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNext:      page < pages,
		HasPrev:      page > 1,
	}
}

// Offset returns the row offset of page given limit rows per page.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}
