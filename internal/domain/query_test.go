package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSortField(t *testing.T) {
	for _, raw := range []string{"fecha_creacion", "titulo", "prioridad_nivel", "estado", "numero_ticket"} {
		field, ok := ParseSortField(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, SortField(raw), field)
	}
	for _, raw := range []string{"", "id; DROP TABLE tickets", "descripcion", "TITULO"} {
		_, ok := ParseSortField(raw)
		assert.False(t, ok, raw)
	}
}

func TestParseSortDirection(t *testing.T) {
	dir, ok := ParseSortDirection("asc")
	assert.True(t, ok)
	assert.Equal(t, SortAsc, dir)

	dir, ok = ParseSortDirection("DESC")
	assert.True(t, ok)
	assert.Equal(t, SortDesc, dir)

	_, ok = ParseSortDirection("up")
	assert.False(t, ok)
}

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name               string
		page, limit, total int
		pages              int
		hasNext, hasPrev   bool
	}{
		{"empty", 1, 10, 0, 0, false, false},
		{"exact", 1, 10, 10, 1, false, false},
		{"partial last page", 2, 10, 11, 2, false, true},
		{"middle", 2, 5, 23, 5, true, true},
		{"beyond last", 9, 10, 15, 2, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.limit, tc.total)
			assert.Equal(t, tc.pages, p.TotalPages)
			assert.Equal(t, tc.hasNext, p.HasNext)
			assert.Equal(t, tc.hasPrev, p.HasPrev)
			assert.Equal(t, p.CurrentPage < p.TotalPages, p.HasNext)
			assert.Equal(t, tc.total, p.TotalItems)
			assert.Equal(t, tc.limit, p.ItemsPerPage)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(0, 10))
}
