package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortColumnWhitelist(t *testing.T) {
	cases := []struct {
		field string
		want  string
	}{
		{"title", "t.title"},
		{"status", "t.status"},
		{"priority", "t.priority"},
		{"updated_at", "t.updated_at"},
		{"logs", "COUNT(l.id)"},
		{"created_at", "t.created_at"},
		{"", "t.created_at"},
		// unknown fields cannot reach the query text
		{"id; DROP TABLE tickets", "t.created_at"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, sortColumn(tc.field), "field %q", tc.field)
	}
}
