package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"canonical passes through", "2025-09", "2025-09"},
		{"embedded in timestamp", "2025-09-14 08:12:33", "2025-09"},
		{"embedded in iso timestamp", "2025-09-14T08:12:33Z", "2025-09"},
		{"surrounding whitespace", "  2025-09  ", "2025-09"},
		{"general date parsing", "09/14/2025", "2025-09"},
		{"textual date", "September 14, 2025", "2025-09"},
		{"garbage", "niet een datum", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMonth(tt.in))
		})
	}
}

func TestNextMonth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-09", "2025-10"},
		{"2025-12", "2026-01"},
		{"2025-01", "2025-02"},
		{"not-a-month", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NextMonth(tt.in))
		})
	}
}
