package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToDisplayFormat(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-03-05", "05/03/2024"},
		{"1990-12-31", "31/12/1990"},
		{"2024-03-05T10:00:00Z", "05/03/2024"},
		{"bad", "bad"},
		{"", ""},
		{"2024-3-5", "2024-3-5"},
		{"2024/03/05", "2024/03/05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToDisplayFormat(tt.in), "input %q", tt.in)
	}
}

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	// 22:30 local is already the next day in UTC.
	late := time.Date(2024, 3, 5, 22, 30, 0, 0, saoPaulo)

	assert.Equal(t, "2024-03-05", DateOf(late))
	assert.Equal(t, "2024-03-06", DateOf(late.UTC()))
}

func TestToday(t *testing.T) {
	got := Today()
	assert.Len(t, got, 10)
	assert.Equal(t, time.Now().Format("2006-01-02"), got)
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-03-05")
	assert.True(t, ok)
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, time.Local, d.Location())

	_, ok = ParseDate("05/03/2024")
	assert.False(t, ok)
}
