package source

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		clock string
		want  time.Time
	}{
		{"long month with pm", "March 5, 2025", "7:30 PM", time.Date(2025, 3, 5, 19, 30, 0, 0, time.UTC)},
		{"short month with am", "Mar 5, 2025", "9:15 AM", time.Date(2025, 3, 5, 9, 15, 0, 0, time.UTC)},
		{"iso date default hour", "2025-03-05", "", time.Date(2025, 3, 5, 19, 0, 0, 0, time.UTC)},
		{"numeric date", "03/05/2025", "14:00", time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)},
		{"day first", "5 March 2025", "12 PM", time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)},
		{"midnight", "Mar 5 2025", "12:00 am", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.date, tt.clock, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseDateTime_Errors(t *testing.T) {
	_, err := ParseDateTime("", "", time.UTC)
	assert.Error(t, err)

	_, err = ParseDateTime("someday", "", time.UTC)
	assert.Error(t, err)

	_, err = ParseDateTime("2025-03-05", "25:00", time.UTC)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	base, err := url.Parse("https://example.com/events/list")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/event/42", Resolve(base, "/event/42"))
	assert.Equal(t, "https://example.com/events/7", Resolve(base, "7"))
	assert.Equal(t, "https://other.org/x", Resolve(base, "https://other.org/x"))
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, OptionalString(""))
	require.NotNil(t, OptionalString("x"))
	assert.Equal(t, "x", *OptionalString("x"))
}
