package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStampKinds(t *testing.T) {
	tests := []struct {
		in   string
		kind StampKind
		want time.Time
	}{
		{"2024-01-01", DateOnly, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01 10:30:05", DateTime, time.Date(2024, 1, 1, 10, 30, 5, 0, time.UTC)},
		{"2024-01-01T10:30:05", DateTime, time.Date(2024, 1, 1, 10, 30, 5, 0, time.UTC)},
		{"2024-01-01 10:30:05.918273", DateTime, time.Date(2024, 1, 1, 10, 30, 5, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, err := ParseStamp(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, s.Kind)
			assert.True(t, tt.want.Equal(s.Time), "got %v", s.Time)
			assert.Equal(t, tt.in, s.Raw)
		})
	}
}

func TestParseStampRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"", "2024-1-1", "yesterday", "2024-01-01 10:30", "2024-13-01", "2024-01-01 25:00:00",
		"2024-01-01 10:00:00.garbage", "2024-01-01 10:00:00.", "2024-01-01T10:00:00.1.2.3", "2024-01-01 10:00:00 extra",
	} {
		_, err := ParseStamp(in)
		assert.ErrorIs(t, err, ErrBadTimestamp, "input %q", in)
	}
}

func TestStampCanonical(t *testing.T) {
	s, err := ParseStamp("2024-03-04T05:06:07.5")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04 05:06:07", s.Canonical().Raw)

	d, err := ParseStamp("2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", d.Canonical().Raw)
}

func TestStampAfterIsStrict(t *testing.T) {
	a, _ := ParseStamp("2024-01-02")
	b, _ := ParseStamp("2024-01-02 00:00:00")
	c, _ := ParseStamp("2024-01-02 00:00:01")

	assert.False(t, a.After(b))
	assert.False(t, b.After(a))
	assert.True(t, c.After(a))
}

func TestNewDateTimeDropsFraction(t *testing.T) {
	s := NewDateTime(time.Date(2025, 6, 7, 8, 9, 10, 999, time.Local))
	assert.Equal(t, DateTime, s.Kind)
	assert.Equal(t, "2025-06-07 08:09:10", s.Raw)
	assert.Zero(t, s.Time.Nanosecond())
}
