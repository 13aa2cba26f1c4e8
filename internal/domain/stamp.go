package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// StampKind tells whether a timestamp carries a time of day
type StampKind int

const (
	DateOnly StampKind = iota + 1
	DateTime
)

func (k StampKind) String() string {
	switch k {
	case DateOnly:
		return "date"
	case DateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Stamp is an entry timestamp. Raw is the text it was recorded as and is what
// gets persisted; Time is the parsed wall-clock value, in UTC, used for
// comparisons.
type Stamp struct {
	Kind StampKind
	Time time.Time
	Raw  string
}

// NewDate builds a date-only stamp from the calendar date of t.
func NewDate(t time.Time) Stamp {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Stamp{Kind: DateOnly, Time: d, Raw: d.Format(DateLayout)}
}

// NewDateTime builds a date-time stamp from the wall clock of t, at second precision.
func NewDateTime(t time.Time) Stamp {
	d := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	return Stamp{Kind: DateTime, Time: d, Raw: d.Format(DateTimeLayout)}
}

// ParseStamp accepts "yyyy-mm-dd", "yyyy-mm-dd HH:MM:SS" or
// "yyyy-mm-ddTHH:MM:SS". A fractional-second suffix is accepted and dropped.
// The input is kept verbatim in Raw.
func ParseStamp(s string) (Stamp, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return Stamp{}, fmt.Errorf("%w: empty", ErrBadTimestamp)
	}

	if !strings.ContainsAny(v, " T") {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return Stamp{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
		}
		return Stamp{Kind: DateOnly, Time: t, Raw: s}, nil
	}

	// time.Parse takes a fraction right after the seconds and rejects anything else
	t, err := time.Parse(DateTimeLayout, strings.Replace(v, "T", " ", 1))
	if err != nil {
		return Stamp{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
	}
	return Stamp{Kind: DateTime, Time: t.Truncate(time.Second), Raw: s}, nil
}

// Canonical returns the stamp with Raw rewritten in the standard layout for its kind.
func (s Stamp) Canonical() Stamp {
	if s.Kind == DateOnly {
		return NewDate(s.Time)
	}
	return NewDateTime(s.Time)
}

// After reports whether s is strictly later than o.
func (s Stamp) After(o Stamp) bool {
	return s.Time.After(o.Time)
}

func (s Stamp) IsZero() bool {
	return s.Kind == 0
}

func (s Stamp) String() string {
	return s.Raw
}

func (s Stamp) MarshalText() ([]byte, error) {
	return []byte(s.Raw), nil
}

func (s *Stamp) UnmarshalText(b []byte) error {
	v, err := ParseStamp(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
