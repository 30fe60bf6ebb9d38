package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// Canonical date layout for the record contract (ISO 8601, no time part).
	DateLayout = "2006-01-02"

	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"

	FindingOverlap        FindingType = "overlap"
	FindingExcessiveHours FindingType = "excessive-hours"
	FindingMissingTimes   FindingType = "missing-times"
)

// Field names as exchanged with the entry grid and the persistence layer.
const (
	FieldPersonID   = "person_id"
	FieldDate       = "date"
	FieldTimeIn     = "time_in"
	FieldTimeOut    = "time_out"
	FieldHours      = "hours"
	FieldHourlyRate = "hourly_rate"
	FieldNotes      = "notes"
)

// Per-field error codes written by structural validation.
const (
	ErrCodeRequired   = "required"
	ErrCodeInvalid    = "invalid"
	ErrCodeOutOfRange = "out-of-range"
)

type (
	Severity    string
	FindingType string

	Date struct {
		time.Time
	}

	// ShiftRecord is one person's worked interval (or its hour-equivalent) on
	// one date. Field types follow the boundary contract: the date is an ISO
	// string and hours/rate are decimal strings, because that is exactly what
	// the bulk-entry grid and the persistence collaborator exchange. Empty
	// string means absent.
	ShiftRecord struct {
		ID         string
		PersonID   string
		Date       string // ISO 8601 calendar date, no time component
		TimeIn     string // "HH:MM" 24-hour wall clock
		TimeOut    string
		Hours      string // decimal hours, canonical form has 2 decimals
		HourlyRate string // decimal currency rate
		Notes      string

		// Derived is true while Hours was last computed from TimeIn/TimeOut.
		// A direct Hours edit clears it.
		Derived bool

		// FieldErrors maps field name to error code; empty when the row is
		// structurally valid for commit.
		FieldErrors map[string]string
	}

	// Finding is one advisory result from cross-record validation. Findings
	// never block a commit; the caller decides how to surface them.
	Finding struct {
		EntryID  string
		Type     FindingType
		Message  string
		Severity Severity
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidClock    = errors.New("invalid clock time")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO 8601 calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n calendar days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Clone returns a deep copy of the record; the FieldErrors map is never
// shared between the copy and the original.
func (r ShiftRecord) Clone() ShiftRecord {
	out := r
	if r.FieldErrors != nil {
		out.FieldErrors = make(map[string]string, len(r.FieldErrors))
		for k, v := range r.FieldErrors {
			out.FieldErrors[k] = v
		}
	}
	return out
}

// HasTimes reports whether both wall-clock times are present.
func (r ShiftRecord) HasTimes() bool {
	return strings.TrimSpace(r.TimeIn) != "" && strings.TrimSpace(r.TimeOut) != ""
}

// Valid reports whether the record carries no field errors.
func (r ShiftRecord) Valid() bool {
	return len(r.FieldErrors) == 0
}
