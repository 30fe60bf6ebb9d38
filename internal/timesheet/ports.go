package timesheet

import (
	"context"

	"turni/internal/core"
)

// Ports for outbound adapters.
type (
	// ShiftCreator persists a batch of new shift records and returns them
	// with their persisted identifiers filled in.
	ShiftCreator interface {
		Create(ctx context.Context, records []core.ShiftRecord) ([]core.ShiftRecord, error)
	}

	// ShiftLister returns persisted shift records matching a filter.
	ShiftLister interface {
		List(ctx context.Context, filter ShiftFilter) ([]core.ShiftRecord, error)
	}

	// ShiftAppender writes one committed shift to the settlement timesheet
	// (the spreadsheet where the owed-amount computation happens).
	ShiftAppender interface {
		Append(ctx context.Context, r core.ShiftRecord) (rowRef string, err error)
	}
)

// ShiftFilter narrows a List call. Zero-value bounds are open; an empty
// PersonID matches everyone.
type ShiftFilter struct {
	PersonID string
	From     core.Date
	To       core.Date
}

// Matches reports whether a record satisfies the filter. Records whose date
// fails to parse only match an unbounded filter.
func (f ShiftFilter) Matches(r core.ShiftRecord) bool {
	if f.PersonID != "" && r.PersonID != f.PersonID {
		return false
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	d, err := core.ParseDate(r.Date)
	if err != nil {
		return false
	}
	if !f.From.IsZero() && f.From.After(d) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}
