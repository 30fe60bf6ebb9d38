package services

import (
	"time"

	"github.com/google/uuid"

	"turni/internal/core"
)

// ReplicateRequest describes a projection of source shift records onto a
// target date window. Both bounds are inclusive. IncludeDays is a literal
// weekday set: only dates whose weekday appears in it survive, and an empty
// set yields no dates. With MatchDayOfWeek set, each source additionally
// lands only on dates sharing its own date's weekday.
type ReplicateRequest struct {
	Sources        []core.ShiftRecord
	Start, End     core.Date
	IncludeDays    map[time.Weekday]bool
	MatchDayOfWeek bool
}

// Replicator generates new, unsaved shift rows from existing ones. It is
// pure and side-effect free apart from drawing fresh row ids, and is cheap
// enough to call once for a live preview and again to materialize rows.
type Replicator struct {
	newID func() string
}

func NewReplicator() *Replicator {
	return &Replicator{newID: uuid.NewString}
}

// AllWeekdays returns an include set covering the whole week.
func AllWeekdays() map[time.Weekday]bool {
	all := make(map[time.Weekday]bool, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		all[d] = true
	}
	return all
}

// Replicate emits one new row per surviving (source, date) pair. Each row
// copies the source's person, times, hours, rate and notes, takes the
// candidate date, and is treated as manually fixed rather than time-derived
// since it is a copy, not a recomputation. A degenerate request (inverted
// range, no sources, no matching dates) returns an empty result, not an
// error.
func (r *Replicator) Replicate(req ReplicateRequest) []core.ShiftRecord {
	dates := req.targetDates()
	if len(dates) == 0 || len(req.Sources) == 0 {
		return nil
	}
	var out []core.ShiftRecord
	for _, src := range req.Sources {
		for _, date := range dates {
			if req.MatchDayOfWeek && !sameWeekday(src, date) {
				continue
			}
			row := src.Clone()
			row.ID = r.newID()
			row.Date = date.String()
			row.Derived = false
			row.FieldErrors = nil
			out = append(out, row)
		}
	}
	return out
}

// Count returns how many rows Replicate would emit, without building them.
// Used for the pre-materialization preview.
func (r *Replicator) Count(req ReplicateRequest) int {
	dates := req.targetDates()
	if len(dates) == 0 {
		return 0
	}
	if !req.MatchDayOfWeek {
		return len(req.Sources) * len(dates)
	}
	n := 0
	for _, src := range req.Sources {
		for _, date := range dates {
			if sameWeekday(src, date) {
				n++
			}
		}
	}
	return n
}

func (req ReplicateRequest) targetDates() []core.Date {
	if req.Start.IsZero() || req.End.IsZero() || req.Start.After(req.End) {
		return nil
	}
	var dates []core.Date
	for d := req.Start; !d.After(req.End); d = d.AddDays(1) {
		if req.IncludeDays[d.Weekday()] {
			dates = append(dates, d)
		}
	}
	return dates
}

func sameWeekday(src core.ShiftRecord, date core.Date) bool {
	srcDate, err := core.ParseDate(src.Date)
	if err != nil {
		return false
	}
	return srcDate.Weekday() == date.Weekday()
}
