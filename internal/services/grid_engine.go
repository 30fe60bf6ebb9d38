package services

import (
	"strings"

	"github.com/google/uuid"

	"turni/internal/core"
)

// GridEngine drives a multi-row shift entry grid as a pure reducer: every
// action maps an ordered row slice to a new one and never panics. Invalid or
// no-op actions hand back the input slice unchanged. The engine itself holds
// no row state, only the id and clock providers, so a single engine can
// serve any number of working sets.
type GridEngine struct {
	newID func() string
	today func() core.Date
}

// GridSummary carries the derived aggregates for a working set. They are
// recomputed from the rows on every call, never stored.
type GridSummary struct {
	Rows            int
	TotalCentihours int64
	TotalHours      string
	EstimatedPay    core.Money
}

// NewGridEngine returns an engine with UUID row ids and the real clock.
func NewGridEngine() *GridEngine {
	return &GridEngine{newID: uuid.NewString, today: core.Today}
}

// AddRow appends a new row. With no explicit seed the new row inherits
// person, hourly rate and the next calendar day from the last row, which is
// the ergonomic default for consecutive daily entry; with no previous row it
// starts on today's date with empty fields.
func (g *GridEngine) AddRow(rows []core.ShiftRecord, seed *core.ShiftRecord) []core.ShiftRecord {
	row := core.ShiftRecord{ID: g.newID(), Date: g.today().String()}
	switch {
	case seed != nil:
		row = seed.Clone()
		row.ID = g.newID()
		if row.Date == "" {
			row.Date = g.today().String()
		}
	case len(rows) > 0:
		prev := rows[len(rows)-1]
		row.PersonID = prev.PersonID
		row.HourlyRate = prev.HourlyRate
		if d, err := core.ParseDate(prev.Date); err == nil {
			row.Date = d.AddDays(1).String()
		}
	}
	out := make([]core.ShiftRecord, 0, len(rows)+1)
	out = append(out, rows...)
	return append(out, row)
}

// RemoveRow deletes the row with the given id. Removing the last remaining
// row, or an unknown id, is a no-op: the grid always keeps at least one row.
func (g *GridEngine) RemoveRow(rows []core.ShiftRecord, id string) []core.ShiftRecord {
	if len(rows) <= 1 {
		return rows
	}
	idx := indexOf(rows, id)
	if idx < 0 {
		return rows
	}
	out := make([]core.ShiftRecord, 0, len(rows)-1)
	out = append(out, rows[:idx]...)
	return append(out, rows[idx+1:]...)
}

// UpdateField sets one field on one row and clears any prior error recorded
// for that field. A clock-time edit recomputes hours from the updated pair;
// on success the row is marked derived. A direct hours edit clears derived
// and normalizes parseable duration text to the canonical two-decimal form.
//
// Note: a clock-time edit recomputes hours even after a manual hours edit.
// Derived records provenance only, it does not lock the field; this mirrors
// the entry form's historical behavior and may surprise users, so it is kept
// visible here rather than changed quietly.
func (g *GridEngine) UpdateField(rows []core.ShiftRecord, id, field, value string) []core.ShiftRecord {
	idx := indexOf(rows, id)
	if idx < 0 {
		return rows
	}
	row := rows[idx].Clone()
	switch field {
	case core.FieldPersonID:
		row.PersonID = value
	case core.FieldDate:
		row.Date = strings.TrimSpace(value)
	case core.FieldTimeIn:
		row.TimeIn = strings.TrimSpace(value)
	case core.FieldTimeOut:
		row.TimeOut = strings.TrimSpace(value)
	case core.FieldHours:
		row.Hours = strings.TrimSpace(value)
		if canonical, err := core.ParseDuration(row.Hours); err == nil {
			row.Hours = canonical
		}
		row.Derived = false
	case core.FieldHourlyRate:
		row.HourlyRate = strings.TrimSpace(value)
	case core.FieldNotes:
		row.Notes = value
	default:
		return rows
	}
	delete(row.FieldErrors, field)

	if field == core.FieldTimeIn || field == core.FieldTimeOut {
		if hours, err := core.DurationBetween(row.TimeIn, row.TimeOut); err == nil {
			row.Hours = hours
			row.Derived = true
			delete(row.FieldErrors, core.FieldHours)
		}
	}

	out := append([]core.ShiftRecord(nil), rows...)
	out[idx] = row
	return out
}

// DuplicateRow inserts a copy of the source row immediately after it. The
// copy gets a fresh id and starts without field errors; everything else,
// including the derived flag, mirrors the source. Unknown ids are a no-op.
func (g *GridEngine) DuplicateRow(rows []core.ShiftRecord, id string) []core.ShiftRecord {
	idx := indexOf(rows, id)
	if idx < 0 {
		return rows
	}
	dup := rows[idx].Clone()
	dup.ID = g.newID()
	dup.FieldErrors = nil
	out := make([]core.ShiftRecord, 0, len(rows)+1)
	out = append(out, rows[:idx+1]...)
	out = append(out, dup)
	return append(out, rows[idx+1:]...)
}

// ReplaceAll swaps the entire working set in one step. Used to load rows
// produced elsewhere, e.g. by the date-range replicator.
func (g *GridEngine) ReplaceAll(_, next []core.ShiftRecord) []core.ShiftRecord {
	return next
}

// ValidateAll runs per-row structural validation and rewrites each row's
// FieldErrors. It only checks row completeness: person and date present,
// hours present and within (0, 24], a parseable positive rate when one is
// set, and clock times that parse and come in pairs. Reasoning across rows
// belongs to EntryValidator. The second result reports whether every row
// passed.
func (g *GridEngine) ValidateAll(rows []core.ShiftRecord) ([]core.ShiftRecord, bool) {
	out := make([]core.ShiftRecord, len(rows))
	ok := true
	for i, r := range rows {
		row := r.Clone()
		row.FieldErrors = validateRow(row)
		if len(row.FieldErrors) > 0 {
			ok = false
		}
		out[i] = row
	}
	return out, ok
}

// Summary recomputes the derived aggregates for the working set. Rows whose
// hours or rate do not parse contribute nothing to the affected totals.
func (g *GridEngine) Summary(rows []core.ShiftRecord) GridSummary {
	s := GridSummary{Rows: len(rows)}
	for _, r := range rows {
		ch, err := core.ParseCentihours(r.Hours)
		if err != nil {
			continue
		}
		s.TotalCentihours += ch
		if rate, err := core.ParseDecimalToCents(r.HourlyRate); err == nil {
			s.EstimatedPay.Cents += (ch*rate + 50) / 100
		}
	}
	s.TotalHours = core.FormatCentihours(s.TotalCentihours)
	return s
}

func validateRow(r core.ShiftRecord) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(r.PersonID) == "" {
		errs[core.FieldPersonID] = core.ErrCodeRequired
	}
	if strings.TrimSpace(r.Date) == "" {
		errs[core.FieldDate] = core.ErrCodeRequired
	} else if _, err := core.ParseDate(r.Date); err != nil {
		errs[core.FieldDate] = core.ErrCodeInvalid
	}

	if strings.TrimSpace(r.Hours) == "" {
		errs[core.FieldHours] = core.ErrCodeRequired
	} else if ch, err := core.ParseCentihours(r.Hours); err != nil {
		errs[core.FieldHours] = core.ErrCodeInvalid
	} else if ch <= 0 || ch > 24*100 {
		errs[core.FieldHours] = core.ErrCodeOutOfRange
	}

	if strings.TrimSpace(r.HourlyRate) != "" {
		if _, err := core.ParseDecimalToCents(r.HourlyRate); err != nil {
			errs[core.FieldHourlyRate] = core.ErrCodeInvalid
		}
	}

	in := strings.TrimSpace(r.TimeIn)
	out := strings.TrimSpace(r.TimeOut)
	if in != "" {
		if _, err := core.ParseClock(in); err != nil {
			errs[core.FieldTimeIn] = core.ErrCodeInvalid
		}
	}
	if out != "" {
		if _, err := core.ParseClock(out); err != nil {
			errs[core.FieldTimeOut] = core.ErrCodeInvalid
		}
	}
	// Times come in pairs: a lone value cannot produce a duration.
	if in != "" && out == "" {
		errs[core.FieldTimeOut] = core.ErrCodeRequired
	}
	if out != "" && in == "" {
		errs[core.FieldTimeIn] = core.ErrCodeRequired
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func indexOf(rows []core.ShiftRecord, id string) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
