// Package services provides business logic over in-memory shift records.
//
// This file implements cross-record validation as an ordered pipeline of
// checks. Each check encapsulates one rule (excessive daily totals, shift
// overlap, hours without times) and emits advisory findings; nothing here
// blocks a commit or mutates its input.
package services

import (
	"fmt"
	"strings"

	"turni/internal/core"
)

// EntryGroup is the set of records sharing one (person, date) pair, in input
// order. Groups themselves are ordered by first appearance in the input.
type EntryGroup struct {
	PersonID string
	Date     string
	Records  []core.ShiftRecord
}

// EntryCheck is the interface for one cross-record rule. Implementations
// receive the grouped view and the full input, and return findings in the
// order they should surface.
type EntryCheck interface {
	Check(groups []EntryGroup, all []core.ShiftRecord) []core.Finding
}

// EntryValidator runs a fixed sequence of cross-record checks over a batch
// of shift records. It is distinct from the per-row structural validation in
// the grid engine: this pass reasons across rows and dates, costs O(n²) in
// the worst case, and is meant to run before commit rather than per edit.
type EntryValidator struct {
	checks []EntryCheck
}

// NewEntryValidator returns a validator with the standard checks in their
// reporting order: excessive daily totals, overlaps, then missing times.
func NewEntryValidator() *EntryValidator {
	return &EntryValidator{
		checks: []EntryCheck{
			ExcessiveHoursCheck{},
			OverlapCheck{},
			MissingTimesCheck{},
		},
	}
}

// Validate runs every check and concatenates their findings. The input is
// never mutated and malformed numeric fields never cause a failure.
func (v *EntryValidator) Validate(records []core.ShiftRecord) []core.Finding {
	groups := groupByPersonDate(records)
	var findings []core.Finding
	for _, check := range v.checks {
		findings = append(findings, check.Check(groups, records)...)
	}
	return findings
}

// ValidateEntries is a convenience wrapper around the standard validator.
func ValidateEntries(records []core.ShiftRecord) []core.Finding {
	return NewEntryValidator().Validate(records)
}

// ExcessiveHoursCheck flags every record of a (person, date) group whose
// summed hours exceed 24. Malformed hours values sum as zero.
type ExcessiveHoursCheck struct{}

func (ExcessiveHoursCheck) Check(groups []EntryGroup, _ []core.ShiftRecord) []core.Finding {
	var findings []core.Finding
	for _, g := range groups {
		var total int64
		for _, r := range g.Records {
			if ch, err := core.ParseCentihours(r.Hours); err == nil {
				total += ch
			}
		}
		if total <= 24*100 {
			continue
		}
		msg := fmt.Sprintf("%s hours recorded on %s exceed 24 hours for one person",
			core.FormatCentihours(total), g.Date)
		for _, r := range g.Records {
			findings = append(findings, core.Finding{
				EntryID:  r.ID,
				Type:     core.FindingExcessiveHours,
				Message:  msg,
				Severity: core.SeverityWarning,
			})
		}
	}
	return findings
}

// OverlapCheck flags both members of every pair of shifts for the same
// person and date whose clock intervals intersect. Intervals are half-open
// minute ranges with the same overnight-wrap rule as DurationBetween. An
// N-way overlap reports every pair member; findings are advisory, so no
// dedup is attempted.
type OverlapCheck struct{}

func (OverlapCheck) Check(groups []EntryGroup, _ []core.ShiftRecord) []core.Finding {
	var findings []core.Finding
	for _, g := range groups {
		type span struct {
			id         string
			start, end int
		}
		var spans []span
		for _, r := range g.Records {
			if !r.HasTimes() {
				continue
			}
			start, err := core.ParseClock(r.TimeIn)
			if err != nil {
				continue
			}
			end, err := core.ParseClock(r.TimeOut)
			if err != nil {
				continue
			}
			if end <= start {
				end += 24 * 60
			}
			spans = append(spans, span{id: r.ID, start: start, end: end})
		}
		for i := 0; i < len(spans); i++ {
			for j := i + 1; j < len(spans); j++ {
				a, b := spans[i], spans[j]
				if a.start < b.end && b.start < a.end {
					msg := fmt.Sprintf("shift overlaps another shift on %s", g.Date)
					findings = append(findings,
						core.Finding{EntryID: a.id, Type: core.FindingOverlap, Message: msg, Severity: core.SeverityWarning},
						core.Finding{EntryID: b.id, Type: core.FindingOverlap, Message: msg, Severity: core.SeverityWarning},
					)
				}
			}
		}
	}
	return findings
}

// MissingTimesCheck reports, as information only, every record that carries
// positive hours but neither clock time.
type MissingTimesCheck struct{}

func (MissingTimesCheck) Check(_ []EntryGroup, all []core.ShiftRecord) []core.Finding {
	var findings []core.Finding
	for _, r := range all {
		if strings.TrimSpace(r.TimeIn) != "" || strings.TrimSpace(r.TimeOut) != "" {
			continue
		}
		ch, err := core.ParseCentihours(r.Hours)
		if err != nil || ch <= 0 {
			continue
		}
		findings = append(findings, core.Finding{
			EntryID:  r.ID,
			Type:     core.FindingMissingTimes,
			Message:  fmt.Sprintf("%s hours entered without start and end times", r.Hours),
			Severity: core.SeverityInfo,
		})
	}
	return findings
}

func groupByPersonDate(records []core.ShiftRecord) []EntryGroup {
	index := make(map[[2]string]int)
	var groups []EntryGroup
	for _, r := range records {
		key := [2]string{r.PersonID, r.Date}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, EntryGroup{PersonID: r.PersonID, Date: r.Date})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
