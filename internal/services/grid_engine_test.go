package services

import (
	"fmt"
	"testing"

	"turni/internal/core"
)

func testEngine() *GridEngine {
	n := 0
	return &GridEngine{
		newID: func() string {
			n++
			return fmt.Sprintf("row-%d", n)
		},
		today: func() core.Date { return core.NewDate(2025, 1, 6) },
	}
}

func TestAddRowFirstRowDefaultsToToday(t *testing.T) {
	g := testEngine()
	rows := g.AddRow(nil, nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Date != "2025-01-06" {
		t.Fatalf("expected today's date, got %q", rows[0].Date)
	}
	if rows[0].ID == "" {
		t.Fatalf("row must get an id")
	}
}

func TestAddRowInheritsFromPreviousRow(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{
		ID: "a", PersonID: "p1", Date: "2025-01-06", HourlyRate: "15.50", Hours: "8.00",
	}}
	rows = g.AddRow(rows, nil)
	got := rows[1]
	if got.PersonID != "p1" || got.HourlyRate != "15.50" {
		t.Fatalf("person and rate must be inherited, got %+v", got)
	}
	if got.Date != "2025-01-07" {
		t.Fatalf("expected next calendar day, got %q", got.Date)
	}
	if got.Hours != "" || got.TimeIn != "" {
		t.Fatalf("content fields must start empty, got %+v", got)
	}
}

func TestAddRowWithSeedUsesSeedFields(t *testing.T) {
	g := testEngine()
	seed := core.ShiftRecord{PersonID: "p2", Date: "2025-03-01", Hours: "4.00"}
	rows := g.AddRow(nil, &seed)
	if rows[0].PersonID != "p2" || rows[0].Date != "2025-03-01" || rows[0].Hours != "4.00" {
		t.Fatalf("seed fields not applied: %+v", rows[0])
	}
}

func TestRemoveRowKeepsAtLeastOneRow(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{ID: "a"}}
	if got := g.RemoveRow(rows, "a"); len(got) != 1 {
		t.Fatalf("removing the only row must be a no-op, got %d rows", len(got))
	}
}

func TestRemoveRowUnknownIDIsNoOp(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{ID: "a"}, {ID: "b"}}
	got := g.RemoveRow(rows, "zzz")
	if len(got) != 2 {
		t.Fatalf("unknown id must not remove anything")
	}
}

func TestRemoveRowDeletesByID(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := g.RemoveRow(rows, "b")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected rows after removal: %+v", got)
	}
}

func TestUpdateFieldDerivesHoursFromTimes(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{ID: "a", Date: "2025-01-06"}}
	rows = g.UpdateField(rows, "a", core.FieldTimeIn, "09:00")
	if rows[0].Derived {
		t.Fatalf("one time alone must not derive hours")
	}
	rows = g.UpdateField(rows, "a", core.FieldTimeOut, "17:00")
	if rows[0].Hours != "8.00" || !rows[0].Derived {
		t.Fatalf("expected derived 8.00, got hours=%q derived=%v", rows[0].Hours, rows[0].Derived)
	}
}

func TestUpdateFieldOvernightDerivation(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{ID: "a", TimeIn: "22:00"}}
	rows = g.UpdateField(rows, "a", core.FieldTimeOut, "06:00")
	if rows[0].Hours != "8.00" {
		t.Fatalf("overnight shift expected 8.00, got %q", rows[0].Hours)
	}
}

func TestUpdateFieldManualHoursClearsDerived(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{ID: "a", TimeIn: "09:00", TimeOut: "17:00", Hours: "8.00", Derived: true}}
	rows = g.UpdateField(rows, "a", core.FieldHours, "7.5")
	if rows[0].Derived {
		t.Fatalf("manual hours edit must clear derived")
	}
	if rows[0].Hours != "7.50" {
		t.Fatalf("parseable hours input must normalize, got %q", rows[0].Hours)
	}
}

func TestUpdateFieldTimeEditRecomputesOverManualHours(t *testing.T) {
	// A manual hours edit does not lock the field: a later time edit still
	// recomputes. Intentionally preserved behavior of the entry form.
	g := testEngine()
	rows := []core.ShiftRecord{{ID: "a", TimeIn: "09:00", TimeOut: "17:00", Hours: "8.00", Derived: true}}
	rows = g.UpdateField(rows, "a", core.FieldHours, "6.00")
	rows = g.UpdateField(rows, "a", core.FieldTimeOut, "18:00")
	if rows[0].Hours != "9.00" || !rows[0].Derived {
		t.Fatalf("time edit must recompute over manual hours, got hours=%q derived=%v",
			rows[0].Hours, rows[0].Derived)
	}
}

func TestUpdateFieldClearsFieldError(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{
		ID:          "a",
		FieldErrors: map[string]string{core.FieldHours: core.ErrCodeRequired},
	}}
	rows = g.UpdateField(rows, "a", core.FieldHours, "4")
	if _, stale := rows[0].FieldErrors[core.FieldHours]; stale {
		t.Fatalf("editing a field must clear its error")
	}
}

func TestUpdateFieldUnknownRowOrFieldIsNoOp(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{ID: "a"}}
	if got := g.UpdateField(rows, "zzz", core.FieldHours, "4"); len(got) != 1 || got[0].Hours != "" {
		t.Fatalf("unknown row id must be a no-op")
	}
	if got := g.UpdateField(rows, "a", "bogus_field", "4"); got[0].Hours != "" {
		t.Fatalf("unknown field must be a no-op")
	}
}

func TestDuplicateRowInsertsAfterSource(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{
		{ID: "a", PersonID: "p1", Hours: "8.00", Derived: true},
		{ID: "b", PersonID: "p2"},
	}
	got := g.DuplicateRow(rows, "a")
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	dup := got[1]
	if dup.ID == "a" || dup.ID == "" {
		t.Fatalf("copy must get a fresh id, got %q", dup.ID)
	}
	if dup.PersonID != "p1" || dup.Hours != "8.00" || !dup.Derived {
		t.Fatalf("copy must mirror content and derived flag: %+v", dup)
	}
	if got[2].ID != "b" {
		t.Fatalf("following rows must shift down, got %+v", got[2])
	}
}

func TestReplaceAllSwapsWorkingSet(t *testing.T) {
	g := testEngine()
	next := []core.ShiftRecord{{ID: "x"}, {ID: "y"}}
	got := g.ReplaceAll([]core.ShiftRecord{{ID: "a"}}, next)
	if len(got) != 2 || got[0].ID != "x" {
		t.Fatalf("expected wholesale swap, got %+v", got)
	}
}

func TestValidateAllStructuralChecks(t *testing.T) {
	g := testEngine()
	cases := []struct {
		name  string
		row   core.ShiftRecord
		field string
		code  string
	}{
		{"missing person", core.ShiftRecord{ID: "a", Date: "2025-01-06", Hours: "8.00"}, core.FieldPersonID, core.ErrCodeRequired},
		{"missing date", core.ShiftRecord{ID: "a", PersonID: "p", Hours: "8.00"}, core.FieldDate, core.ErrCodeRequired},
		{"bad date", core.ShiftRecord{ID: "a", PersonID: "p", Date: "01/06/2025", Hours: "8.00"}, core.FieldDate, core.ErrCodeInvalid},
		{"missing hours", core.ShiftRecord{ID: "a", PersonID: "p", Date: "2025-01-06"}, core.FieldHours, core.ErrCodeRequired},
		{"zero hours", core.ShiftRecord{ID: "a", PersonID: "p", Date: "2025-01-06", Hours: "0.00"}, core.FieldHours, core.ErrCodeOutOfRange},
		{"excess hours", core.ShiftRecord{ID: "a", PersonID: "p", Date: "2025-01-06", Hours: "25.00"}, core.FieldHours, core.ErrCodeOutOfRange},
		{"bad rate", core.ShiftRecord{ID: "a", PersonID: "p", Date: "2025-01-06", Hours: "8.00", HourlyRate: "free"}, core.FieldHourlyRate, core.ErrCodeInvalid},
		{"zero rate", core.ShiftRecord{ID: "a", PersonID: "p", Date: "2025-01-06", Hours: "8.00", HourlyRate: "0"}, core.FieldHourlyRate, core.ErrCodeInvalid},
		{"lone time in", core.ShiftRecord{ID: "a", PersonID: "p", Date: "2025-01-06", Hours: "8.00", TimeIn: "09:00"}, core.FieldTimeOut, core.ErrCodeRequired},
		{"bad clock", core.ShiftRecord{ID: "a", PersonID: "p", Date: "2025-01-06", Hours: "8.00", TimeIn: "25:00", TimeOut: "17:00"}, core.FieldTimeIn, core.ErrCodeInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, ok := g.ValidateAll([]core.ShiftRecord{tc.row})
			if ok {
				t.Fatalf("expected validation failure")
			}
			if code := rows[0].FieldErrors[tc.field]; code != tc.code {
				t.Fatalf("expected %s=%s, got %v", tc.field, tc.code, rows[0].FieldErrors)
			}
		})
	}
}

func TestValidateAllAcceptsCompleteRow(t *testing.T) {
	g := testEngine()
	rows, ok := g.ValidateAll([]core.ShiftRecord{{
		ID: "a", PersonID: "p", Date: "2025-01-06",
		TimeIn: "09:00", TimeOut: "17:00", Hours: "8.00", HourlyRate: "15.00",
	}})
	if !ok || !rows[0].Valid() {
		t.Fatalf("complete row must validate, got %v", rows[0].FieldErrors)
	}
}

func TestSummaryRecomputesAggregates(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{
		{ID: "a", Hours: "8.00", HourlyRate: "15.00"},
		{ID: "b", Hours: "4.50", HourlyRate: "20.00"},
		{ID: "c", Hours: "junk", HourlyRate: "10.00"},
	}
	s := g.Summary(rows)
	if s.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", s.Rows)
	}
	if s.TotalHours != "12.50" {
		t.Fatalf("expected 12.50 total hours, got %q", s.TotalHours)
	}
	// 8h at 15.00 plus 4.5h at 20.00.
	if s.EstimatedPay.Cents != 12000+9000 {
		t.Fatalf("expected 210.00 estimated pay, got %d cents", s.EstimatedPay.Cents)
	}
}

func TestActionsDoNotMutateInputRows(t *testing.T) {
	g := testEngine()
	rows := []core.ShiftRecord{{ID: "a", Hours: "8.00"}, {ID: "b"}}
	_ = g.UpdateField(rows, "a", core.FieldHours, "4")
	_ = g.DuplicateRow(rows, "a")
	_ = g.RemoveRow(rows, "b")
	_, _ = g.ValidateAll(rows)
	if rows[0].Hours != "8.00" || len(rows) != 2 {
		t.Fatalf("input slice was mutated: %+v", rows)
	}
}
