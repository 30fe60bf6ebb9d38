package memory

import (
	"context"
	"testing"

	"turni/internal/core"
	"turni/internal/timesheet"
)

func TestCreateAssignsSequentialIDs(t *testing.T) {
	s := New()
	saved, err := s.Create(context.Background(), []core.ShiftRecord{
		{PersonID: "p1", Date: "2025-01-06", Hours: "8.00"},
		{PersonID: "p1", Date: "2025-01-07", Hours: "4.00"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if saved[0].ID != "1" || saved[1].ID != "2" {
		t.Fatalf("expected sequential ids, got %q %q", saved[0].ID, saved[1].ID)
	}
}

func TestListFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.Create(ctx, []core.ShiftRecord{
		{PersonID: "p1", Date: "2025-01-06", Hours: "8.00"},
		{PersonID: "p2", Date: "2025-01-06", Hours: "4.00"},
		{PersonID: "p1", Date: "2025-02-01", Hours: "6.00"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("by person", func(t *testing.T) {
		got, err := s.List(ctx, timesheet.ShiftFilter{PersonID: "p1"})
		if err != nil || len(got) != 2 {
			t.Fatalf("expected 2 records for p1, got %d (err=%v)", len(got), err)
		}
	})

	t.Run("by date window", func(t *testing.T) {
		got, err := s.List(ctx, timesheet.ShiftFilter{
			From: core.NewDate(2025, 1, 1),
			To:   core.NewDate(2025, 1, 31),
		})
		if err != nil || len(got) != 2 {
			t.Fatalf("expected 2 January records, got %d (err=%v)", len(got), err)
		}
	})

	t.Run("unbounded", func(t *testing.T) {
		got, err := s.List(ctx, timesheet.ShiftFilter{})
		if err != nil || len(got) != 3 {
			t.Fatalf("expected all records, got %d (err=%v)", len(got), err)
		}
	})
}

func TestListCopiesAreIsolated(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Create(ctx, []core.ShiftRecord{{PersonID: "p1", Date: "2025-01-06", Hours: "8.00"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ := s.List(ctx, timesheet.ShiftFilter{})
	got[0].Hours = "0.00"
	again, _ := s.List(ctx, timesheet.ShiftFilter{})
	if again[0].Hours != "8.00" {
		t.Fatalf("listed records must not alias store state")
	}
}

func TestAppendReturnsRowRef(t *testing.T) {
	s := New()
	ref, err := s.Append(context.Background(), core.ShiftRecord{ID: "1", Hours: "8.00"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("expected mem:1, got %q (err=%v)", ref, err)
	}
	if rows := s.SheetRows(); len(rows) != 1 {
		t.Fatalf("expected 1 sheet row, got %d", len(rows))
	}
}
