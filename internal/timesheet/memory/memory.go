package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"turni/internal/core"
	"turni/internal/timesheet"
)

// Store is an in-memory shift store. It backs the memory data backend and is
// the fake used by service tests.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.ShiftRecord
	sheet  []core.ShiftRecord
}

func New() *Store {
	return &Store{nextID: 1}
}

// Create assigns sequential integer ids, the same shape the SQLite store
// hands out, and keeps insertion order.
func (s *Store) Create(_ context.Context, records []core.ShiftRecord) ([]core.ShiftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ShiftRecord, 0, len(records))
	for _, r := range records {
		saved := r.Clone()
		saved.ID = strconv.FormatInt(s.nextID, 10)
		s.nextID++
		s.items = append(s.items, saved)
		out = append(out, saved)
	}
	return out, nil
}

// List returns records matching the filter, in insertion order.
func (s *Store) List(_ context.Context, filter timesheet.ShiftFilter) ([]core.ShiftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ShiftRecord
	for _, r := range s.items {
		if filter.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Append records the shift on the in-memory "sheet" and returns a synthetic
// row reference.
func (s *Store) Append(_ context.Context, r core.ShiftRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheet = append(s.sheet, r.Clone())
	return fmt.Sprintf("mem:%d", len(s.sheet)), nil
}

// SheetRows exposes the appended rows for assertions in tests.
func (s *Store) SheetRows() []core.ShiftRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ShiftRecord(nil), s.sheet...)
}

// Interface conformance.
var (
	_ timesheet.ShiftCreator  = (*Store)(nil)
	_ timesheet.ShiftLister   = (*Store)(nil)
	_ timesheet.ShiftAppender = (*Store)(nil)
)
