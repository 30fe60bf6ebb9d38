package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"turni/internal/core"
	"turni/internal/log"
	"turni/internal/timesheet"
)

// ErrBatchInvalid is returned when a working set fails structural validation
// and cannot be committed. The returned rows carry the field errors.
var ErrBatchInvalid = errors.New("batch failed structural validation")

// SyncPublisher publishes a lightweight sync message for one committed
// shift. Satisfied by the AMQP client; nil disables publishing.
type SyncPublisher interface {
	PublishShiftSync(ctx context.Context, id, version int64) error
}

// ShiftService orchestrates the commit path: structural validation, advisory
// cross-record validation against the already-persisted day, persistence,
// and a best-effort sync message per created shift.
type ShiftService struct {
	creator   timesheet.ShiftCreator
	lister    timesheet.ShiftLister
	publisher SyncPublisher
	grid      *GridEngine
	validator *EntryValidator
}

// CommitResult carries the persisted records together with the advisory
// findings computed over the merged working and persisted sets.
type CommitResult struct {
	Records  []core.ShiftRecord
	Findings []core.Finding
}

func NewShiftService(creator timesheet.ShiftCreator, lister timesheet.ShiftLister, publisher SyncPublisher) *ShiftService {
	return &ShiftService{
		creator:   creator,
		lister:    lister,
		publisher: publisher,
		grid:      NewGridEngine(),
		validator: NewEntryValidator(),
	}
}

// Commit validates and persists a working set. Structural failures abort
// with ErrBatchInvalid and the flagged rows; advisory findings never block.
// The local write wins over sync publishing: a failed publish is logged and
// the commit still succeeds.
func (s *ShiftService) Commit(ctx context.Context, rows []core.ShiftRecord) (CommitResult, error) {
	if s.creator == nil {
		return CommitResult{}, fmt.Errorf("shift service has no store")
	}

	checked, ok := s.grid.ValidateAll(rows)
	if !ok {
		return CommitResult{Records: checked}, ErrBatchInvalid
	}

	merged, err := s.mergeWithPersisted(ctx, checked)
	if err != nil {
		// Advisory context only; commit proceeds on the working set alone.
		slog.WarnContext(ctx, "Could not load persisted shifts for validation", "error", err)
		merged = checked
	}
	findings := s.validator.Validate(merged)

	created, err := s.creator.Create(ctx, checked)
	if err != nil {
		return CommitResult{}, fmt.Errorf("create shifts: %w", err)
	}

	for _, r := range created {
		s.publishSync(ctx, r)
	}

	slog.InfoContext(ctx, "Committed shift batch",
		log.FieldOperation, log.OpCreate,
		log.FieldRowCount, len(created),
		log.FieldFindings, len(findings))

	return CommitResult{Records: created, Findings: findings}, nil
}

// Review runs cross-record validation over the persisted shifts matching a
// filter, without changing anything.
func (s *ShiftService) Review(ctx context.Context, filter timesheet.ShiftFilter) ([]core.Finding, error) {
	if s.lister == nil {
		return nil, fmt.Errorf("shift service has no store")
	}
	records, err := s.lister.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return s.validator.Validate(records), nil
}

// mergeWithPersisted widens the validation scope to everything already on
// the persons and dates touched by the batch, so overlaps with committed
// shifts surface too.
func (s *ShiftService) mergeWithPersisted(ctx context.Context, rows []core.ShiftRecord) ([]core.ShiftRecord, error) {
	if s.lister == nil || len(rows) == 0 {
		return rows, nil
	}
	var from, to core.Date
	for _, r := range rows {
		d, err := core.ParseDate(r.Date)
		if err != nil {
			continue
		}
		if from.IsZero() || from.After(d) {
			from = d
		}
		if to.IsZero() || d.After(to) {
			to = d
		}
	}
	if from.IsZero() {
		return rows, nil
	}
	persisted, err := s.lister.List(ctx, timesheet.ShiftFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	merged := append(append([]core.ShiftRecord(nil), persisted...), rows...)
	return merged, nil
}

func (s *ShiftService) publishSync(ctx context.Context, r core.ShiftRecord) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message", "id", r.ID)
		return
	}
	id, err := strconv.ParseInt(r.ID, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Persisted shift id is not numeric", "id", r.ID, "error", err)
		return
	}
	if err := s.publisher.PublishShiftSync(ctx, id, 1); err != nil {
		fields := log.NewFields().WithOperation(log.OpSync).WithError(err)
		fields[log.FieldShiftID] = id
		slog.ErrorContext(ctx, "Failed to publish shift sync message", fields.ToSlice()...)
	}
}
