// Package worker exports committed shifts to the settlement timesheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"turni/internal/amqp"
	"turni/internal/core"
	"turni/internal/log"
	"turni/internal/timesheet"
)

// ShiftSource is the storage surface the worker needs: fetch by id, scan
// the unsynced backlog, and stamp completions.
type ShiftSource interface {
	GetShift(ctx context.Context, id int64) (core.ShiftRecord, error)
	ListUnsynced(ctx context.Context, limit int) ([]core.ShiftRecord, error)
	MarkSynced(ctx context.Context, id int64) error
}

// SyncWorker moves committed shifts from local storage onto the settlement
// timesheet, either one at a time from sync messages or in periodic batches
// for anything missed.
type SyncWorker struct {
	source    ShiftSource
	sheet     timesheet.ShiftAppender
	batchSize int
}

// maxConcurrentAppends bounds the fan-out of a batch pass; the spreadsheet
// API tolerates little parallelism.
const maxConcurrentAppends = 4

func NewSyncWorker(source ShiftSource, sheet timesheet.ShiftAppender, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &SyncWorker{
		source:    source,
		sheet:     sheet,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single shift sync message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ShiftSyncMessage) error {
	slog.InfoContext(ctx, "Processing shift sync message", "id", msg.ID, "version", msg.Version)

	shift, err := w.source.GetShift(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get shift from storage: %w", err)
	}

	return w.export(ctx, msg.ID, shift)
}

// ProcessPendingShifts drains up to one batch of unsynced shifts,
// exporting them concurrently. The first failure aborts the batch; anything
// already marked synced stays synced, the rest is retried next pass.
func (w *SyncWorker) ProcessPendingShifts(ctx context.Context) error {
	pending, err := w.source.ListUnsynced(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unsynced shifts: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Exporting pending shifts",
		log.FieldOperation, log.OpSync,
		log.FieldBatchSize, len(pending))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAppends)
	for _, shift := range pending {
		shift := shift
		g.Go(func() error {
			id, err := strconv.ParseInt(shift.ID, 10, 64)
			if err != nil {
				return fmt.Errorf("unexpected shift id %q: %w", shift.ID, err)
			}
			return w.export(ctx, id, shift)
		})
	}
	return g.Wait()
}

func (w *SyncWorker) export(ctx context.Context, id int64, shift core.ShiftRecord) error {
	if w.sheet == nil {
		slog.WarnContext(ctx, "No timesheet configured, skipping export", "id", id)
		return nil
	}

	ref, err := w.sheet.Append(ctx, shift)
	if err != nil {
		return fmt.Errorf("append shift %d to timesheet: %w", id, err)
	}

	if err := w.source.MarkSynced(ctx, id); err != nil {
		// The row is on the sheet; a stale flag only risks a duplicate
		// append on the next pass.
		slog.ErrorContext(ctx, "Failed to mark shift synced", "id", id, "error", err)
		return err
	}

	fields := log.NewFields().
		WithOperation(log.OpAppend).
		WithShift(shift.ID, shift.PersonID, shift.Date, shift.Hours)
	fields[log.FieldSheetsRef] = ref
	slog.InfoContext(ctx, "Shift exported to timesheet", fields.ToSlice()...)
	return nil
}
