package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"turni/internal/core"
	"turni/internal/timesheet"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the persistence collaborator for shift records. It
// implements the timesheet ports and carries the sync bookkeeping the export
// worker relies on.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create implements timesheet.ShiftCreator. The whole batch is written in
// one transaction; returned records carry their assigned integer ids.
func (r *SQLiteRepository) Create(ctx context.Context, records []core.ShiftRecord) ([]core.ShiftRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	out := make([]core.ShiftRecord, 0, len(records))
	for _, rec := range records {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO shifts (person_id, date, time_in, time_out, hours, hourly_rate, notes, derived)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.PersonID, rec.Date, rec.TimeIn, rec.TimeOut, rec.Hours, rec.HourlyRate, rec.Notes, boolToInt(rec.Derived))
		if err != nil {
			return nil, fmt.Errorf("insert shift: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		saved := rec.Clone()
		saved.ID = strconv.FormatInt(id, 10)
		saved.FieldErrors = nil
		out = append(out, saved)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Shift batch saved to SQLite", "count", len(out))
	return out, nil
}

// List implements timesheet.ShiftLister.
func (r *SQLiteRepository) List(ctx context.Context, filter timesheet.ShiftFilter) ([]core.ShiftRecord, error) {
	query := `SELECT id, person_id, date, time_in, time_out, hours, hourly_rate, notes, derived FROM shifts`
	var (
		conds []string
		args  []any
	)
	if filter.PersonID != "" {
		conds = append(conds, "person_id = ?")
		args = append(args, filter.PersonID)
	}
	if !filter.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, filter.To.String())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date, person_id, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var out []core.ShiftRecord
	for rows.Next() {
		rec, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shifts: %w", err)
	}
	return out, nil
}

// GetShift loads a single shift by its persisted id.
func (r *SQLiteRepository) GetShift(ctx context.Context, id int64) (core.ShiftRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, person_id, date, time_in, time_out, hours, hourly_rate, notes, derived
		FROM shifts WHERE id = ?`, id)
	rec, err := scanShift(row)
	if err != nil {
		return core.ShiftRecord{}, fmt.Errorf("get shift %d: %w", id, err)
	}
	return rec, nil
}

// ListUnsynced returns up to limit shifts not yet exported to the
// settlement timesheet, oldest first.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context, limit int) ([]core.ShiftRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, person_id, date, time_in, time_out, hours, hourly_rate, notes, derived
		FROM shifts WHERE synced_at IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unsynced shifts: %w", err)
	}
	defer rows.Close()

	var out []core.ShiftRecord
	for rows.Next() {
		rec, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unsynced shifts: %w", err)
	}
	return out, nil
}

// MarkSynced stamps a shift as exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE shifts SET synced_at = datetime('now') WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark shift %d synced: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (core.ShiftRecord, error) {
	var (
		rec     core.ShiftRecord
		id      int64
		derived int
	)
	if err := row.Scan(&id, &rec.PersonID, &rec.Date, &rec.TimeIn, &rec.TimeOut,
		&rec.Hours, &rec.HourlyRate, &rec.Notes, &derived); err != nil {
		return core.ShiftRecord{}, fmt.Errorf("scan shift: %w", err)
	}
	rec.ID = strconv.FormatInt(id, 10)
	rec.Derived = derived != 0
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Interface conformance.
var (
	_ timesheet.ShiftCreator = (*SQLiteRepository)(nil)
	_ timesheet.ShiftLister  = (*SQLiteRepository)(nil)
)
