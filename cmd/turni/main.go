package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"turni/internal/amqp"
	"turni/internal/cli"
	"turni/internal/config"
	"turni/internal/core"
	"turni/internal/log"
	"turni/internal/services"
	"turni/internal/storage"
	"turni/internal/timesheet"
	"turni/internal/timesheet/memory"
)

var rootCmd = &cobra.Command{
	Use:   "turni",
	Short: "Caregiver shift tracking for a shared timesheet",
	Long: `turni records caregiver shifts, replicates recurring schedules across
date ranges, and reviews a month's entries for overlaps and other
anomalies before they reach the shared timesheet.`,
	SilenceUsage: true,
}

var replicateFlags struct {
	person         string
	sourceFrom     string
	sourceTo       string
	targetFrom     string
	targetTo       string
	days           string
	matchDayOfWeek bool
	dryRun         bool
}

var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Copy a window of shifts onto a target date range",
	Long: `Copy every shift in the source window onto the target window.

Each source shift lands once per target date that survives the weekday
filter. With --match-day-of-week a shift only lands on dates sharing its
own weekday, which projects a weekly schedule forward unchanged.

Examples:
  turni replicate --person alice \
    --source-from 2025-01-06 --source-to 2025-01-12 \
    --target-from 2025-01-13 --target-to 2025-01-19 --match-day-of-week

  turni replicate --person alice \
    --source-from 2025-01-06 --source-to 2025-01-06 \
    --target-from 2025-02-01 --target-to 2025-02-28 --days mon,wed,fri`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sourceFrom, err := core.ParseDate(replicateFlags.sourceFrom)
		if err != nil {
			return fmt.Errorf("invalid --source-from: %w", err)
		}
		sourceTo, err := core.ParseDate(replicateFlags.sourceTo)
		if err != nil {
			return fmt.Errorf("invalid --source-to: %w", err)
		}
		targetFrom, err := core.ParseDate(replicateFlags.targetFrom)
		if err != nil {
			return fmt.Errorf("invalid --target-from: %w", err)
		}
		targetTo, err := core.ParseDate(replicateFlags.targetTo)
		if err != nil {
			return fmt.Errorf("invalid --target-to: %w", err)
		}
		includeDays, err := parseWeekdays(replicateFlags.days)
		if err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		sources, err := app.store.List(ctx, timesheet.ShiftFilter{
			PersonID: replicateFlags.person,
			From:     sourceFrom,
			To:       sourceTo,
		})
		if err != nil {
			return fmt.Errorf("load source shifts: %w", err)
		}
		if len(sources) == 0 {
			fmt.Println("No shifts in the source window; nothing to replicate.")
			return nil
		}

		req := services.ReplicateRequest{
			Sources:        sources,
			Start:          targetFrom,
			End:            targetTo,
			IncludeDays:    includeDays,
			MatchDayOfWeek: replicateFlags.matchDayOfWeek,
		}
		replicator := services.NewReplicator()

		if replicateFlags.dryRun {
			fmt.Printf("Would create %d shifts from %d sources.\n",
				replicator.Count(req), len(sources))
			return nil
		}

		rows := replicator.Replicate(req)
		if len(rows) == 0 {
			fmt.Println("No target dates survive the filters; nothing to create.")
			return nil
		}

		result, err := app.service.Commit(ctx, rows)
		if err != nil {
			if errors.Is(err, services.ErrBatchInvalid) {
				printInvalidRows(result.Records)
			}
			return err
		}

		fmt.Printf("Created %d shifts.\n", len(result.Records))
		for _, r := range result.Records {
			fmt.Printf("  %s  %-12s %sh\n", r.Date, r.PersonID, r.Hours)
		}
		printFindings(result.Findings)
		return nil
	},
}

var checkFlags struct {
	person string
	month  string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Review a month's shifts for overlaps and anomalies",
	Long: `Review the stored shifts for a month and report advisory findings:
overlapping shifts, days exceeding 24 hours, and entries missing clock
times. Findings never modify stored data.

Examples:
  turni check --month 2025-01
  turni check --month 2025-01 --person alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		from, to, err := monthBounds(checkFlags.month)
		if err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		filter := timesheet.ShiftFilter{PersonID: checkFlags.person, From: from, To: to}
		records, err := app.store.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("load shifts: %w", err)
		}

		findings, err := app.service.Review(ctx, filter)
		if err != nil {
			return err
		}

		fmt.Printf("%d shifts in %s.\n", len(records), checkFlags.month)
		if len(findings) == 0 {
			fmt.Println(color.New(color.FgGreen).Sprint("No findings."))
			return nil
		}
		printFindings(findings)
		return nil
	},
}

// app bundles the store-backed service for a single command invocation.
type app struct {
	store   shiftStore
	service *services.ShiftService
	closers []func() error
}

type shiftStore interface {
	timesheet.ShiftCreator
	timesheet.ShiftLister
}

func newApp() (*app, error) {
	logger := cli.SetupLogger(log.ComponentCLI)

	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{}

	var store shiftStore
	switch cfg.DataBackend {
	case "memory":
		store = memory.New()
	default:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		store = repo
	}

	// A missing broker never blocks local work; shifts are swept later by
	// the worker's periodic pass.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Message broker unavailable, shifts will sync later", log.FieldError, err)
		} else {
			a.closers = append(a.closers, client.Close)
			publisher = client
		}
	}

	a.store = store
	a.service = services.NewShiftService(store, store, publisher)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// parseWeekdays turns a comma-separated day list into an include set. An
// empty flag means the whole week.
func parseWeekdays(s string) (map[time.Weekday]bool, error) {
	if strings.TrimSpace(s) == "" {
		return services.AllWeekdays(), nil
	}
	include := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q in --days", part)
		}
		include[day] = true
	}
	if len(include) == 0 {
		return services.AllWeekdays(), nil
	}
	return include, nil
}

// monthBounds expands "2006-01" into the month's first and last day.
func monthBounds(month string) (core.Date, core.Date, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("invalid --month %q, expected YYYY-MM", month)
	}
	from := core.NewDate(t.Year(), int(t.Month()), 1)
	to := from.AddDays(t.AddDate(0, 1, -t.Day()).Day() - 1)
	return from, to, nil
}

func printFindings(findings []core.Finding) {
	if len(findings) == 0 {
		return
	}
	warn := color.New(color.FgYellow)
	info := color.New(color.FgCyan)
	fmt.Printf("%d findings:\n", len(findings))
	for _, f := range findings {
		line := fmt.Sprintf("  [%s] %s", f.Type, f.Message)
		if f.Severity == core.SeverityWarning {
			warn.Println(line)
		} else {
			info.Println(line)
		}
	}
}

func printInvalidRows(rows []core.ShiftRecord) {
	red := color.New(color.FgRed)
	for _, r := range rows {
		if len(r.FieldErrors) == 0 {
			continue
		}
		for field, code := range r.FieldErrors {
			red.Printf("  %s %s: %s is %s\n", r.Date, r.PersonID, field, code)
		}
	}
}

func init() {
	replicateCmd.Flags().StringVar(&replicateFlags.person, "person", "", "person whose shifts to copy (empty copies everyone)")
	replicateCmd.Flags().StringVar(&replicateFlags.sourceFrom, "source-from", "", "first day of the source window (YYYY-MM-DD)")
	replicateCmd.Flags().StringVar(&replicateFlags.sourceTo, "source-to", "", "last day of the source window (YYYY-MM-DD)")
	replicateCmd.Flags().StringVar(&replicateFlags.targetFrom, "target-from", "", "first day of the target window (YYYY-MM-DD)")
	replicateCmd.Flags().StringVar(&replicateFlags.targetTo, "target-to", "", "last day of the target window (YYYY-MM-DD)")
	replicateCmd.Flags().StringVar(&replicateFlags.days, "days", "", "comma-separated weekdays to fill, e.g. mon,wed,fri (default all)")
	replicateCmd.Flags().BoolVar(&replicateFlags.matchDayOfWeek, "match-day-of-week", false, "land each shift only on dates sharing its weekday")
	replicateCmd.Flags().BoolVar(&replicateFlags.dryRun, "dry-run", false, "print how many shifts would be created and stop")
	for _, flag := range []string{"source-from", "source-to", "target-from", "target-to"} {
		_ = replicateCmd.MarkFlagRequired(flag)
	}

	checkCmd.Flags().StringVar(&checkFlags.person, "person", "", "limit the review to one person")
	checkCmd.Flags().StringVar(&checkFlags.month, "month", "", "month to review (YYYY-MM)")
	_ = checkCmd.MarkFlagRequired("month")

	rootCmd.AddCommand(replicateCmd, checkCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
