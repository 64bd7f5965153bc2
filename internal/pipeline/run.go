// Package pipeline provides the high-level orchestration for the Canvas to
// Reclaim sync: fetch new assignments, allocate time to them, publish them as
// Reclaim tasks. Each stage is usable on its own; Run chains all three.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/daniel/canvas-reclaim-sync/internal/allocator"
	"github.com/daniel/canvas-reclaim-sync/internal/canvas"
	"github.com/daniel/canvas-reclaim-sync/internal/config"
	"github.com/daniel/canvas-reclaim-sync/internal/fetcher"
	"github.com/daniel/canvas-reclaim-sync/internal/history"
	"github.com/daniel/canvas-reclaim-sync/internal/observability"
	"github.com/daniel/canvas-reclaim-sync/internal/prompt"
	"github.com/daniel/canvas-reclaim-sync/internal/publisher"
	"github.com/daniel/canvas-reclaim-sync/internal/store"
	"github.com/daniel/canvas-reclaim-sync/internal/types"
)

// FetchSummary reports one fetch stage.
type FetchSummary struct {
	Courses           int
	SeenTotal         int
	New               []types.NewAssignmentRef
	SkippedIncomplete int
	Warnings          []string
}

// Fetch pulls unsubmitted assignments from Canvas, reconciles them against the
// seen collection, and persists both the updated seen file and the new-names
// output. The previous seen contents are backed up before the overwrite.
func Fetch(ctx context.Context, cfg *config.Config, st *store.Store) (*FetchSummary, error) {
	if err := cfg.RequireCanvas(); err != nil {
		return nil, err
	}

	client := canvas.NewClient(cfg.CanvasURL, cfg.CanvasToken,
		canvas.WithParallelism(cfg.FetchParallelism))
	courses, err := client.ListActiveCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("canvas fetch failed: %w", err)
	}
	fetched, warnings, err := client.FetchCourses(ctx, courses)
	if err != nil {
		return nil, fmt.Errorf("canvas fetch failed: %w", err)
	}

	seen, warn, err := st.LoadSeen()
	if err != nil {
		return nil, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	result := fetcher.Reconcile(seen, fetched)
	if err := st.SaveSeen(result.Seen); err != nil {
		return nil, err
	}
	refs := types.NewRefs(result.New)
	if err := st.SaveNewRefs(refs); err != nil {
		return nil, err
	}

	return &FetchSummary{
		Courses:           len(courses),
		SeenTotal:         len(result.Seen),
		New:               refs,
		SkippedIncomplete: result.SkippedIncomplete,
		Warnings:          warnings,
	}, nil
}

// AllocateSummary reports one allocation stage.
type AllocateSummary struct {
	Timed    []types.TimedAssignment
	NewRules int
	Skipped  []string
	Warnings []string
}

// AllocateNew runs the grouping and time-assignment passes over the
// assignments recorded as new by the latest fetch. Rules and timed output are
// persisted only when the whole pass succeeds; a canceled estimation leaves
// every file untouched.
func AllocateNew(ctx context.Context, cfg *config.Config, st *store.Store, est allocator.Estimator) (*AllocateSummary, error) {
	var warnings []string

	refs, warn, err := st.LoadNewRefs()
	if err != nil {
		return nil, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	seen, warn, err := st.LoadSeen()
	if err != nil {
		return nil, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	batch := selectByLink(seen, refs)
	if len(batch) == 0 {
		return &AllocateSummary{Warnings: warnings}, nil
	}

	rules, warn, err := st.LoadRules()
	if err != nil {
		return nil, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	result, err := allocator.Allocate(ctx, batch, rules, cfg.SimilarityThreshold, est)
	if err != nil {
		return nil, err
	}

	if err := st.SaveRules(result.Rules); err != nil {
		return nil, err
	}
	if err := st.SaveTimed(result.Timed); err != nil {
		return nil, err
	}

	return &AllocateSummary{
		Timed:    result.Timed,
		NewRules: result.NewRules,
		Skipped:  result.Skipped,
		Warnings: warnings,
	}, nil
}

// selectByLink returns the seen records named by refs, in seen order.
func selectByLink(seen []types.AssignmentRecord, refs []types.NewAssignmentRef) []types.AssignmentRecord {
	links := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		links[ref.Link] = struct{}{}
	}

	var batch []types.AssignmentRecord
	for _, rec := range seen {
		if _, ok := links[rec.HTMLURL]; ok {
			batch = append(batch, rec)
		}
	}
	return batch
}

// PublishSummary reports one publishing stage.
type PublishSummary struct {
	Report   *publisher.Report
	Warnings []string
}

// PublishTimed creates Reclaim tasks for every eligible timed assignment and
// persists the timed collection afterwards, so partially successful runs keep
// their sync marks.
func PublishTimed(ctx context.Context, cfg *config.Config, st *store.Store, headless bool) (*PublishSummary, error) {
	if err := cfg.RequireReclaim(); err != nil {
		return nil, err
	}

	var warnings []string
	timed, warn, err := st.LoadTimed()
	if err != nil {
		return nil, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	refs, warn, err := st.LoadNewRefs()
	if err != nil {
		return nil, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	report, pubErr := publisher.Publish(ctx, timed, refs, publisher.Options{
		Email:       cfg.ReclaimEmail,
		Password:    cfg.ReclaimPassword,
		UserDataDir: cfg.ChromeUserDataDir,
		Headless:    headless,
	})
	if report != nil && report.Synced > 0 {
		if err := st.SaveTimed(timed); err != nil {
			return nil, err
		}
	}
	if pubErr != nil {
		return nil, pubErr
	}

	return &PublishSummary{Report: report, Warnings: warnings}, nil
}

// RunOptions holds configuration for a full sync run.
type RunOptions struct {
	Config      *config.Config
	Store       *store.Store
	Estimator   allocator.Estimator
	SkipPublish bool
	AutoConfirm bool      // skip the pre-browser acknowledgment
	ConfirmIn   io.Reader // acknowledgment input, defaults to os.Stdin
	Headless    bool
	Verbose     bool
}

// Run drives fetch, allocation, and publishing in order. Run metadata is
// recorded in Postgres when a database is configured; a missing or failing
// database never fails the run.
func Run(ctx context.Context, opts RunOptions) error {
	printer := observability.NewPrinter(os.Stdout)
	runID := uuid.New()

	var db *history.Store
	if opts.Config.DatabaseURL != "" {
		var err error
		db, err = history.Connect(ctx, opts.Config.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: failed to connect to database: %v\n", err)
			fmt.Println("Continuing without run history...")
		} else {
			defer db.Close()
			if err := db.CreateRun(ctx, runID); err != nil {
				fmt.Printf("Warning: failed to record run: %v\n", err)
			}
		}
	}

	var counts history.Counts
	status := "completed"
	defer func() {
		if db != nil {
			if err := db.CompleteRun(context.WithoutCancel(ctx), runID, status, counts); err != nil {
				fmt.Printf("Warning: failed to record run completion: %v\n", err)
			}
		}
	}()

	fmt.Println("Fetching assignments from Canvas...")
	fetchSummary, err := Fetch(ctx, opts.Config, opts.Store)
	if err != nil {
		status = "failed"
		return err
	}
	printWarnings(fetchSummary.Warnings)
	counts.CoursesFetched = fetchSummary.Courses
	counts.AssignmentsSeen = fetchSummary.SeenTotal
	counts.NewAssignments = len(fetchSummary.New)
	fmt.Printf("Seen %d assignment(s), %d new.\n", fetchSummary.SeenTotal, len(fetchSummary.New))
	if opts.Verbose {
		printer.PrintNewAssignments(fetchSummary.New)
	}

	if len(fetchSummary.New) == 0 {
		fmt.Println("No new assignments. Nothing to allocate or publish.")
		printer.PrintRunSummary(runID.String(), counts.AssignmentsSeen, 0, 0, 0)
		return nil
	}

	fmt.Println("Allocating time for new assignments...")
	allocSummary, err := AllocateNew(ctx, opts.Config, opts.Store, opts.Estimator)
	if err != nil {
		if errors.Is(err, prompt.ErrCanceled) {
			status = "canceled"
			fmt.Println("Allocation canceled. No rules or timed assignments were saved.")
			return nil
		}
		status = "failed"
		return err
	}
	printWarnings(allocSummary.Warnings)
	printWarnings(allocSummary.Skipped)
	counts.RulesCreated = allocSummary.NewRules
	fmt.Printf("Timed %d assignment(s), %d new rule(s).\n", len(allocSummary.Timed), allocSummary.NewRules)
	if opts.Verbose {
		printer.PrintTimedAssignments(allocSummary.Timed)
	}

	if opts.SkipPublish {
		fmt.Println("Skipping Reclaim publishing as requested.")
		printer.PrintRunSummary(runID.String(), counts.AssignmentsSeen, counts.NewAssignments, counts.RulesCreated, 0)
		return nil
	}

	if !opts.AutoConfirm {
		if !confirm(opts.ConfirmIn, "About to open a browser and create Reclaim tasks. Continue? [y/N] ") {
			fmt.Println("Publishing skipped.")
			printer.PrintRunSummary(runID.String(), counts.AssignmentsSeen, counts.NewAssignments, counts.RulesCreated, 0)
			return nil
		}
	}

	fmt.Println("Publishing tasks to Reclaim...")
	pubSummary, err := PublishTimed(ctx, opts.Config, opts.Store, opts.Headless)
	if err != nil {
		status = "failed"
		return err
	}
	printWarnings(pubSummary.Warnings)
	printWarnings(pubSummary.Report.Failures)
	counts.TasksSynced = pubSummary.Report.Synced
	fmt.Printf("Synced %d of %d task(s).\n", pubSummary.Report.Synced, pubSummary.Report.Attempted)

	printer.PrintRunSummary(runID.String(), counts.AssignmentsSeen, counts.NewAssignments, counts.RulesCreated, counts.TasksSynced)
	return nil
}

// confirm reads a single yes/no answer. Anything but an explicit yes is no.
func confirm(in io.Reader, question string) bool {
	if in == nil {
		in = os.Stdin
	}
	fmt.Print(question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}
