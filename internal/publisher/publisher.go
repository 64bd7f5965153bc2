// Package publisher creates Reclaim tasks for timed assignments by driving
// the Reclaim web planner in a browser. Reclaim has no public task API, so
// this stage automates the quick-create form the way an operator would.
package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/daniel/canvas-reclaim-sync/internal/types"
)

// PlannerURL is where the quick-create task button lives.
const PlannerURL = "https://app.reclaim.ai/planner"

// titlePrefix marks tasks created by this sync in the Reclaim planner.
const titlePrefix = "[Canvas] "

// Form selectors for the Reclaim planner. These track the planner's current
// markup and are the most change-prone part of the publisher.
const (
	selQuickCreate   = `#QuickCreateTask`
	selTaskNameInput = `//input[@placeholder='Task name...']`
	selDurationInput = `input[name="durationMs"]`
	selSnoozeInput   = `input[name="snoozeUntil"]`
	selDueInput      = `input[name="due"]`
	selEmailInput    = `input[name="email"]`
	selPasswordInput = `input[name="password"]`
	selLoginButton   = `//button[contains(text(), 'Log in')]`
	selCreateButton  = `//button[@aria-label='Create task' or span[text()='Create']]`
	selCloseButton   = `//button[@aria-label='Close']`
)

// Options configures the browser session.
type Options struct {
	Email       string
	Password    string
	UserDataDir string // persistent profile with a saved session; see SaveAuthState
	Headless    bool
	StepTimeout time.Duration // per-interaction wait, default 10s
}

// Report summarizes one publishing run.
type Report struct {
	Attempted int
	Synced    int
	Failures  []string
}

// Eligible returns the indexes of timed assignments that should be published:
// not yet synced, carrying a positive duration, and named in the most recent
// fetch's new-names output.
func Eligible(timed []types.TimedAssignment, refs []types.NewAssignmentRef) []int {
	newNames := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		newNames[ref.Name] = struct{}{}
	}

	var indexes []int
	for i, task := range timed {
		if task.ReclaimSynced || task.TimeAllocatedHours <= 0 {
			continue
		}
		if _, ok := newNames[task.Name]; !ok {
			continue
		}
		indexes = append(indexes, i)
	}
	return indexes
}

// Publish logs into the Reclaim planner and creates one task per eligible
// assignment, setting timed[i].ReclaimSynced as each succeeds. Per-task
// failures are collected in the report and do not stop the loop; only a
// failed login aborts. The caller persists the timed collection afterwards,
// including after partial success.
func Publish(ctx context.Context, timed []types.TimedAssignment, refs []types.NewAssignmentRef, opts Options) (*Report, error) {
	indexes := Eligible(timed, refs)
	report := &Report{Attempted: len(indexes)}
	if len(indexes) == 0 {
		return report, nil
	}

	if opts.StepTimeout == 0 {
		opts.StepTimeout = 10 * time.Second
	}

	browserCtx, cancel := newBrowserContext(ctx, opts)
	defer cancel()

	if err := login(browserCtx, opts); err != nil {
		return report, fmt.Errorf("reclaim login failed: %w", err)
	}

	for _, i := range indexes {
		if err := createTask(browserCtx, &timed[i], opts.StepTimeout); err != nil {
			report.Failures = append(report.Failures,
				fmt.Sprintf("could not create task %q: %v", timed[i].Name, err))
			dismissModal(browserCtx, opts.StepTimeout)
			continue
		}
		timed[i].ReclaimSynced = true
		report.Synced++
	}

	return report, nil
}

// newBrowserContext builds a chromedp context, reusing a persistent profile
// when one is configured.
func newBrowserContext(ctx context.Context, opts Options) (context.Context, context.CancelFunc) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}

// login opens the planner and, when a saved session is not present, submits
// the credential form. Either way it waits for the quick-create button.
func login(ctx context.Context, opts Options) error {
	if err := chromedp.Run(ctx, chromedp.Navigate(PlannerURL)); err != nil {
		return err
	}

	// Already authenticated? The quick-create button shows up directly.
	quickCtx, cancel := context.WithTimeout(ctx, opts.StepTimeout)
	err := chromedp.Run(quickCtx, chromedp.WaitVisible(selQuickCreate, chromedp.ByID))
	cancel()
	if err == nil {
		return nil
	}

	if opts.Email == "" || opts.Password == "" {
		return fmt.Errorf("no saved session and no credentials configured")
	}

	formCtx, cancel := context.WithTimeout(ctx, 2*opts.StepTimeout)
	defer cancel()
	return chromedp.Run(formCtx,
		chromedp.WaitVisible(selEmailInput, chromedp.ByQuery),
		chromedp.SendKeys(selEmailInput, opts.Email, chromedp.ByQuery),
		chromedp.SendKeys(selPasswordInput, opts.Password, chromedp.ByQuery),
		chromedp.Click(selLoginButton, chromedp.BySearch),
		chromedp.WaitVisible(selQuickCreate, chromedp.ByID),
	)
}

// createTask drives the quick-create form for one assignment.
func createTask(ctx context.Context, task *types.TimedAssignment, stepTimeout time.Duration) error {
	taskCtx, cancel := context.WithTimeout(ctx, 6*stepTimeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Click(selQuickCreate, chromedp.ByID),
		chromedp.WaitVisible(selTaskNameInput, chromedp.BySearch),
		chromedp.SendKeys(selTaskNameInput, titlePrefix+task.Name, chromedp.BySearch),
		fillField(selDurationInput, fmt.Sprintf("%g", task.TimeAllocatedHours)),
	}
	if task.UnlockAt != nil && *task.UnlockAt != "" {
		actions = append(actions, fillField(selSnoozeInput, *task.UnlockAt))
	}
	if task.DueAt != "" {
		actions = append(actions, fillField(selDueInput, task.DueAt))
	}
	actions = append(actions,
		// Close any open date picker before reaching for the create button.
		chromedp.KeyEvent(kb.Escape),
		chromedp.Click(selCreateButton, chromedp.BySearch),
		chromedp.KeyEvent(kb.Escape),
		chromedp.WaitNotPresent(selTaskNameInput, chromedp.BySearch),
	)

	return chromedp.Run(taskCtx, actions...)
}

// fillField clears a form input and types a value into it.
func fillField(sel, value string) chromedp.Action {
	return chromedp.Tasks{
		chromedp.Click(sel, chromedp.ByQuery),
		chromedp.SetValue(sel, "", chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	}
}

// dismissModal tries to close a failed quick-create dialog so the next task
// starts from the planner.
func dismissModal(ctx context.Context, stepTimeout time.Duration) {
	closeCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	_ = chromedp.Run(closeCtx,
		chromedp.Click(selCloseButton, chromedp.BySearch),
		chromedp.WaitNotPresent(selTaskNameInput, chromedp.BySearch),
	)
}
