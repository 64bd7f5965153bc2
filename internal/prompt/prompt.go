// Package prompt implements the operator-facing console estimator used when
// the allocator detects a new assignment category.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/daniel/canvas-reclaim-sync/internal/allocator"
)

// ErrCanceled signals that the operator explicitly aborted the estimation.
// It is a control signal, not a failure: the allocation run stops and nothing
// created during it is persisted.
var ErrCanceled = errors.New("estimation canceled by operator")

// cancelWords are the inputs treated as an explicit cancellation.
var cancelWords = map[string]struct{}{
	"q": {}, "quit": {}, "cancel": {},
}

// ParseHours parses operator input into a positive hour count.
func ParseHours(input string) (float64, error) {
	input = strings.TrimSpace(input)
	hours, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid input %q: please enter a number", input)
	}
	if hours <= 0 {
		return 0, fmt.Errorf("time must be greater than 0")
	}
	return hours, nil
}

// Console prompts on the terminal and reads estimates line by line. The input
// stream is injected so the loop is testable without a TTY.
type Console struct {
	in *bufio.Reader
}

// NewConsole returns a Console reading from in.
func NewConsole(in io.Reader) *Console {
	return &Console{in: bufio.NewReader(in)}
}

// EstimateHours presents the new group and waits for a positive hour count.
// Invalid input re-prompts; EOF or a cancel word returns ErrCanceled. There is
// no timeout: the pass waits as long as the operator needs.
func (c *Console) EstimateHours(ctx context.Context, group allocator.NewGroup) (float64, error) {
	pterm.Printf("\n%s %s\n", pterm.LightCyan("NEW ASSIGNMENT TYPE:"), pterm.Bold.Sprint(group.Name))
	if group.CourseName != "" {
		pterm.Printf("  %s %s\n", pterm.Gray("Course:"), group.CourseName)
	}
	if group.DueAt != "" {
		pterm.Printf("  %s %s\n", pterm.Gray("Due:"), group.DueAt)
	}
	if group.Description != "" {
		pterm.Printf("  %s %s\n", pterm.Gray("About:"), group.Description)
	}

	for {
		if ctx.Err() != nil {
			return 0, ErrCanceled
		}

		pterm.Printf("  Enter time to complete in hours (e.g. 1.5), or 'q' to cancel: ")
		line, err := c.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			if errors.Is(err, io.EOF) {
				return 0, ErrCanceled
			}
			return 0, fmt.Errorf("failed to read input: %w", err)
		}

		trimmed := strings.ToLower(strings.TrimSpace(line))
		if _, ok := cancelWords[trimmed]; ok {
			return 0, ErrCanceled
		}

		hours, parseErr := ParseHours(line)
		if parseErr != nil {
			pterm.Printf("  %s\n", pterm.Yellow(parseErr.Error()))
			continue
		}
		return hours, nil
	}
}
