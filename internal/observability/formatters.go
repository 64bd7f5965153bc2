// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/daniel/canvas-reclaim-sync/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintNewAssignments outputs the assignments discovered by the latest fetch.
func (p *Printer) PrintNewAssignments(refs []types.NewAssignmentRef) {
	if len(refs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d new assignment(s):\n\n", len(refs)))

	count := min(len(refs), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", refs[i].Name))
		sb.WriteString(fmt.Sprintf("    Course: %s\n", refs[i].Course))
	}
	if len(refs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(refs)-maxItemsToShow))
	}

	p.printBox("NEW ASSIGNMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTimedAssignments outputs the allocation results.
func (p *Printer) PrintTimedAssignments(timed []types.TimedAssignment) {
	if len(timed) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Allocated time for %d assignment(s):\n\n", len(timed)))

	count := min(len(timed), maxItemsToShow)
	for i := 0; i < count; i++ {
		t := timed[i]
		sb.WriteString(fmt.Sprintf("  %s\n", t.Name))
		sb.WriteString(fmt.Sprintf("    %.2gh  group: %s", t.TimeAllocatedHours, t.GroupKey))
		if t.ReclaimSynced {
			sb.WriteString("  [synced]")
		}
		sb.WriteString("\n")
	}
	if len(timed) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(timed)-maxItemsToShow))
	}

	p.printBox("TIMED ASSIGNMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRules outputs the stored time rules in insertion order.
func (p *Printer) PrintRules(rules *types.RuleTable) {
	if rules == nil || rules.Len() == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d rule(s):\n\n", rules.Len()))
	for _, key := range rules.Keys() {
		rule, _ := rules.Get(key)
		sb.WriteString(fmt.Sprintf("  %-30s %.2gh\n", key, rule.TimeTaken))
	}

	p.printBox("TIME RULES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs end-of-run totals.
func (p *Printer) PrintRunSummary(runID string, seen, newCount, rulesCreated, synced int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:              %s\n", runID))
	sb.WriteString(fmt.Sprintf("Assignments seen: %d\n", seen))
	sb.WriteString(fmt.Sprintf("New this run:     %d\n", newCount))
	sb.WriteString(fmt.Sprintf("Rules created:    %d\n", rulesCreated))
	sb.WriteString(fmt.Sprintf("Tasks synced:     %d", synced))

	p.printBox("RUN SUMMARY", sb.String())
}
