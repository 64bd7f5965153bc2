// Package fetcher reconciles freshly fetched Canvas assignments against the
// durable seen collection, producing the updated collection and the list of
// genuinely new records.
package fetcher

import (
	"github.com/daniel/canvas-reclaim-sync/internal/canvas"
	"github.com/daniel/canvas-reclaim-sync/internal/types"
)

// Result holds the outputs of one reconciliation pass.
type Result struct {
	// Seen is the updated seen collection: the input records followed by
	// every newly admitted record, in fetch order.
	Seen []types.AssignmentRecord
	// New contains only the newly admitted records, in fetch order.
	New []types.AssignmentRecord
	// SkippedIncomplete counts fetched records rejected by the completeness
	// filter. Rejection is a filtering rule, not an error.
	SkippedIncomplete int
}

// Reconcile computes which fetched assignments are genuinely new. A record is
// admitted iff it has a name, link, and due date, and its link is not already
// in the seen collection. Links are tracked in-memory during the pass, so a
// duplicate link within the same fetch batch is admitted only once. Neither
// input is mutated.
func Reconcile(seen []types.AssignmentRecord, fetched []canvas.Assignment) Result {
	seenLinks := make(map[string]struct{}, len(seen))
	for _, rec := range seen {
		if rec.HTMLURL != "" {
			seenLinks[rec.HTMLURL] = struct{}{}
		}
	}

	result := Result{
		Seen: append([]types.AssignmentRecord(nil), seen...),
	}

	for _, a := range fetched {
		rec := toRecord(a)
		if !rec.Complete() {
			result.SkippedIncomplete++
			continue
		}
		if _, ok := seenLinks[rec.HTMLURL]; ok {
			continue
		}
		seenLinks[rec.HTMLURL] = struct{}{}
		result.Seen = append(result.Seen, rec)
		result.New = append(result.New, rec)
	}

	return result
}

// toRecord converts a raw API payload into a seen-collection record. Nullable
// timestamps collapse to their stored forms: due_at to an empty string (which
// the completeness filter rejects), unlock_at stays nullable.
func toRecord(a canvas.Assignment) types.AssignmentRecord {
	rec := types.AssignmentRecord{
		Name:        a.Name,
		HTMLURL:     a.HTMLURL,
		CourseName:  a.CourseName,
		UnlockAt:    a.UnlockAt,
		Description: a.Description,
	}
	if rec.CourseName == "" {
		rec.CourseName = "Unknown"
	}
	if a.DueAt != nil {
		rec.DueAt = *a.DueAt
	}
	return rec
}
