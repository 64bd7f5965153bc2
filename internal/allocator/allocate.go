package allocator

import (
	"context"
	"fmt"

	"github.com/daniel/canvas-reclaim-sync/internal/types"
)

// NewGroup describes a newly detected assignment category for the operator.
// Name is the raw, unnormalized assignment name that becomes the group key.
type NewGroup struct {
	Name        string
	CourseName  string
	DueAt       string
	Description string
}

// Estimator supplies the effort estimate for a new assignment category. The
// allocation pass blocks on it; implementations decide the input channel.
// Returning an error aborts the whole batch without persisting anything.
type Estimator interface {
	EstimateHours(ctx context.Context, group NewGroup) (float64, error)
}

// Result holds the outputs of one allocation run.
type Result struct {
	// Timed contains one record per successfully timed assignment, in input
	// order.
	Timed []types.TimedAssignment
	// Rules is the updated rule table, an independent copy of the input.
	Rules *types.RuleTable
	// NewRules counts rules created during this run.
	NewRules int
	// Skipped lists warnings for assignments whose group had no usable rule.
	Skipped []string
}

// Allocate groups every assignment in batch and attaches a duration from the
// rule table, prompting the estimator once per newly detected category.
//
// Matching for each assignment runs against the table as it stands after the
// earlier assignments in the same batch, so a rule created mid-batch matches
// later items immediately. The input table is never mutated; callers persist
// Result.Rules on success, which is what makes estimator cancellation discard
// every rule created during the run.
func Allocate(ctx context.Context, batch []types.AssignmentRecord, rules *types.RuleTable, threshold float64, est Estimator) (*Result, error) {
	if rules == nil {
		rules = types.NewRuleTable()
	}
	work := rules.Clone()
	result := &Result{Rules: work}

	groupKeys := make([]string, len(batch))
	for i, rec := range batch {
		if key, ok := MatchGroup(rec.Name, work, threshold); ok {
			groupKeys[i] = key
			continue
		}

		// The assignment's own raw name becomes the new group key. If a rule
		// already exists under that exact key with a usable duration, reuse
		// it silently: the similarity pass can miss an exact repeat when the
		// stored key differs from the normalized name only by case.
		newKey := rec.Name
		if existing, ok := work.Get(newKey); !ok || existing.TimeTaken <= 0 {
			hours, err := est.EstimateHours(ctx, NewGroup{
				Name:        rec.Name,
				CourseName:  rec.CourseName,
				DueAt:       rec.DueAt,
				Description: rec.Description,
			})
			if err != nil {
				return nil, err
			}
			work.Set(newKey, types.TimeRule{GroupKey: newKey, TimeTaken: hours})
			result.NewRules++
		}
		groupKeys[i] = newKey
	}

	for i, rec := range batch {
		rule, ok := work.Get(groupKeys[i])
		if !ok || rule.TimeTaken <= 0 {
			result.Skipped = append(result.Skipped,
				fmt.Sprintf("could not assign time to %q (missing rule for group %q); skipping", rec.Name, groupKeys[i]))
			continue
		}
		result.Timed = append(result.Timed, types.TimedAssignment{
			AssignmentRecord:   rec,
			GroupKey:           groupKeys[i],
			TimeAllocatedHours: rule.TimeTaken,
		})
	}

	return result, nil
}

// AssignTimes runs only the time-assignment pass over assignments that are
// already tagged with a group key, for collections edited out-of-band. The
// input is not mutated; records whose group has no usable rule are skipped
// and reported.
func AssignTimes(batch []types.TimedAssignment, rules *types.RuleTable) ([]types.TimedAssignment, []string) {
	var timed []types.TimedAssignment
	var skipped []string
	for _, rec := range batch {
		rule, ok := rules.Get(rec.GroupKey)
		if !ok || rule.TimeTaken <= 0 {
			skipped = append(skipped,
				fmt.Sprintf("could not assign time to %q (missing rule for group %q); skipping", rec.Name, rec.GroupKey))
			continue
		}
		out := rec
		out.TimeAllocatedHours = rule.TimeTaken
		timed = append(timed, out)
	}
	return timed, skipped
}
