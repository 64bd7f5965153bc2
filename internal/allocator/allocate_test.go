package allocator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel/canvas-reclaim-sync/internal/types"
)

// scriptedEstimator returns queued answers in order and records what it was
// asked about.
type scriptedEstimator struct {
	answers []float64
	asked   []string
	err     error
}

func (s *scriptedEstimator) EstimateHours(_ context.Context, group NewGroup) (float64, error) {
	s.asked = append(s.asked, group.Name)
	if s.err != nil {
		return 0, s.err
	}
	if len(s.answers) == 0 {
		return 0, errors.New("unexpected prompt for " + group.Name)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func record(name string) types.AssignmentRecord {
	return types.AssignmentRecord{
		Name:       name,
		HTMLURL:    "https://c.example/a/" + name,
		CourseName: "Linear Algebra",
		DueAt:      "2025-01-10T23:59:00Z",
	}
}

func TestAllocate_HomeworkScenario(t *testing.T) {
	// Empty rule table, batch of two similar names: one prompt, one rule,
	// both assignments timed with the same estimate.
	batch := []types.AssignmentRecord{record("Homework 3"), record("Homework 4")}
	est := &scriptedEstimator{answers: []float64{1.5}}

	result, err := Allocate(context.Background(), batch, types.NewRuleTable(), 0.5, est)
	require.NoError(t, err)

	assert.Equal(t, []string{"Homework 3"}, est.asked, "only the first name prompts")
	assert.Equal(t, 1, result.NewRules)
	assert.Equal(t, []string{"Homework 3"}, result.Rules.Keys())

	require.Len(t, result.Timed, 2)
	assert.Equal(t, "Homework 3", result.Timed[0].GroupKey)
	assert.Equal(t, "Homework 3", result.Timed[1].GroupKey)
	assert.Equal(t, 1.5, result.Timed[0].TimeAllocatedHours)
	assert.Equal(t, 1.5, result.Timed[1].TimeAllocatedHours)
	assert.Empty(t, result.Skipped)
}

func TestAllocate_MidBatchRuleMatchesLaterItems(t *testing.T) {
	batch := []types.AssignmentRecord{
		record("Discussion Week 1"),
		record("Essay Draft"),
		record("Discussion Week 2"),
	}
	est := &scriptedEstimator{answers: []float64{0.5, 4}}

	result, err := Allocate(context.Background(), batch, types.NewRuleTable(), 0.5, est)
	require.NoError(t, err)

	// The rule created for "Discussion Week 1" matches "Discussion Week 2"
	// within the same batch; only two prompts total.
	assert.Equal(t, []string{"Discussion Week 1", "Essay Draft"}, est.asked)
	assert.Equal(t, 2, result.NewRules)
	require.Len(t, result.Timed, 3)
	assert.Equal(t, "Discussion Week 1", result.Timed[2].GroupKey)
	assert.Equal(t, 0.5, result.Timed[2].TimeAllocatedHours)
}

func TestAllocate_ExistingRulesNeverPrompt(t *testing.T) {
	rules := types.NewRuleTable()
	rules.Set("Homework 3", types.TimeRule{GroupKey: "Homework 3", TimeTaken: 1.5})

	batch := []types.AssignmentRecord{record("Homework 4")}
	est := &scriptedEstimator{}

	result, err := Allocate(context.Background(), batch, rules, 0.5, est)
	require.NoError(t, err)
	assert.Empty(t, est.asked)
	assert.Zero(t, result.NewRules)
	require.Len(t, result.Timed, 1)
	assert.Equal(t, 1.5, result.Timed[0].TimeAllocatedHours)
}

func TestAllocate_ExactKeyRecheckReusesRuleSilently(t *testing.T) {
	// A stored rule whose key equals the raw name is reused even when the
	// similarity pass missed it (simulated here with an impossible threshold).
	rules := types.NewRuleTable()
	rules.Set("Homework 3", types.TimeRule{GroupKey: "Homework 3", TimeTaken: 1.5})

	batch := []types.AssignmentRecord{record("Homework 3")}
	est := &scriptedEstimator{}

	result, err := Allocate(context.Background(), batch, rules, 1.01, est)
	require.NoError(t, err)
	assert.Empty(t, est.asked, "exact repeat must not prompt again")
	require.Len(t, result.Timed, 1)
	assert.Equal(t, 1.5, result.Timed[0].TimeAllocatedHours)
}

func TestAllocate_CancellationDiscardsEverything(t *testing.T) {
	batch := []types.AssignmentRecord{
		record("Discussion Week 1"),
		record("Essay Draft"),
	}
	canceled := errors.New("estimation canceled by operator")

	// First prompt succeeds, second prompt cancels.
	callCount := 0
	cancelOnSecond := estimatorFunc(func(ctx context.Context, g NewGroup) (float64, error) {
		callCount++
		if callCount == 2 {
			return 0, canceled
		}
		return 0.5, nil
	})

	rules := types.NewRuleTable()
	result, err := Allocate(context.Background(), batch, rules, 0.5, cancelOnSecond)
	require.ErrorIs(t, err, canceled)
	assert.Nil(t, result)

	// The caller's table is untouched: the rule created before the
	// cancellation is gone with the run.
	assert.Equal(t, 0, rules.Len())
}

type estimatorFunc func(ctx context.Context, g NewGroup) (float64, error)

func (f estimatorFunc) EstimateHours(ctx context.Context, g NewGroup) (float64, error) {
	return f(ctx, g)
}

func TestAllocate_InputTableNeverMutated(t *testing.T) {
	rules := types.NewRuleTable()
	batch := []types.AssignmentRecord{record("Homework 3")}
	est := &scriptedEstimator{answers: []float64{1.5}}

	result, err := Allocate(context.Background(), batch, rules, 0.5, est)
	require.NoError(t, err)
	assert.Equal(t, 0, rules.Len())
	assert.Equal(t, 1, result.Rules.Len())
}

func TestAllocate_EmptyBatch(t *testing.T) {
	result, err := Allocate(context.Background(), nil, types.NewRuleTable(), 0.5, &scriptedEstimator{})
	require.NoError(t, err)
	assert.Empty(t, result.Timed)
	assert.Zero(t, result.NewRules)
}

func TestAssignTimes_SkipsMissingRulesWithoutFailing(t *testing.T) {
	rules := types.NewRuleTable()
	rules.Set("Homework 3", types.TimeRule{GroupKey: "Homework 3", TimeTaken: 1.5})

	batch := []types.TimedAssignment{
		{AssignmentRecord: record("Homework 3"), GroupKey: "Homework 3"},
		{AssignmentRecord: record("Orphan"), GroupKey: "Deleted Group"},
	}

	timed, skipped := AssignTimes(batch, rules)
	require.Len(t, timed, 1)
	assert.Equal(t, 1.5, timed[0].TimeAllocatedHours)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0], "Orphan")

	// Input untouched.
	assert.Zero(t, batch[0].TimeAllocatedHours)
}
