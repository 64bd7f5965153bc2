package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel/canvas-reclaim-sync/internal/allocator"
	"github.com/daniel/canvas-reclaim-sync/internal/config"
	"github.com/daniel/canvas-reclaim-sync/internal/prompt"
	"github.com/daniel/canvas-reclaim-sync/internal/store"
	"github.com/daniel/canvas-reclaim-sync/internal/types"
)

type fixedEstimator struct {
	hours float64
	err   error
	calls int
}

func (f *fixedEstimator) EstimateHours(context.Context, allocator.NewGroup) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.hours, nil
}

// canvasServer serves two courses, each with one unsubmitted assignment.
func canvasServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/courses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{"id": 1, "name": "Linear Algebra"},
			{"id": 2, "name": "World History"},
		})
	})
	mux.HandleFunc("/api/v1/courses/1/assignments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{{
			"name":     "Homework 3",
			"html_url": "https://c.example/1/hw3",
			"due_at":   "2025-01-10T23:59:00Z",
		}})
	})
	mux.HandleFunc("/api/v1/courses/2/assignments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{{
			"name":     "Essay Draft",
			"html_url": "https://c.example/2/essay",
			"due_at":   "2025-01-12T23:59:00Z",
		}})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func testConfig(t *testing.T, canvasURL string) (*config.Config, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		CanvasURL:           canvasURL,
		CanvasToken:         "token",
		DataDir:             dir,
		SimilarityThreshold: config.DefaultSimilarityThreshold,
		FetchParallelism:    config.DefaultFetchParallelism,
	}
	return cfg, store.New(dir)
}

func TestFetch_PersistsSeenAndNewRefs(t *testing.T) {
	server := canvasServer(t)
	cfg, st := testConfig(t, server.URL)

	summary, err := Fetch(context.Background(), cfg, st)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Courses)
	assert.Equal(t, 2, summary.SeenTotal)
	require.Len(t, summary.New, 2)
	assert.Equal(t, "Homework 3", summary.New[0].Name)
	assert.Equal(t, "Linear Algebra", summary.New[0].Course)

	seen, warn, err := st.LoadSeen()
	require.NoError(t, err)
	assert.Empty(t, warn)
	assert.Len(t, seen, 2)

	refs, _, err := st.LoadNewRefs()
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestFetch_SecondRunFindsNothingNew(t *testing.T) {
	server := canvasServer(t)
	cfg, st := testConfig(t, server.URL)

	_, err := Fetch(context.Background(), cfg, st)
	require.NoError(t, err)

	summary, err := Fetch(context.Background(), cfg, st)
	require.NoError(t, err)
	assert.Empty(t, summary.New)
	assert.Equal(t, 2, summary.SeenTotal)
}

func TestAllocateNew_TimesTheNewBatch(t *testing.T) {
	server := canvasServer(t)
	cfg, st := testConfig(t, server.URL)
	_, err := Fetch(context.Background(), cfg, st)
	require.NoError(t, err)

	est := &fixedEstimator{hours: 2}
	summary, err := AllocateNew(context.Background(), cfg, st, est)
	require.NoError(t, err)

	assert.Equal(t, 2, est.calls, "two dissimilar names, two prompts")
	assert.Equal(t, 2, summary.NewRules)
	require.Len(t, summary.Timed, 2)

	timed, _, err := st.LoadTimed()
	require.NoError(t, err)
	require.Len(t, timed, 2)
	assert.Equal(t, 2.0, timed[0].TimeAllocatedHours)

	rules, _, err := st.LoadRules()
	require.NoError(t, err)
	assert.Equal(t, 2, rules.Len())
}

func TestAllocateNew_NoNewAssignmentsIsANoOp(t *testing.T) {
	cfg, st := testConfig(t, "https://canvas.invalid")

	est := &fixedEstimator{hours: 2}
	summary, err := AllocateNew(context.Background(), cfg, st, est)
	require.NoError(t, err)
	assert.Empty(t, summary.Timed)
	assert.Zero(t, est.calls)
}

func TestAllocateNew_CancellationPersistsNothing(t *testing.T) {
	server := canvasServer(t)
	cfg, st := testConfig(t, server.URL)
	_, err := Fetch(context.Background(), cfg, st)
	require.NoError(t, err)

	est := &fixedEstimator{err: prompt.ErrCanceled}
	_, err = AllocateNew(context.Background(), cfg, st, est)
	require.ErrorIs(t, err, prompt.ErrCanceled)

	rules, _, err := st.LoadRules()
	require.NoError(t, err)
	assert.Zero(t, rules.Len())

	timed, _, err := st.LoadTimed()
	require.NoError(t, err)
	assert.Empty(t, timed)
}

func TestSelectByLink_KeepsSeenOrder(t *testing.T) {
	seen := []types.AssignmentRecord{
		{Name: "A", HTMLURL: "https://c.example/a"},
		{Name: "B", HTMLURL: "https://c.example/b"},
		{Name: "C", HTMLURL: "https://c.example/c"},
	}
	refs := []types.NewAssignmentRef{
		{Name: "C", Link: "https://c.example/c"},
		{Name: "A", Link: "https://c.example/a"},
	}

	batch := selectByLink(seen, refs)
	require.Len(t, batch, 2)
	assert.Equal(t, "A", batch[0].Name)
	assert.Equal(t, "C", batch[1].Name)
}

func TestConfirm(t *testing.T) {
	assert.True(t, confirm(strings.NewReader("y\n"), "? "))
	assert.True(t, confirm(strings.NewReader("YES\n"), "? "))
	assert.False(t, confirm(strings.NewReader("n\n"), "? "))
	assert.False(t, confirm(strings.NewReader("\n"), "? "))
	assert.False(t, confirm(strings.NewReader(""), "? "))
}
