package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allSchemas = []string{
	SeenAssignments,
	TimeRules,
	TimedAssignments,
	NewAssignmentNames,
}

func TestAllSchemas_ValidJSON(t *testing.T) {
	for _, name := range allSchemas {
		t.Run(name, func(t *testing.T) {
			content, err := Source(name)
			require.NoError(t, err)

			var v interface{}
			err = json.Unmarshal([]byte(content), &v)
			assert.NoError(t, err, "schema should be valid JSON: %s", name)
		})
	}
}

func TestSource_UnknownSchema(t *testing.T) {
	_, err := Source("no_such_collection")
	require.Error(t, err)

	loadErr, ok := err.(*SchemaLoadError)
	require.True(t, ok, "error should be SchemaLoadError type")
	assert.Equal(t, "no_such_collection", loadErr.Name)
}

func TestValidate_SeenAssignments(t *testing.T) {
	valid := `[
		{"name": "Homework 3", "html_url": "https://c.example/a/1", "course_name": "Math", "due_at": "2025-01-10T23:59:00Z", "unlock_at": null}
	]`
	assert.NoError(t, Validate(SeenAssignments, []byte(valid)))

	// Record missing due_at must not validate.
	missingDue := `[{"name": "Homework 3", "html_url": "https://c.example/a/1"}]`
	err := Validate(SeenAssignments, []byte(missingDue))
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidate_TimeRules(t *testing.T) {
	valid := `{
		"Homework 3": {"group_key": "Homework 3", "time_taken": 1.5},
		"Lab Report": {"group_key": "Lab Report", "time_taken": 3}
	}`
	assert.NoError(t, Validate(TimeRules, []byte(valid)))

	// Zero duration violates the exclusive minimum.
	zeroTime := `{"Homework 3": {"group_key": "Homework 3", "time_taken": 0}}`
	assert.Error(t, Validate(TimeRules, []byte(zeroTime)))

	// A list is the wrong top-level shape for the rules file.
	wrongShape := `[]`
	assert.Error(t, Validate(TimeRules, []byte(wrongShape)))
}

func TestValidate_TimedAssignments(t *testing.T) {
	valid := `[
		{"name": "Homework 3", "html_url": "https://c.example/a/1", "due_at": "2025-01-10T23:59:00Z",
		 "group_key": "Homework 3", "time_allocated_hours": 1.5, "reclaim_synced": false}
	]`
	assert.NoError(t, Validate(TimedAssignments, []byte(valid)))

	noHours := `[{"name": "Homework 3", "html_url": "https://c.example/a/1", "due_at": "2025-01-10", "group_key": "Homework 3"}]`
	assert.Error(t, Validate(TimedAssignments, []byte(noHours)))
}

func TestValidate_NewAssignmentNames(t *testing.T) {
	valid := `[{"name": "Quiz 1", "course": "Bio 101", "link": "https://c.example/a/9"}]`
	assert.NoError(t, Validate(NewAssignmentNames, []byte(valid)))

	assert.NoError(t, Validate(NewAssignmentNames, []byte(`[]`)))

	noLink := `[{"name": "Quiz 1"}]`
	assert.Error(t, Validate(NewAssignmentNames, []byte(noLink)))
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(SeenAssignments, []byte(`{ not json`))
	assert.Error(t, err)
}
