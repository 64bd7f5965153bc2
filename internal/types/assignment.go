// Package types provides type definitions for the assignment records, time rules,
// and derived collections passed between the sync pipeline stages.
package types

import (
	"github.com/go-playground/validator/v10"
)

// AssignmentRecord represents one Canvas assignment as tracked in the seen collection.
// DueAt and UnlockAt are kept as the ISO 8601 strings Canvas returns; UnlockAt may be nil.
type AssignmentRecord struct {
	Name        string  `json:"name" validate:"required"`
	HTMLURL     string  `json:"html_url" validate:"required"`
	CourseName  string  `json:"course_name"`
	DueAt       string  `json:"due_at" validate:"required"`
	UnlockAt    *string `json:"unlock_at"`
	Description string  `json:"description,omitempty"`
}

// Complete reports whether the record carries everything required for admission
// into the seen collection: a name, a link, and a due date. Presence is the
// only requirement; the link's shape is whatever Canvas handed back.
func (r *AssignmentRecord) Complete() bool {
	validate := validator.New()
	return validate.Struct(r) == nil
}

// TimedAssignment is an AssignmentRecord enriched by the allocator with a group key
// and an effort estimate, and by the publisher with the synced flag.
type TimedAssignment struct {
	AssignmentRecord
	GroupKey           string  `json:"group_key"`
	TimeAllocatedHours float64 `json:"time_allocated_hours"`
	ReclaimSynced      bool    `json:"reclaim_synced"`
}

// TimeRule maps one recurring assignment category to its effort estimate in hours.
type TimeRule struct {
	GroupKey  string  `json:"group_key" validate:"required"`
	TimeTaken float64 `json:"time_taken" validate:"required,gt=0"`
}

// Validate checks that the rule has a key and a positive duration.
func (r *TimeRule) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// NewAssignmentRef identifies one newly discovered assignment for the publisher's
// eligibility filter.
type NewAssignmentRef struct {
	Name   string `json:"name"`
	Course string `json:"course"`
	Link   string `json:"link"`
}

// NewRefs projects assignment records onto the new-names output shape.
func NewRefs(records []AssignmentRecord) []NewAssignmentRef {
	refs := make([]NewAssignmentRef, 0, len(records))
	for _, r := range records {
		course := r.CourseName
		if course == "" {
			course = "Unknown"
		}
		refs = append(refs, NewAssignmentRef{
			Name:   r.Name,
			Course: course,
			Link:   r.HTMLURL,
		})
	}
	return refs
}
