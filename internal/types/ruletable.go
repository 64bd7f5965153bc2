package types

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RuleTable is the mapping from group key to TimeRule. Iteration order is
// insertion order, and serialization round-trips preserve it: matching is
// first-match-wins, so an unordered map would make grouping nondeterministic.
type RuleTable struct {
	rules *orderedmap.OrderedMap[string, TimeRule]
}

// NewRuleTable returns an empty rule table.
func NewRuleTable() *RuleTable {
	return &RuleTable{rules: orderedmap.New[string, TimeRule]()}
}

// Get returns the rule stored under key.
func (t *RuleTable) Get(key string) (TimeRule, bool) {
	return t.rules.Get(key)
}

// Set stores a rule under key, appending it to the iteration order if new.
func (t *RuleTable) Set(key string, rule TimeRule) {
	t.rules.Set(key, rule)
}

// Delete removes the rule stored under key, reporting whether it existed.
func (t *RuleTable) Delete(key string) bool {
	_, present := t.rules.Delete(key)
	return present
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	return t.rules.Len()
}

// Keys returns the group keys in insertion order.
func (t *RuleTable) Keys() []string {
	keys := make([]string, 0, t.rules.Len())
	for pair := t.rules.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Rules returns the rules in insertion order.
func (t *RuleTable) Rules() []TimeRule {
	rules := make([]TimeRule, 0, t.rules.Len())
	for pair := t.rules.Oldest(); pair != nil; pair = pair.Next() {
		rules = append(rules, pair.Value)
	}
	return rules
}

// Clone returns an independent copy with the same contents and order. The
// allocator works on a clone so that a canceled run discards every rule it
// created, leaving the persisted table untouched.
func (t *RuleTable) Clone() *RuleTable {
	clone := NewRuleTable()
	for pair := t.rules.Oldest(); pair != nil; pair = pair.Next() {
		clone.rules.Set(pair.Key, pair.Value)
	}
	return clone
}

// MarshalJSON serializes the table as a JSON object in insertion order.
func (t *RuleTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.rules)
}

// UnmarshalJSON restores the table, preserving the file's key order.
func (t *RuleTable) UnmarshalJSON(data []byte) error {
	t.rules = orderedmap.New[string, TimeRule]()
	return json.Unmarshal(data, t.rules)
}
