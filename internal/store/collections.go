package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/daniel/canvas-reclaim-sync/internal/types"
	"github.com/daniel/canvas-reclaim-sync/schemas"
)

// LoadSeen reads the seen-assignments collection. The warning is non-empty
// when the file existed but was discarded as invalid.
func (s *Store) LoadSeen() ([]types.AssignmentRecord, string, error) {
	return load(s, SeenFile, schemas.SeenAssignments, []types.AssignmentRecord{})
}

// SaveSeen replaces the seen collection. The previous contents, if any, are
// first copied to the prev_ backup file so an operator can restore the last
// sync's state.
func (s *Store) SaveSeen(records []types.AssignmentRecord) error {
	if _, err := os.Stat(s.Path(SeenFile)); err == nil {
		if err := s.copyFile(SeenFile, PrevSeenFile); err != nil {
			return fmt.Errorf("failed to back up seen collection: %w", err)
		}
	}
	return s.save(SeenFile, records)
}

// BackupSeen copies the current seen collection to the prev_ backup file
// without writing anything else.
func (s *Store) BackupSeen() error {
	if _, err := os.Stat(s.Path(SeenFile)); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("nothing to back up: %s does not exist", SeenFile)
	}
	return s.copyFile(SeenFile, PrevSeenFile)
}

// RestoreSeen reinstates the seen collection from the prev_ backup.
func (s *Store) RestoreSeen() error {
	if _, err := os.Stat(s.Path(PrevSeenFile)); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no backup to restore: %s does not exist", PrevSeenFile)
	}
	return s.copyFile(PrevSeenFile, SeenFile)
}

// LoadRules reads the rule table, preserving the file's key order.
func (s *Store) LoadRules() (*types.RuleTable, string, error) {
	return load(s, RulesFile, schemas.TimeRules, types.NewRuleTable())
}

// SaveRules replaces the rule table file.
func (s *Store) SaveRules(rules *types.RuleTable) error {
	return s.save(RulesFile, rules)
}

// LoadTimed reads the timed-assignments collection.
func (s *Store) LoadTimed() ([]types.TimedAssignment, string, error) {
	return load(s, TimedFile, schemas.TimedAssignments, []types.TimedAssignment{})
}

// SaveTimed replaces the timed-assignments collection.
func (s *Store) SaveTimed(timed []types.TimedAssignment) error {
	return s.save(TimedFile, timed)
}

// LoadNewRefs reads the new-names output of the most recent fetch.
func (s *Store) LoadNewRefs() ([]types.NewAssignmentRef, string, error) {
	return load(s, NewNamesFile, schemas.NewAssignmentNames, []types.NewAssignmentRef{})
}

// SaveNewRefs replaces the new-names output.
func (s *Store) SaveNewRefs(refs []types.NewAssignmentRef) error {
	return s.save(NewNamesFile, refs)
}

// Reset writes the empty default for each named collection. The rules file
// resets to an empty object; every other collection resets to an empty list.
func (s *Store) Reset(names ...string) error {
	for _, name := range names {
		var err error
		switch name {
		case RulesFile:
			err = s.save(name, types.NewRuleTable())
		case SeenFile, PrevSeenFile, NewNamesFile, TimedFile:
			err = s.save(name, []struct{}{})
		default:
			err = fmt.Errorf("unknown collection %q", name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
