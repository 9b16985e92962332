package formcast

import (
	"fmt"
	"os"
	"sort"
	"sync/atomic"

	"github.com/richard-senior/formcast/internal/logger"
)

// Snapshot is an immutable view of the entire match log at a point in time.
// Records are grouped per team and sorted by (date, row id) ascending; the
// row id tie-break keeps equal-date orderings deterministic. A Snapshot is
// never mutated after construction so concurrent predictions may share it
// freely
type Snapshot struct {
	records []*MatchRecord
	byTeam  map[string][]*MatchRecord
	teams   []string
}

// NewSnapshot builds a Snapshot from a flat record slice. The input slice is
// not retained
func NewSnapshot(records []*MatchRecord) *Snapshot {
	s := &Snapshot{
		records: make([]*MatchRecord, len(records)),
		byTeam:  make(map[string][]*MatchRecord),
	}
	copy(s.records, records)

	sort.SliceStable(s.records, func(i, j int) bool {
		if !s.records[i].Date.Equal(s.records[j].Date) {
			return s.records[i].Date.Before(s.records[j].Date)
		}
		return s.records[i].RowID < s.records[j].RowID
	})

	for _, m := range s.records {
		s.byTeam[m.Team] = append(s.byTeam[m.Team], m)
	}

	s.teams = make([]string, 0, len(s.byTeam))
	for team := range s.byTeam {
		s.teams = append(s.teams, team)
	}
	sort.Strings(s.teams)

	return s
}

// Teams returns all team names in the log, sorted
func (s *Snapshot) Teams() []string {
	return s.teams
}

// TeamMatches returns one team's matches in chronological order. The
// returned slice is shared and must not be modified
func (s *Snapshot) TeamMatches(team string) []*MatchRecord {
	return s.byTeam[team]
}

// Len returns the total number of records in the snapshot
func (s *Snapshot) Len() int {
	return len(s.records)
}

// TailWindow returns the most recent up-to-n matches for a team, any
// competition. This is the serving-time window: a single tail slice, not
// the causal rolling window the training pass uses (see BuildDataset)
func (s *Snapshot) TailWindow(team string, n int) []*MatchRecord {
	matches := s.byTeam[team]
	if len(matches) > n {
		matches = matches[len(matches)-n:]
	}
	return matches
}

/////////////////////////////////////////////////////////////////////////
////// Match Store
/////////////////////////////////////////////////////////////////////////

// MatchStore owns the persisted match log and the current in-memory
// Snapshot. The snapshot handle is swapped atomically on Reload so that
// in-flight predictions always see a consistent view, never a half-updated
// one
type MatchStore struct {
	snap atomic.Pointer[Snapshot]
}

// OpenMatchStore opens the match store and loads the initial snapshot from
// the database. A load failure is reported as dataset unavailable, not a
// crash
func OpenMatchStore() (*MatchStore, error) {
	store := &MatchStore{}
	if err := store.Reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// Snapshot returns the current immutable view of the match log
func (ms *MatchStore) Snapshot() *Snapshot {
	return ms.snap.Load()
}

// Reload reads the full match log from the database and atomically swaps
// in the fresh snapshot
func (ms *MatchStore) Reload() error {
	if err := createTables(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	results, err := FindWhere(&MatchRecord{}, "1 = 1 ORDER BY date, row_id")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	records := make([]*MatchRecord, 0, len(results))
	for _, result := range results {
		m, ok := result.(*MatchRecord)
		if !ok {
			logger.Warn("Unexpected type in match record results")
			continue
		}
		// restore NaN for sentinel-stored missing stats
		m.Normalize()
		records = append(records, m)
	}

	snap := NewSnapshot(records)
	ms.snap.Store(snap)
	logger.Info("Loaded match log snapshot with", snap.Len(), "records for", len(snap.Teams()), "teams")
	return nil
}

// ImportCSVFile parses a match log CSV file, persists the records and
// reloads the snapshot
func (ms *MatchStore) ImportCSVFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}
	return ms.ImportCSV(string(data))
}

// ImportCSV parses match log CSV data, persists the records and reloads
// the snapshot
func (ms *MatchStore) ImportCSV(csvData string) error {
	matches, err := ParseMatchesCSV(csvData)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: no match records found in CSV", ErrDatasetUnavailable)
	}

	if err := createTables(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	persistables := make([]Persistable, 0, len(matches))
	for _, m := range matches {
		persistables = append(persistables, m)
	}

	// Each import is a full replacement of the log, never a merge, so a
	// corrected or shorter file cannot leave stale rows behind
	logger.Info("Replacing match log in database with", len(persistables), "records")
	if err := BulkReplace(&MatchRecord{}, persistables); err != nil {
		return fmt.Errorf("failed to import match records: %w", err)
	}

	return ms.Reload()
}
