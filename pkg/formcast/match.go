package formcast

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/formcast/internal/logger"
)

// Compile-time check to ensure MatchRecord implements Persistable interface
var _ Persistable = (*MatchRecord)(nil)

// Venue values as they appear in the match log
const (
	VenueHome = "Home"
	VenueAway = "Away"
)

// Result values as they appear in the match log
const (
	ResultWin  = "W"
	ResultDraw = "D"
	ResultLoss = "L"
)

// MatchRecord is one row of the team-centric match log: a single real-world
// match yields two rows, one per side. Shots and shots on target may be
// missing from the source data; in memory a missing value is NaN, in the
// database it is the -1.0 sentinel (see BeforeSave / Normalize)
type MatchRecord struct {
	// RowID is the original record order in the source log. It is the
	// stable secondary sort key which keeps equal-date orderings
	// deterministic and results reproducible
	RowID int `json:"rowId" column:"row_id" dbtype:"INTEGER" primary:"true"`

	Date        time.Time `json:"date" column:"date" dbtype:"DATETIME" index:"true"`
	Team        string    `json:"team" column:"team" dbtype:"TEXT NOT NULL" index:"true"`
	Opponent    string    `json:"opponent" column:"opponent" dbtype:"TEXT NOT NULL"`
	Venue       string    `json:"venue" column:"venue" dbtype:"TEXT NOT NULL"`
	Result      string    `json:"result" column:"result" dbtype:"TEXT NOT NULL"`
	Competition string    `json:"competition" column:"competition" dbtype:"TEXT" index:"true"`

	GoalsFor      float64 `json:"goalsFor" column:"goals_for" dbtype:"REAL DEFAULT -1.0"`
	GoalsAgainst  float64 `json:"goalsAgainst" column:"goals_against" dbtype:"REAL DEFAULT -1.0"`
	Shots         float64 `json:"shots" column:"shots" dbtype:"REAL DEFAULT -1.0"`
	ShotsOnTarget float64 `json:"shotsOnTarget" column:"shots_on_target" dbtype:"REAL DEFAULT -1.0"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// NewMatchRecord creates a new MatchRecord with all numeric stats marked
// missing, to distinguish from valid zero values
func NewMatchRecord() *MatchRecord {
	return &MatchRecord{
		GoalsFor:      math.NaN(),
		GoalsAgainst:  math.NaN(),
		Shots:         math.NaN(),
		ShotsOnTarget: math.NaN(),
	}
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetTableName returns the table name for match records
func (m *MatchRecord) GetTableName() string {
	return "match_record"
}

// BeforeSave is called before saving the record
// NaN cannot round-trip through the database so missing stats are stored
// as the -1.0 sentinel and restored by Normalize on load
func (m *MatchRecord) BeforeSave() error {
	if math.IsNaN(m.GoalsFor) {
		m.GoalsFor = -1.0
	}
	if math.IsNaN(m.GoalsAgainst) {
		m.GoalsAgainst = -1.0
	}
	if math.IsNaN(m.Shots) {
		m.Shots = -1.0
	}
	if math.IsNaN(m.ShotsOnTarget) {
		m.ShotsOnTarget = -1.0
	}

	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	return nil
}

// AfterSave is called after saving the record
func (m *MatchRecord) AfterSave() error {
	m.Normalize()
	return nil
}

// Normalize restores the in-memory representation of missing stats (NaN)
// from the persisted -1.0 sentinel
func (m *MatchRecord) Normalize() {
	if m.GoalsFor < 0 {
		m.GoalsFor = math.NaN()
	}
	if m.GoalsAgainst < 0 {
		m.GoalsAgainst = math.NaN()
	}
	if m.Shots < 0 {
		m.Shots = math.NaN()
	}
	if m.ShotsOnTarget < 0 {
		m.ShotsOnTarget = math.NaN()
	}
}

/////////////////////////////////////////////////////////////////////////
////// Status Query Methods
/////////////////////////////////////////////////////////////////////////

// IsWin reports whether the team this row belongs to won the match
func (m *MatchRecord) IsWin() bool {
	return m.Result == ResultWin
}

// IsDraw reports whether the match was drawn
func (m *MatchRecord) IsDraw() bool {
	return m.Result == ResultDraw
}

// IsHome reports whether the team this row belongs to played at home
func (m *MatchRecord) IsHome() bool {
	return m.Venue == VenueHome
}

// Label returns the training label for this row: 1 win, 0 draw, -1 loss
func (m *MatchRecord) Label() int {
	switch m.Result {
	case ResultWin:
		return 1
	case ResultDraw:
		return 0
	default:
		return -1
	}
}

/////////////////////////////////////////////////////////////////////////
////// CSV Parsing
/////////////////////////////////////////////////////////////////////////

// Date layouts seen in exported match logs
var matchDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02/01/06",
}

// ParseMatchesCSV parses a team-centric match log CSV into MatchRecords.
// The first row must be a header naming at least date, team, opponent,
// venue, result, comp, gf, ga, sh and sot. Rows missing a team or an
// opponent are skipped with a warning; unparseable numeric cells become
// NaN rather than zero
func ParseMatchesCSV(csvData string) ([]*MatchRecord, error) {
	reader := csv.NewReader(strings.NewReader(csvData))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	if len(records) == 0 {
		return []*MatchRecord{}, nil
	}

	// Get header row
	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF") // Remove BOM
	}

	var matches []*MatchRecord

	// Process data rows
	for i, record := range records[1:] {
		// Create row map
		row := make(map[string]string)
		for j, value := range record {
			if j < len(headers) {
				row[strings.ToLower(strings.TrimSpace(headers[j]))] = strings.TrimSpace(value)
			}
		}

		if row["team"] == "" || row["opponent"] == "" {
			continue
		}

		match, err := ParseMatchRow(row, i)
		if err != nil {
			logger.Warn("Skipping match log row", i+2, err)
			continue
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// ParseMatchRow converts one header-keyed CSV row into a MatchRecord.
// rowIndex is the position of the row in the source file and becomes the
// record's RowID
func ParseMatchRow(row map[string]string, rowIndex int) (*MatchRecord, error) {
	m := NewMatchRecord()
	m.RowID = rowIndex
	m.Team = row["team"]
	m.Opponent = row["opponent"]
	m.Competition = row["comp"]
	if m.Competition == "" {
		m.Competition = row["competition"]
	}

	venue := row["venue"]
	if venue != VenueHome && venue != VenueAway {
		return nil, fmt.Errorf("unknown venue %q", venue)
	}
	m.Venue = venue

	result := row["result"]
	if result != ResultWin && result != ResultDraw && result != ResultLoss {
		return nil, fmt.Errorf("unknown result %q", result)
	}
	m.Result = result

	dateStr := row["date"]
	if dateStr == "" {
		return nil, fmt.Errorf("missing date")
	}
	date, err := parseMatchDate(dateStr)
	if err != nil {
		return nil, err
	}
	m.Date = date

	m.GoalsFor = parseStatCell(row["gf"])
	m.GoalsAgainst = parseStatCell(row["ga"])
	m.Shots = parseStatCell(row["sh"])
	m.ShotsOnTarget = parseStatCell(row["sot"])

	return m, nil
}

// parseMatchDate tries the known match log date layouts in order
func parseMatchDate(dateStr string) (time.Time, error) {
	for _, layout := range matchDateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", dateStr)
}

// parseStatCell converts a numeric cell to float64, returning NaN for
// blank or garbage cells so that missing data is excluded from means
// rather than silently coerced to zero
func parseStatCell(cell string) float64 {
	if cell == "" {
		return math.NaN()
	}
	// Some exports annotate goals with penalty shootout scores, "2 (4)"
	if idx := strings.IndexByte(cell, ' '); idx > 0 {
		cell = cell[:idx]
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
