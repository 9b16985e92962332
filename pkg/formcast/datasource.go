package formcast

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/formcast/internal/logger"
	"github.com/richard-senior/formcast/pkg/transport"
)

// Datasource fetches remote match log data with an on-disk cache, so a
// training run can be repeated without hammering the provider
type Datasource struct {
	CachePath string
}

// NewDatasource returns a datasource caching under the configured path
func NewDatasource() *Datasource {
	return &Datasource{CachePath: Config.CachePath}
}

// FetchMatchesCSV downloads a team-centric match log CSV, serving from the
// cache when the URL has been fetched before
func (d *Datasource) FetchMatchesCSV(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("must supply a URL")
	}

	if err := os.MkdirAll(d.CachePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheFilename := filepath.Join(d.CachePath, cacheKey(url)+".csv")

	if cacheData, err := os.ReadFile(cacheFilename); err == nil {
		logger.Debug("Returning cached match log for", url)
		return string(cacheData), nil
	}

	logger.Info("Fetching match log from", url)
	response, err := transport.Fetch(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch match log: %w", err)
	}

	if err := os.WriteFile(cacheFilename, response, 0644); err != nil {
		logger.Warn("Failed to write cache file", cacheFilename, err)
		// Continue processing even if caching fails
	}

	return string(response), nil
}

// cacheKey derives a stable filename for a URL
func cacheKey(url string) string {
	return fmt.Sprintf("matchlog-%x", sha1.Sum([]byte(url)))
}

// FetchStandingsTeams downloads a standings page and extracts its team
// names. Standings are never cached, the table changes every week
func (d *Datasource) FetchStandingsTeams(url string) ([]string, error) {
	if url == "" {
		return nil, fmt.Errorf("must supply a URL")
	}

	logger.Info("Fetching standings from", url)
	response, err := transport.Fetch(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings: %w", err)
	}

	return ParseTeamsFromStandingsHTML(string(response))
}

// ParseTeamsFromStandingsHTML extracts team names from a standings page.
// The first column of the first table with a data-stat="team" cell (or
// plain first-column links as a fallback) is taken to be the team list.
// Used to sanity-check an imported match log against the live league table
func ParseTeamsFromStandingsHTML(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	seen := make(map[string]bool)
	var teams []string

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		teams = append(teams, name)
	}

	doc.Find("table tbody tr td[data-stat=team], table tbody tr th[data-stat=team]").Each(func(i int, s *goquery.Selection) {
		add(s.Text())
	})

	if len(teams) == 0 {
		// Fallback: first-column anchors of any table body
		doc.Find("table tbody tr td:first-child a, table tbody tr th:first-child a").Each(func(i int, s *goquery.Selection) {
			add(s.Text())
		})
	}

	if len(teams) == 0 {
		return nil, fmt.Errorf("no team names found in standings HTML")
	}

	return teams, nil
}

// VerifyTeams compares the snapshot's team list against names scraped from
// a standings page and logs anything present in the standings but missing
// from the log. Returns the missing names
func VerifyTeams(snap *Snapshot, standingsTeams []string) []string {
	known := make(map[string]bool, len(snap.Teams()))
	for _, team := range snap.Teams() {
		known[team] = true
	}

	var missing []string
	for _, team := range standingsTeams {
		if !known[team] {
			missing = append(missing, team)
		}
	}

	if len(missing) > 0 {
		logger.Warn("Standings list", len(missing), "teams absent from the match log:", strings.Join(missing, ", "))
	}
	return missing
}
