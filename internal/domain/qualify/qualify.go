// Package qualify filters leaderboard rows by playing time.
package qualify

import "github.com/okian/pitchplus/internal/domain/model"

// TeamAbbreviations maps the display names used by the games-played table to
// the abbreviations used by the roster feed.
var TeamAbbreviations = map[string]string{
	"LA Dodgers": "LAD", "San Diego": "SD", "Houston": "HOU", "Arizona": "AZ",
	"Pittsburgh": "PIT", "NY Yankees": "NYY", "Texas": "TEX", "Kansas City": "KC",
	"Tampa Bay": "TB", "Seattle": "SEA", "St. Louis": "STL", "Boston": "BOS",
	"Oakland": "OAK", "Colorado": "COL", "Miami": "MIA", "Toronto": "TOR",
	"SF Giants": "SF", "Philadelphia": "PHI", "Washington": "WSH", "NY Mets": "NYM",
	"Cleveland": "CLE", "Cincinnati": "CIN", "LA Angels": "LAA", "Chi Sox": "CWS",
	"Chi Cubs": "CHC", "Baltimore": "BAL", "Detroit": "DET", "Atlanta": "ATL",
	"Minnesota": "MIN", "Milwaukee": "MIL",
}

// Abbreviate returns the abbreviation for a team display name, or the name
// itself when it is not in TeamAbbreviations.
func Abbreviate(team string) string {
	if abbr, ok := TeamAbbreviations[team]; ok {
		return abbr
	}
	return team
}

// Thresholds holds the minimum innings a pitcher needs to qualify, per team
// abbreviation. One inning per team game played.
type Thresholds map[string]float64

// Lookup returns the threshold for team.
func (t Thresholds) Lookup(team string) (float64, bool) {
	v, ok := t[team]
	return v, ok
}

// Criteria selects rows. When Qualified is set, MinIP is ignored. The zero
// Criteria keeps every row.
type Criteria struct {
	Qualified  bool
	Thresholds Thresholds
	MinIP      model.Optional[float64]
}

// Keep reports whether row passes c. Under any innings filter, a set MinIP of
// 0 included, a row with no IP never passes; with Qualified a row whose team
// has no threshold never passes.
func (c Criteria) Keep(row *model.LeaderboardRow) bool {
	minIP, hasMin := c.MinIP.Get()
	if !c.Qualified && !hasMin {
		return true
	}
	ip, ok := row.IP.Get()
	if !ok {
		return false
	}
	if !c.Qualified {
		return ip >= minIP
	}
	team, ok := row.Team.Get()
	if !ok {
		return false
	}
	need, ok := c.Thresholds.Lookup(team)
	return ok && ip >= need
}

// Filter returns the rows that pass c, in their original order.
func Filter(rows []model.LeaderboardRow, c Criteria) []model.LeaderboardRow {
	out := make([]model.LeaderboardRow, 0, len(rows))
	for i := range rows {
		if c.Keep(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
