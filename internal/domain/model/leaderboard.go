package model

// Optional is a value that may be absent. Valid is false when the value was not found.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Valid: true} }

// None returns an absent value.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.Value, o.Valid }

// RosterEntry is one row of the external roster/usage feed.
type RosterEntry struct {
	PlayerID string
	Name     string
	Team     string
	IP       float64
	WHIP     float64
}

// LeaderboardRow is one pitcher in the final table.
type LeaderboardRow struct {
	PitcherID    string            `json:"pitcher_id"`
	Name         string            `json:"player_name"`
	Team         Optional[string]  `json:"team"`
	IP           Optional[float64] `json:"ip"`
	WHIP         Optional[float64] `json:"whip"`
	PitchingPlus int               `json:"pitching_plus"`
	// ByPitch holds one cell per pitch name the pitcher threw. Absent keys are missing.
	ByPitch map[string]int `json:"by_pitch"`
}

// Pitch returns the pitcher's Pitching+ for a pitch name.
func (r *LeaderboardRow) Pitch(name string) Optional[int] {
	v, ok := r.ByPitch[name]
	if !ok {
		return None[int]()
	}
	return Some(v)
}

// Leaderboard is the terminal table. PitchColumns are in encounter order.
type Leaderboard struct {
	PitchColumns []string         `json:"pitch_columns"`
	Rows         []LeaderboardRow `json:"rows"`
}

// Columns returns the full header in output order.
func (l *Leaderboard) Columns() []string {
	cols := []string{"pitcher", "player_name", "team", "IP", "whip", "Pitching+"}
	return append(cols, l.PitchColumns...)
}

// LeaderboardQuery selects ranked rows. Limit 0 means all rows. A set MinIP,
// including 0, drops pitchers without innings; Qualified takes precedence.
type LeaderboardQuery struct {
	Limit     int
	MinIP     Optional[float64]
	Qualified bool
}
