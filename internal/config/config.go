// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and PITCHPLUS_ env vars.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ModelDir holds fastball.json, breaking.json and offspeed.json.
	ModelDir string `koanf:"model_dir"`

	// DBPath is the SQLite file for leaderboard snapshots. Empty disables persistence.
	DBPath string `koanf:"db_path"`

	// SeasonStart is the first game date fetched (YYYY-MM-DD); the end is today.
	SeasonStart string `koanf:"season_start"`
	// SeasonYear selects the games-played column of the qualification table.
	SeasonYear int `koanf:"season_year"`

	SavantURL    string `koanf:"savant_url"`
	RosterURL    string `koanf:"roster_url"`
	RosterPages  int    `koanf:"roster_pages"`
	QualifierURL string `koanf:"qualifier_url"`

	// ChunkDays splits the savant date range into requests of this many days.
	ChunkDays int `koanf:"chunk_days"`
	// FetchTimeoutS bounds a single feed HTTP request.
	FetchTimeoutS int `koanf:"fetch_timeout_s"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
	// RefreshQueueSize bounds pending refresh jobs.
	RefreshQueueSize int `koanf:"refresh_queue_size"`
	// RefreshOnStart enqueues one refresh when the server boots.
	RefreshOnStart bool `koanf:"refresh_on_start"`

	FastballPitches []string `koanf:"fastball_pitches"`
	BreakingPitches []string `koanf:"breaking_pitches"`
	OffspeedPitches []string `koanf:"offspeed_pitches"`
	ExcludedPitches []string `koanf:"excluded_pitches"`
	// WhiffDescriptions are the pitch outcomes counted as a swing and miss.
	WhiffDescriptions []string `koanf:"whiff_descriptions"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		ModelDir:            "./models",
		DBPath:              "data/pitchplus.db",
		SeasonStart:         time.Now().Format("2006") + "-03-01",
		SeasonYear:          time.Now().Year(),
		SavantURL:           "https://baseballsavant.mlb.com/statcast_search/csv",
		RosterURL:           "https://www.mlb.com/stats/pitching?playerPool=ALL&sortState=asc",
		RosterPages:         50,
		QualifierURL:        "https://www.teamrankings.com/mlb/stat/games-played",
		ChunkDays:           6,
		FetchTimeoutS:       60,
		MaxLeaderboardLimit: 1000,
		RefreshQueueSize:    4,
		RefreshOnStart:      true,
		FastballPitches:     []string{"4-Seam Fastball", "Sinker"},
		BreakingPitches:     []string{"Slurve", "Curveball", "Knuckle Curve", "Sweeper", "Slider", "Cutter"},
		OffspeedPitches:     []string{"Changeup", "Split-Finger"},
		ExcludedPitches:     []string{"Other", "Slow Curve", "Eephus", "Knuckleball", "Pitch Out", "Screwball", "Forkball"},
		WhiffDescriptions:   []string{"swinging_strike", "swinging_strike_blocked"},
	}
}

// FetchTimeout returns FetchTimeoutS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutS) * time.Second
}
