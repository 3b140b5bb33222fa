// Package model contains domain models passed between pipeline stages.
package model

import "math"

// Hand is a throwing hand or batting stance.
type Hand string

const (
	Left  Hand = "L"
	Right Hand = "R"
)

// RegularSeason is the only game type the pipeline keeps.
const RegularSeason = "R"

// PitchRecord is one pitch from the raw feed. Missing measurements are NaN.
type PitchRecord struct {
	GamePK       int64
	AtBatNumber  int
	PitchNumber  int
	GameDate     string
	PitcherID    string
	PlayerName   string // "Last, First"
	BatterStance Hand
	PitcherThrow Hand
	PitchName    string
	GameType     string
	Description  string

	ReleaseSpeed     float64
	PfxX             float64
	PfxZ             float64
	ReleasePosX      float64
	ReleasePosZ      float64
	ReleaseSpinRate  float64
	ReleaseExtension float64
	PlateX           float64
	PlateZ           float64
	Balls            float64
	Strikes          float64
	Zone             float64
}

// Key identifies a pitch across overlapping feed requests.
type Key struct {
	GamePK      int64
	AtBatNumber int
	PitchNumber int
}

// Key returns the pitch identity.
func (p *PitchRecord) Key() Key {
	return Key{GamePK: p.GamePK, AtBatNumber: p.AtBatNumber, PitchNumber: p.PitchNumber}
}

// Missing is the value used for an absent numeric measurement.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v is an absent measurement.
func IsMissing(v float64) bool { return math.IsNaN(v) }
