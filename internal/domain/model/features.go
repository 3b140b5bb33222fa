package model

// Canonical feature column names, in model input order.
const (
	ColReleaseSpeed     = "release_speed"
	ColPfxX             = "pfx_x"
	ColPfxZ             = "pfx_z"
	ColReleasePosX      = "release_pos_x"
	ColReleasePosZ      = "release_pos_z"
	ColReleaseSpinRate  = "release_spin_rate"
	ColReleaseExtension = "release_extension"
	ColVeloDiff         = "velo_diff"
	ColPxDiff           = "px_diff"
	ColPzDiff           = "pz_diff"
	ColZone             = "zone"
	ColBalls            = "balls"
	ColStrikes          = "strikes"
	ColPlateX           = "plate_x"
	ColPlateZ           = "plate_z"
	ColBatterStance     = "batter_stance"
)

// FeatureColumns lists all 16 canonical columns.
var FeatureColumns = []string{
	ColReleaseSpeed, ColPfxX, ColPfxZ, ColReleasePosX, ColReleasePosZ,
	ColReleaseSpinRate, ColReleaseExtension, ColVeloDiff, ColPxDiff, ColPzDiff,
	ColZone, ColBalls, ColStrikes, ColPlateX, ColPlateZ, ColBatterStance,
}

// DifferentialColumns are the baseline-relative columns.
var DifferentialColumns = []string{ColVeloDiff, ColPxDiff, ColPzDiff}

// IsFeatureColumn reports whether col is one of the canonical columns.
func IsFeatureColumn(col string) bool {
	for _, c := range FeatureColumns {
		if c == col {
			return true
		}
	}
	return false
}

// FeatureRow is a normalized pitch ready for scoring. Movement, release x and
// plate x are in the right-handed frame.
type FeatureRow struct {
	PitcherID  string
	PlayerName string
	PitchName  string
	Whiff      bool

	ReleaseSpeed     float64
	PfxX             float64
	PfxZ             float64
	ReleasePosX      float64
	ReleasePosZ      float64
	ReleaseSpinRate  float64
	ReleaseExtension float64
	VeloDiff         float64
	PxDiff           float64
	PzDiff           float64
	Zone             float64
	Balls            float64
	Strikes          float64
	PlateX           float64
	PlateZ           float64
	BatterStance     float64
}

// Value returns the named canonical column. Unknown names are missing.
func (f *FeatureRow) Value(col string) float64 {
	switch col {
	case ColReleaseSpeed:
		return f.ReleaseSpeed
	case ColPfxX:
		return f.PfxX
	case ColPfxZ:
		return f.PfxZ
	case ColReleasePosX:
		return f.ReleasePosX
	case ColReleasePosZ:
		return f.ReleasePosZ
	case ColReleaseSpinRate:
		return f.ReleaseSpinRate
	case ColReleaseExtension:
		return f.ReleaseExtension
	case ColVeloDiff:
		return f.VeloDiff
	case ColPxDiff:
		return f.PxDiff
	case ColPzDiff:
		return f.PzDiff
	case ColZone:
		return f.Zone
	case ColBalls:
		return f.Balls
	case ColStrikes:
		return f.Strikes
	case ColPlateX:
		return f.PlateX
	case ColPlateZ:
		return f.PlateZ
	case ColBatterStance:
		return f.BatterStance
	}
	return Missing()
}

// PitcherBaseline holds a pitcher's mean fastball-family measurements.
type PitcherBaseline struct {
	PitcherID    string
	ReleaseSpeed float64
	PfxX         float64
	PfxZ         float64
}

// ScoredPitch is a feature row with its model output. Never mutated after scoring.
type ScoredPitch struct {
	FeatureRow
	Family           string
	WhiffProbability float64
	PitchingPlus     float64
}
