// Package registry holds the pre-fit whiff classifiers keyed by pitch family.
package registry

import "fmt"

// Family is a group of pitch names that share one classifier.
type Family int

const (
	Fastball Family = iota
	Breaking
	Offspeed
)

// Families lists every family in scoring order.
var Families = []Family{Fastball, Breaking, Offspeed}

func (f Family) String() string {
	switch f {
	case Fastball:
		return "fastball"
	case Breaking:
		return "breaking"
	case Offspeed:
		return "offspeed"
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// artifact returns the file name of the family's classifier.
func (f Family) artifact() string {
	return f.String() + ".json"
}

// FamilySet maps pitch names to their family.
type FamilySet struct {
	byName  map[string]Family
	members map[Family][]string
}

// NewFamilySet builds a set from the three member lists. A name listed twice
// is rejected because it would be scored by two models.
func NewFamilySet(fastball, breaking, offspeed []string) (*FamilySet, error) {
	s := &FamilySet{byName: make(map[string]Family), members: make(map[Family][]string)}
	lists := [][]string{fastball, breaking, offspeed}
	for i, fam := range Families {
		for _, n := range lists[i] {
			if prev, dup := s.byName[n]; dup {
				return nil, fmt.Errorf("pitch %q in both %s and %s", n, prev, fam)
			}
			s.byName[n] = fam
			s.members[fam] = append(s.members[fam], n)
		}
	}
	return s, nil
}

// DefaultFamilySet returns the standard Statcast pitch-name grouping.
func DefaultFamilySet() *FamilySet {
	s, _ := NewFamilySet(
		[]string{"4-Seam Fastball", "Sinker"},
		[]string{"Slurve", "Curveball", "Knuckle Curve", "Sweeper", "Slider", "Cutter"},
		[]string{"Changeup", "Split-Finger"},
	)
	return s
}

// Lookup returns the family of a pitch name.
func (s *FamilySet) Lookup(pitchName string) (Family, bool) {
	f, ok := s.byName[pitchName]
	return f, ok
}

// Members returns the pitch names of a family.
func (s *FamilySet) Members(f Family) []string {
	return append([]string(nil), s.members[f]...)
}
