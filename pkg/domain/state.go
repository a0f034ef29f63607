package domain

import (
	"encoding/json"
	"math"

	"gopkg.in/yaml.v3"
)

// Stat names in the fixed order effects are applied.
const (
	StatHeat    = "heat"
	StatCyber   = "cyber"
	StatEmpathy = "empathy"
	StatCredits = "credits"
	StatCorpRep = "corpRep"
)

// Direct boolean fields of State visible to conditions.
const (
	FieldShortMode = "shortMode"
	FieldCanRoam   = "canRoam"
)

// StatNames lists the numeric counters of State.
var StatNames = []string{StatHeat, StatCyber, StatEmpathy, StatCredits, StatCorpRep}

// IsStat reports whether name is one of the numeric counters.
func IsStat(name string) bool {
	for _, s := range StatNames {
		if s == name {
			return true
		}
	}
	return false
}

// State is the mutable player state of a run.
type State struct {
	Heat    int `json:"heat" yaml:"heat"`
	Cyber   int `json:"cyber" yaml:"cyber"`
	Empathy int `json:"empathy" yaml:"empathy"`
	Credits int `json:"credits" yaml:"credits"`
	CorpRep int `json:"corpRep" yaml:"corpRep"`

	ShortMode bool `json:"shortMode" yaml:"shortMode"`

	// Flags holds arbitrary story flags.
	Flags map[string]bool `json:"flags" yaml:"flags"`

	// LoreDiscoveries lists discovered lore slugs in discovery order.
	LoreDiscoveries []string `json:"loreDiscoveries" yaml:"loreDiscoveries"`

	// CanRoam enables history and back navigation. It is cleared for good
	// once the run reaches a lock-at node. Decoding defaults it to true.
	CanRoam bool `json:"canRoam" yaml:"canRoam"`
}

// NewState creates an empty roaming state.
func NewState() State {
	return State{
		Flags:           make(map[string]bool),
		LoreDiscoveries: []string{},
		CanRoam:         true,
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	next := s
	next.Flags = make(map[string]bool, len(s.Flags))
	for k, v := range s.Flags {
		next.Flags[k] = v
	}
	next.LoreDiscoveries = append([]string{}, s.LoreDiscoveries...)
	return next
}

// Stat returns the value of a numeric counter.
func (s *State) Stat(name string) (int, bool) {
	switch name {
	case StatHeat:
		return s.Heat, true
	case StatCyber:
		return s.Cyber, true
	case StatEmpathy:
		return s.Empathy, true
	case StatCredits:
		return s.Credits, true
	case StatCorpRep:
		return s.CorpRep, true
	}
	return 0, false
}

// AddStat adds delta to a numeric counter. Unknown names are ignored.
func (s *State) AddStat(name string, delta int) bool {
	switch name {
	case StatHeat:
		s.Heat += delta
	case StatCyber:
		s.Cyber += delta
	case StatEmpathy:
		s.Empathy += delta
	case StatCredits:
		s.Credits += delta
	case StatCorpRep:
		s.CorpRep += delta
	default:
		return false
	}
	return true
}

// SetFlag writes a flag and its mirrored partner, if any.
func (s *State) SetFlag(name string, value bool) {
	if s.Flags == nil {
		s.Flags = make(map[string]bool)
	}
	if partner, ok := Mirror(name); ok {
		s.Flags[partner] = value
	}
	s.Flags[name] = value
}

// HasLore reports whether slug was already discovered.
func (s *State) HasLore(slug string) bool {
	for _, d := range s.LoreDiscoveries {
		if d == slug {
			return true
		}
	}
	return false
}

// Lookup resolves a variable name: direct fields first, then flags,
// then the mirrored alias of the name. The bool is false when nothing matched.
func (s *State) Lookup(name string) (any, bool) {
	if v, ok := s.Stat(name); ok {
		return v, true
	}
	switch name {
	case FieldShortMode:
		return s.ShortMode, true
	case FieldCanRoam:
		return s.CanRoam, true
	}
	if v, ok := s.Flags[name]; ok {
		return v, true
	}
	if partner, ok := Mirror(name); ok {
		if v, ok := s.Flags[partner]; ok {
			return v, true
		}
	}
	return nil, false
}

// Var is Lookup without the presence flag; missing variables are nil.
func (s *State) Var(name string) any {
	v, _ := s.Lookup(name)
	return v
}

func (s *State) normalize() {
	if s.Flags == nil {
		s.Flags = make(map[string]bool)
	}
	if s.LoreDiscoveries == nil {
		s.LoreDiscoveries = []string{}
	}
}

// stateDoc mirrors State with an optional canRoam so absence can be detected.
// Stats decode as numbers and are truncated, so fractional saves still load.
type stateDoc struct {
	Heat            float64         `json:"heat" yaml:"heat"`
	Cyber           float64         `json:"cyber" yaml:"cyber"`
	Empathy         float64         `json:"empathy" yaml:"empathy"`
	Credits         float64         `json:"credits" yaml:"credits"`
	CorpRep         float64         `json:"corpRep" yaml:"corpRep"`
	ShortMode       bool            `json:"shortMode" yaml:"shortMode"`
	Flags           map[string]bool `json:"flags" yaml:"flags"`
	LoreDiscoveries []string        `json:"loreDiscoveries" yaml:"loreDiscoveries"`
	CanRoam         *bool           `json:"canRoam" yaml:"canRoam"`
}

func (d stateDoc) state() State {
	s := State{
		Heat:            statValue(d.Heat),
		Cyber:           statValue(d.Cyber),
		Empathy:         statValue(d.Empathy),
		Credits:         statValue(d.Credits),
		CorpRep:         statValue(d.CorpRep),
		ShortMode:       d.ShortMode,
		Flags:           d.Flags,
		LoreDiscoveries: d.LoreDiscoveries,
		CanRoam:         true,
	}
	if d.CanRoam != nil {
		s.CanRoam = *d.CanRoam
	}
	s.normalize()
	return s
}

// statValue truncates a decoded stat toward zero and clamps it to the int range.
func statValue(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f <= float64(math.MinInt):
		return math.MinInt
	case f >= -float64(math.MinInt):
		return math.MaxInt
	}
	return int(f)
}

// UnmarshalJSON decodes a state, defaulting a missing canRoam to true.
func (s *State) UnmarshalJSON(data []byte) error {
	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*s = doc.state()
	return nil
}

// UnmarshalYAML decodes a state, defaulting a missing canRoam to true.
func (s *State) UnmarshalYAML(value *yaml.Node) error {
	var doc stateDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	*s = doc.state()
	return nil
}

// MarshalJSON always emits flags and loreDiscoveries as collections, never null.
func (s State) MarshalJSON() ([]byte, error) {
	s.normalize()
	type plain State
	return json.Marshal(plain(s))
}
