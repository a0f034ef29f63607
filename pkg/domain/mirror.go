package domain

// MirroredFlags pairs flag names that label one underlying relationship.
// Reading either name falls back to its partner and writing one writes both.
var MirroredFlags = map[string]string{
	"ally_johnny": "ally_gotara",
	"ally_gotara": "ally_johnny",
}

// Mirror returns the partner of a mirrored flag name.
func Mirror(name string) (string, bool) {
	partner, ok := MirroredFlags[name]
	return partner, ok
}
