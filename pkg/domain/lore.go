package domain

// LoreItem is a discoverable entry of the story's lore registry.
type LoreItem struct {
	Slug           string   `json:"slug" yaml:"slug"`
	Title          string   `json:"title" yaml:"title"`
	Summary        string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	WhereItAppears []string `json:"whereItAppears,omitempty" yaml:"whereItAppears,omitempty"`
	Status         string   `json:"status,omitempty" yaml:"status,omitempty"`
}

// LoreRegistry is the static lore catalogue. State only records which slugs were found.
type LoreRegistry []LoreItem

// Find returns the registry entry for slug.
func (r LoreRegistry) Find(slug string) (LoreItem, bool) {
	for _, item := range r {
		if item.Slug == slug {
			return item, true
		}
	}
	return LoreItem{}, false
}

// Has reports whether slug is registered.
func (r LoreRegistry) Has(slug string) bool {
	_, ok := r.Find(slug)
	return ok
}
