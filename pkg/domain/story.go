package domain

// SaveKey is the storage key hosts use for the single save slot of a run.
const SaveKey = "persephone-run-v1:save"

// SessionSaveKey scopes SaveKey to one session for multi-player hosts.
func SessionSaveKey(sessionID string) string {
	return SaveKey + ":" + sessionID
}

// Story is the read-only story document supplied once at engine construction.
type Story struct {
	SchemaVersion int    `json:"schemaVersion" yaml:"schemaVersion"`
	Meta          Meta   `json:"meta" yaml:"meta"`
	Start         string `json:"start" yaml:"start"`
	Nodes         []Node `json:"nodes" yaml:"nodes"`
}

// Meta holds the story metadata: initial state, lore, UI toggles and flow rules.
type Meta struct {
	Title          string            `json:"title" yaml:"title"`
	Protagonist    string            `json:"protagonist,omitempty" yaml:"protagonist,omitempty"`
	Theme          string            `json:"theme,omitempty" yaml:"theme,omitempty"`
	Endings        map[string]string `json:"endings,omitempty" yaml:"endings,omitempty"`
	HiddenCommands []HiddenCommand   `json:"hiddenCommands,omitempty" yaml:"hiddenCommands,omitempty"`
	State          State             `json:"state" yaml:"state"`
	LoreRegistry   LoreRegistry      `json:"loreRegistry,omitempty" yaml:"loreRegistry,omitempty"`
	UX             UX                `json:"ux" yaml:"ux"`
	Flow           Flow              `json:"flow" yaml:"flow"`
}

// UX carries the presentation toggles the story author controls.
type UX struct {
	ShowStats         bool `json:"showStats,omitempty" yaml:"showStats,omitempty"`
	ShowLockedChoices bool `json:"showLockedChoices,omitempty" yaml:"showLockedChoices,omitempty"`
}

// Flow configures the hub node and the point-of-no-return nodes.
type Flow struct {
	HubNodeID     string   `json:"hubNodeId,omitempty" yaml:"hubNodeId,omitempty"`
	LockAtNodeIDs []string `json:"lockAtNodeIds,omitempty" yaml:"lockAtNodeIds,omitempty"`
}

// LocksAt reports whether reaching id disables roaming.
func (f Flow) LocksAt(id string) bool {
	for _, lock := range f.LockAtNodeIDs {
		if lock == id {
			return true
		}
	}
	return false
}
