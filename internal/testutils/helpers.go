package testutils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/internal/compiler"
	"github.com/xdsai/persephone/pkg/domain"
)

// NeonStory is a small story exercising every engine feature:
// gated and locked choices, a slug group, a dangling target, lore,
// mirrored flags, a lock-at node, an ending and hidden commands.
const NeonStory = `{
  "schemaVersion": 1,
  "start": "intro",
  "meta": {
    "title": "Neon Debt",
    "protagonist": "Persephone",
    "state": { "heat": 0, "cyber": 0, "empathy": 0, "credits": 5, "corpRep": 0, "shortMode": false, "flags": {}, "loreDiscoveries": [] },
    "loreRegistry": [
      { "slug": "ghost-protocol", "title": "Ghost Protocol", "summary": "A backdoor older than the city." }
    ],
    "ux": { "showStats": true, "showLockedChoices": true },
    "flow": { "hubNodeId": "hub", "lockAtNodeIds": ["tower"] },
    "hiddenCommands": [
      { "cmd": "ghost", "aliases": ["gh"], "discoverHint": "Whisper to the net.", "effect": "vault", "requires": "ally_gotara && !corpContract" },
      { "cmd": "whoami", "effect": "You are nobody yet.", "requires": [ { "var": "cyber", "op": ">=", "value": 2 } ] }
    ]
  },
  "nodes": [
    {
      "id": "intro",
      "text": "Rain on chrome.",
      "choices": [
        { "text": "Jack in", "to": "hub", "effects": { "cyber": 2, "addLore": "ghost-protocol" } },
        { "text": "Call Johnny", "to": "hub", "effects": { "ally_johnny": true } },
        { "text": "Follow the static", "to": "nowhere" },
        { "text": "Bribe the guard", "to": "vault", "conditions": [ { "var": "credits", "op": ">=", "value": 10 } ], "showIfLocked": true, "lockedText": "You need 10 credits." }
      ]
    },
    {
      "id": "hub",
      "text": "The market hums.",
      "choices": [
        { "text": "Ask the fixer", "to": "fixer", "slug": "ask", "variant": "available", "conditions": [ { "var": "asked_fixer", "op": "!=", "value": true } ], "effects": { "asked_fixer": true } },
        { "text": "Ask the fixer again", "to": "fixer", "slug": "ask", "variant": "done", "conditions": [ { "var": "asked_fixer", "op": "=", "value": true } ] },
        { "text": "Enter the tower", "to": "tower" },
        { "text": "Back to the street", "to": "intro" }
      ]
    },
    {
      "id": "fixer",
      "text": "She counts your chips.",
      "choices": [ { "text": "Return", "to": "hub" } ]
    },
    {
      "id": "vault",
      "text": "Cold air and old money.",
      "choices": [ { "text": "Leave", "to": "hub" } ]
    },
    {
      "id": "tower",
      "text": "The doors seal behind you.",
      "choices": [ { "text": "Fight", "to": "burnout", "effects": { "heat": 5 } } ]
    },
    {
      "id": "burnout",
      "type": "ending",
      "endingId": "burnout",
      "title": "Burnout",
      "text": "The lights go out."
    }
  ]
}`

// LoadStory parses a story document and fails the test on error.
func LoadStory(t testing.TB, doc string) *domain.Story {
	t.Helper()
	story, err := compiler.NewParser().Parse([]byte(doc), compiler.FormatAuto)
	require.NoError(t, err, "failed to parse story fixture")
	return story
}

// NeonFixture returns a freshly parsed copy of NeonStory.
func NeonFixture(t testing.TB) *domain.Story {
	t.Helper()
	return LoadStory(t, NeonStory)
}

// DiagnosticRecorder collects diagnostics delivered through lifecycle hooks.
type DiagnosticRecorder struct {
	mu    sync.Mutex
	diags []domain.Diagnostic
}

// Hooks returns lifecycle hooks that record every diagnostic.
func (r *DiagnosticRecorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDiagnostic: func(d *domain.Diagnostic) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.diags = append(r.diags, *d)
		},
	}
}

// All returns the recorded diagnostics in arrival order.
func (r *DiagnosticRecorder) All() []domain.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Diagnostic(nil), r.diags...)
}

// Kinds returns the recorded diagnostic kinds in arrival order.
func (r *DiagnosticRecorder) Kinds() []domain.DiagnosticKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]domain.DiagnosticKind, len(r.diags))
	for i, d := range r.diags {
		kinds[i] = d.Kind
	}
	return kinds
}

// Reset forgets everything recorded so far.
func (r *DiagnosticRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = nil
}
