package persephone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xdsai/persephone/internal/compiler"
	"github.com/xdsai/persephone/internal/logging"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/pkg/domain"
	"github.com/xdsai/persephone/pkg/ports"
)

// RenderedChoice is one entry of the presentation view of the current choices.
type RenderedChoice = runtime.RenderedChoice

// CommandResult describes what a hidden command did.
type CommandResult = runtime.CommandResult

// Engine is the high-level entry point for the persephone library.
// It wraps the runtime engine (one run of one story) and adds host helpers
// for persisting the run through a ports.SaveStore.
type Engine struct {
	*runtime.Engine

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	Name   string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks, including the diagnostic sink.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithName labels the engine; the label is added to every log line.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New starts a run of story.
func New(story *domain.Story, opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name == "" && story != nil {
		eng.Name = story.Meta.Title
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("story", eng.Name)
	}

	eng.Engine = runtime.NewEngine(story,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng
}

// Open loads the story document at path and starts a run of it.
func Open(path string, opts ...Option) (*Engine, error) {
	story, err := LoadStory(path)
	if err != nil {
		return nil, err
	}
	return New(story, opts...), nil
}

// LoadStory reads a JSON or YAML story document from disk.
// The format follows the file extension; unknown extensions are sniffed.
func LoadStory(path string) (*domain.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story: %w", err)
	}
	return ParseStory(data, string(formatFor(path)))
}

// ParseStory decodes a story document. An empty format sniffs the content.
func ParseStory(data []byte, format string) (*domain.Story, error) {
	return compiler.NewParser().Parse(data, compiler.Format(format))
}

func formatFor(path string) compiler.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return compiler.FormatJSON
	case ".yaml", ".yml":
		return compiler.FormatYAML
	}
	return compiler.FormatAuto
}

// Save serializes the run and stores it under domain.SaveKey.
func (e *Engine) Save(ctx context.Context, store ports.SaveStore) error {
	payload, err := e.Serialize()
	if err != nil {
		return err
	}
	if err := store.Save(ctx, domain.SaveKey, payload); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	e.logger.Debug("run saved", "node_id", e.CurrentID())
	return nil
}

// Load restores the run stored under domain.SaveKey. It returns false when
// there was nothing to restore or the save was corrupt; the run then starts fresh.
func (e *Engine) Load(ctx context.Context, store ports.SaveStore) (bool, error) {
	payload, err := store.Load(ctx, domain.SaveKey)
	if errors.Is(err, domain.ErrSaveNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load run: %w", err)
	}
	return e.Deserialize(payload), nil
}

// Forget deletes the stored run.
func (e *Engine) Forget(ctx context.Context, store ports.SaveStore) error {
	return store.Delete(ctx, domain.SaveKey)
}
