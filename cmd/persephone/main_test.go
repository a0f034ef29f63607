package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone"
	"github.com/xdsai/persephone/internal/config"
	"github.com/xdsai/persephone/internal/testutils"
	"github.com/xdsai/persephone/internal/validator"
)

const cleanStory = `
start: gate
meta:
  title: The Gate
  flow:
    lockAtNodeIds: [inside]
nodes:
  - id: gate
    text: A door of iron.
    choices:
      - text: Knock
        to: inside
  - id: inside
    text: It closes behind you.
    choices:
      - text: Walk on
        to: end
  - id: end
    type: ending
    endingId: through
    title: Through
    text: You are through.
`

func writeStory(t *testing.T, name, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "persephone version "+persephone.Version+"\n", out)
}

func TestValidate(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		out, err := run(t, "", "validate", writeStory(t, "gate.yaml", cleanStory))
		require.NoError(t, err)
		assert.Equal(t, "Story is valid!\n", out)
	})

	t.Run("dangling target", func(t *testing.T) {
		out, err := run(t, "", "validate", writeStory(t, "neon.json", testutils.NeonStory))
		require.Error(t, err)
		assert.Contains(t, out, `[error] intro: choice 2 ("Follow the static") targets missing node "nowhere"`)
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "", "validate", "--json", writeStory(t, "neon.json", testutils.NeonStory))
		require.Error(t, err)
		var report validator.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.NotEmpty(t, report.Errors())
	})

	t.Run("strict", func(t *testing.T) {
		doc := strings.Replace(cleanStory, "lockAtNodeIds: [inside]", "lockAtNodeIds: [inside, attic]", 1)
		_, err := run(t, "", "validate", writeStory(t, "gate.yaml", doc))
		require.NoError(t, err)

		_, err = run(t, "", "validate", "--strict", writeStory(t, "gate.yaml", doc))
		assert.Error(t, err)
	})
}

func TestMissingStory(t *testing.T) {
	t.Setenv(config.EnvStory, "")
	for _, sub := range []string{"validate", "graph", "play", "serve", "mcp"} {
		_, err := run(t, "", sub)
		assert.ErrorIs(t, err, config.ErrNoStory, sub)
	}
}

func TestGraph_StoryFromEnv(t *testing.T) {
	t.Setenv(config.EnvStory, writeStory(t, "gate.yaml", cleanStory))

	out, err := run(t, "", "graph")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `gate(("gate"))`)
	assert.Contains(t, out, "class inside lock;")
}

func TestPlay_SavesAndResumes(t *testing.T) {
	story := writeStory(t, "neon.json", testutils.NeonStory)
	saves := t.TempDir()

	out, err := run(t, "1\nq\n", "play", "--save-dir", saves, story)
	require.NoError(t, err)
	assert.Contains(t, out, "Rain on chrome.")
	assert.Contains(t, out, "The market hums.")

	out, err = run(t, "", "graph", "--with-save", "--save-dir", saves, story)
	require.NoError(t, err)
	assert.Contains(t, out, "class intro visited;")
	assert.Contains(t, out, "class hub current;")

	out, err = run(t, "", "play", "--save-dir", saves, story)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "The market hums."), "the run resumes at the hub")

	out, err = run(t, "", "play", "--fresh", "--no-save", "--save-dir", saves, story)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "Rain on chrome."))
}

func TestPlay_BadLogLevel(t *testing.T) {
	story := writeStory(t, "gate.yaml", cleanStory)
	_, err := run(t, "", "play", "--log-level", "loud", story)
	assert.Error(t, err)
}
