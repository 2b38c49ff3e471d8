package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
)

func TestPromptStore_ImplementsInterface(t *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultDirName, "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptChatSystem)
	require.NoError(t, err)

	for _, f := range []string{
		"summary_eli5.txt",
		"summary_plain.txt",
		"summary_detailed.txt",
		"chat_system.txt",
		"chat_context.txt",
		"README.md",
	} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
}

func TestPromptStore_SummaryDefaults_FormatLengthThenDocument(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{
		driven.PromptSummaryELI5,
		driven.PromptSummaryPlain,
		driven.PromptSummaryDetailed,
	} {
		t.Run(name, func(t *testing.T) {
			tmpl, err := store.Load(name)
			require.NoError(t, err)

			out := fmt.Sprintf(tmpl, 420, "The Tenant shall pay rent.")

			assert.Contains(t, out, "420 characters")
			assert.Contains(t, out, "The Tenant shall pay rent.")
			assert.NotContains(t, out, "%!")
		})
	}
}

func TestPromptStore_ChatDefaults(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	system, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Contains(t, system, `"answer"`)
	assert.Contains(t, system, `"confidence"`)

	ctxTmpl, err := store.Load(driven.PromptChatContext)
	require.NoError(t, err)
	assert.Equal(t, "CONTEXT:\n[clause-1] x", fmt.Sprintf(ctxTmpl, "[clause-1] x"))
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Summarise for a lawyer in %d chars: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary_detailed.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSummaryDetailed)

	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	// Initialise, then remove the file the user would have edited.
	_, err = store.Load(driven.PromptChatContext)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "summary_plain.txt")))

	prompt, err := store.Load(driven.PromptSummaryPlain)

	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptSummaryPlain], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent")

	assert.Error(t, err)
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)

	path := filepath.Join(dir, "chat_system.txt")
	require.NoError(t, os.WriteFile(path, []byte("Answer in JSON."), 0600))

	cached, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	reloaded, err := store.Load(driven.PromptChatSystem)
	require.NoError(t, err)
	assert.Equal(t, "Answer in JSON.", reloaded)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Load(driven.PromptSummaryELI5); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent load: %v", err)
	}
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("mine"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, err = store.Load(driven.PromptChatSystem)
	require.NoError(t, err)

	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}

func TestPromptStore_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_context.txt"), []byte("\n  Clauses:\n%s \n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptChatContext)

	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(prompt, "\n"))
	assert.Equal(t, "Clauses:\n%s", prompt)
}
