package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fnErr := fn()
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), fnErr
}

func writeToolGrammar(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool.yml"), []byte(`command: tool
nofiles: true
flags:
  - flag: "--all"
args:
  - values:
      - value: add
        desc: add things
      - remove
`), 0o644))
	return dir
}

func TestComplete_JSONOutput(t *testing.T) {
	dir := writeToolGrammar(t)

	out, err := captureStdout(t, func() error {
		return Complete(CompleteParams{
			Line:       "tool a",
			Cursor:     -1,
			GrammarDir: dir,
			JSON:       true,
		})
	})
	require.NoError(t, err)

	var result jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "add", result.Candidates[0].Match)
	assert.Equal(t, "add things", result.Candidates[0].Description)
	assert.Equal(t, "arg", result.Candidates[0].Type)
	assert.Equal(t, "add", result.Candidates[0].Insert)
	assert.Equal(t, " ", result.Candidates[0].Append)
}

func TestComplete_HumanOutput(t *testing.T) {
	dir := writeToolGrammar(t)

	out, err := captureStdout(t, func() error {
		return Complete(CompleteParams{Line: "tool ", Cursor: -1, GrammarDir: dir})
	})
	require.NoError(t, err)

	assert.Contains(t, out, "add")
	assert.Contains(t, out, "remove")
}

func TestComplete_BadConfigPath(t *testing.T) {
	err := Complete(CompleteParams{
		Line:       "tool ",
		ConfigPath: filepath.Join(t.TempDir(), "absent.yml"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load settings")
}

func TestClassify_Output(t *testing.T) {
	dir := writeToolGrammar(t)

	out, err := captureStdout(t, func() error {
		return Classify(ClassifyParams{Line: "tool --all add", Cursor: -1, GrammarDir: dir})
	})
	require.NoError(t, err)

	assert.Contains(t, out, "0\tc\ttool")
	assert.Contains(t, out, "1\tf\t--all")
	assert.Contains(t, out, "2\ta\tadd")
}

func TestGrammarValidate(t *testing.T) {
	dir := writeToolGrammar(t)

	_, err := captureStdout(t, func() error {
		return GrammarValidate(GrammarValidateParams{Path: filepath.Join(dir, "tool.yml")})
	})
	assert.NoError(t, err)

	assert.Error(t, GrammarValidate(GrammarValidateParams{}))

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("nope: true\n"), 0o644))
	assert.Error(t, GrammarValidate(GrammarValidateParams{Path: bad}))
}

func TestGrammarList(t *testing.T) {
	dir := writeToolGrammar(t)

	out, err := captureStdout(t, func() error {
		return GrammarList(GrammarListParams{GrammarDir: dir})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "tool\t1 slots, 1 flags")

	out, err = captureStdout(t, func() error {
		return GrammarList(GrammarListParams{GrammarDir: t.TempDir()})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "no grammars registered")
}
