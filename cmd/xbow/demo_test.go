package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDemoMap(t *testing.T) {
	out, err := runCmd(t, "demo", "map")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines, "  h1 = a")
	assert.Contains(t, lines, "  h1 = <absent>")
	assert.Contains(t, lines, "  handle_at(1) = <absent>")
	assert.Contains(t, lines, "  handle_at(1) = c")
	assert.Contains(t, out, "notify down  ${1}")
}

func TestDemoSliceKeepsPositionalHandle(t *testing.T) {
	out, err := runCmd(t, "demo", "slice")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines, "  h = 20")
	assert.Contains(t, lines, "  sequence = [20 30]")
	assert.Contains(t, lines, "  h = 30")
}

func TestDemoTodo(t *testing.T) {
	out, err := runCmd(t, "demo", "todo")
	require.NoError(t, err)

	assert.Contains(t, out, "  todos{1}.value = <absent>")
	assert.Contains(t, out, `  [2] "walk dog" done=false`)
	assert.NotContains(t, out, `"buy milk" done`)
}

func TestDemoAll(t *testing.T) {
	out, err := runCmd(t, "demo")
	require.NoError(t, err)
	for _, name := range scenarioNames() {
		assert.Contains(t, out, "== "+name)
	}
}

func TestDemoUnknown(t *testing.T) {
	_, err := runCmd(t, "demo", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "X060")
}

func TestVersionShort(t *testing.T) {
	out, err := runCmd(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := runCmd(t, "init", dir)
	require.NoError(t, err)

	_, err = runCmd(t, "init", dir)
	require.Error(t, err)

	_, err = runCmd(t, "init", dir, "--force")
	require.NoError(t, err)
}
