package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Root Command Tests
// ============================================================================

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: listing subcommands
	names := make(map[string]bool)
	for _, sc := range cmd.Commands() {
		names[sc.Name()] = true
	}

	// Then: every top-level command should be registered
	for _, want := range []string{"search", "semantic", "pack", "ingest", "serve", "config", "version"} {
		assert.True(t, names[want], "should have %s command", want)
	}
}

func TestRootCmd_VersionTemplate(t *testing.T) {
	// Given: root command with captured output
	t.Setenv("HOME", t.TempDir())
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	// When: asking for the version
	err := cmd.Execute()
	require.NoError(t, err)

	// Then: output follows the template
	assert.Contains(t, buf.String(), "grantha version")
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	// Given: root command
	t.Setenv("HOME", t.TempDir())
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"search"})

	// When: running search with no arguments
	err := cmd.Execute()

	// Then: argument validation fails
	assert.Error(t, err)
}

func TestSearchCmd_HasFlags(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding the search command
	searchCmd, _, err := cmd.Find([]string{"search"})
	require.NoError(t, err)

	// Then: pagination and filter flags exist
	for _, name := range []string{"work", "scope", "page", "per-page", "json"} {
		assert.NotNil(t, searchCmd.Flags().Lookup(name), "should have --%s flag", name)
	}
}

// ============================================================================
// Config CLI Tests
// ============================================================================

func TestConfigCmd_HasSubcommands(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding the config command
	configCmd, _, err := cmd.Find([]string{"config"})
	require.NoError(t, err)

	// Then: init and show are registered
	names := make(map[string]bool)
	for _, sc := range configCmd.Commands() {
		names[sc.Name()] = true
	}
	assert.True(t, names["init"], "should have init command")
	assert.True(t, names["show"], "should have show command")
}

func TestConfigInitCmd_WritesTemplate(t *testing.T) {
	// Given: a temp home with no existing config
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	target := filepath.Join(tmpDir, "config.yaml")

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", "--config", target})

	// When: running config init
	err := cmd.Execute()
	require.NoError(t, err)

	// Then: the template lands at the target path
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider: hashed")

	// And: a second run without --force refuses to overwrite
	cmd = NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", "--config", target})
	err = cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigShowCmd_PrintsEffectiveConfig(t *testing.T) {
	// Given: defaults only
	t.Setenv("HOME", t.TempDir())
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"config", "show"})

	// When: running config show
	err := cmd.Execute()
	require.NoError(t, err)
}
