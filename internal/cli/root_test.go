package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/leapstack-labs/lookgen/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "lookgen", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	// Global persistent flags
	for _, flag := range []string{"config", "target-dir", "output-dir", "cookbook", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "persistent flag %q should exist", flag)
	}

	// Subcommands
	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, name := range []string{"generate", "cookbook", "version", "completion"} {
		assert.True(t, subs[name], "subcommand %q should be registered", name)
	}
}

func TestRootCmd_VersionSubcommand(t *testing.T) {
	config.ResetConfig()

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "lookgen v")
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"frobnicate"})

	require.Error(t, cmd.Execute())
}

func TestGetConfig_Fallback(t *testing.T) {
	cfg := GetConfig(context.Background())
	require.NotNil(t, cfg)
	assert.Equal(t, config.DefaultTargetDir, cfg.TargetDir)
	assert.Equal(t, config.DefaultJobs, cfg.Jobs)
}
