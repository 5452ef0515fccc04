package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "punchctl", cmd.Use)
	assert.Contains(t, cmd.Long, "SQLite")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"login"}, {"logout"}, {"status"}, {"punch-in"}, {"punch-out"},
		{"customers"}, {"history"},
		{"password", "forgot"}, {"password", "verify"}, {"password", "reset"},
		{"admin", "users"}, {"admin", "customers"}, {"admin", "logs"},
		{"admin", "summary"}, {"admin", "export"}, {"admin", "profile"}, {"admin", "password"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestPunchInCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	punchIn, _, err := cmd.Find([]string{"punch-in"})
	require.NoError(t, err)

	for _, name := range []string{"customer", "photo", "location", "lat", "lng"} {
		assert.NotNil(t, punchIn.Flags().Lookup(name), name)
	}
}

func TestListFlags(t *testing.T) {
	cmd := NewRootCommand()
	users, _, err := cmd.Find([]string{"admin", "users"})
	require.NoError(t, err)

	search := users.Flags().Lookup("search")
	require.NotNil(t, search)
	assert.Equal(t, "s", search.Shorthand)

	page := users.Flags().Lookup("page")
	require.NotNil(t, page)
	assert.Equal(t, "1", page.DefValue)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	history, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	limit := history.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "10", limit.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "yaml", "status"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr.String(), `invalid format "yaml"`)
}
