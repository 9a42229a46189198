package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "callsight", cmd.Use)
	assert.Contains(t, cmd.Long, "call graphs")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"list", "import", "graph", "diff", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "callsight.db", dbFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestGraphCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	graphCmd, _, err := cmd.Find([]string{"graph"})
	require.NoError(t, err)

	modeFlag := graphCmd.Flags().Lookup("mode")
	require.NotNil(t, modeFlag)
	assert.Equal(t, "namespace_match", modeFlag.DefValue)

	outFlag := graphCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "json", outFlag.DefValue)

	require.NotNil(t, graphCmd.Flags().Lookup("no-cache"))
}

func TestDiffCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	diffCmd, _, err := cmd.Find([]string{"diff"})
	require.NoError(t, err)

	require.NotNil(t, diffCmd.Flags().Lookup("mode"))
	tlFlag := diffCmd.Flags().Lookup("time-limit")
	require.NotNil(t, tlFlag)
	assert.Equal(t, "0", tlFlag.DefValue)

	nhFlag := diffCmd.Flags().Lookup("neighborhoods")
	require.NotNil(t, nhFlag)
	assert.Equal(t, "-1", nhFlag.DefValue)
}

func TestListCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	listCmd, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)

	require.NotNil(t, listCmd.Flags().Lookup("where"))
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	addrFlag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, addrFlag)
	assert.Equal(t, ":8000", addrFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"list", "--format", "xml", "--db", t.TempDir() + "/test.db"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
