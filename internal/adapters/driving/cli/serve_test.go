package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_StopsWhenContextCancelled(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(ctx, "serve", "--addr", "127.0.0.1:0")

	require.NoError(t, err)
	assert.Contains(t, out, "clausewise API listening on http://127.0.0.1:")
}

func TestServeCmd_BadAddress(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("serve", "--addr", "256.0.0.1:99999")

	assert.Error(t, err)
}

func TestServeCmd_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")

	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestMCPServeCmd_Flags(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")

	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestWatchCmd_Flags(t *testing.T) {
	assert.NotNil(t, watchCmd.Flags().Lookup("existing"))
	assert.Equal(t, "watch [directory]", watchCmd.Use)
}
