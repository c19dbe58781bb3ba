package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RejectsInvalidConfig(t *testing.T) {
	cmd := newCmd()
	cmd.SetArgs([]string{"--port", "0"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")

	t.Setenv("IMPOSTOR_CODE_LENGTH", "9")
	cmd = newCmd()
	cmd.SetArgs([]string{})
	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid code length")
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer
	cmd := newCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "impostor v"+releaseVersion+"\n", out.String())
}

func TestWordsCmd_NeedsDatabase(t *testing.T) {
	t.Setenv("IMPOSTOR_DATABASE_URL", "")
	cmd := newCmd()
	cmd.SetArgs([]string{"words", "list"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--database-url")
}
