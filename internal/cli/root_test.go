package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "modoboa-installer", rootCmd.Use)

	// Subcommands are registered.
	names := []string{}
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "install")
	assert.Contains(t, names, "compat")
}

func TestRootCommand_Help(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--help"})

	err := rootCmd.Execute()
	assert.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "modoboa-installer")
	assert.Contains(t, output, "install")
	assert.Contains(t, output, "--config")
	assert.Contains(t, output, "--no-color")
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc", "today")
	assert.Contains(t, rootCmd.Version, "1.2.3")
	assert.Contains(t, rootCmd.Version, "abc")
}
