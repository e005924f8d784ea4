package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/mini-network-chat/deploy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "generate", "--out", dir, "--backend", "sqlite", "--format", "yaml", "--name", "mini-network-chat", "--max-duration", "30")
	require.NoError(t, err)
	assert.Contains(t, out, deploy.ManifestYAMLFile)
	assert.Contains(t, out, "STORE_BACKEND=sqlite")

	for _, f := range []string{deploy.ManifestYAMLFile, deploy.DependenciesFile, deploy.DocsFile} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}
}

func TestGenerateCommandRejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "generate", "--out", dir, "--backend", "mongo", "--format", "json", "--name", "mini-network-chat", "--max-duration", "30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}
