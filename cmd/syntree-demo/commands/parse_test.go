package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempGoFile(t *testing.T, source string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.go")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o600))

	return path
}

func TestRunParsePrintsTreeString(t *testing.T) {
	cfgFile = ""

	path := writeTempGoFile(t, "package main\n\nfunc main() {}\n")

	var buf bytes.Buffer

	err := runParse(context.Background(), path, &buf)
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())
}

func TestRunParseRejectsMissingFile(t *testing.T) {
	cfgFile = ""

	var buf bytes.Buffer

	err := runParse(context.Background(), filepath.Join(t.TempDir(), "missing.go"), &buf)
	require.Error(t, err)
}
