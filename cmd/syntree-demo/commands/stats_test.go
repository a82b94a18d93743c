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

func TestRunStatsWritesTableAndHistogram(t *testing.T) {
	cfgFile = ""

	path := writeTempGoFile(t, "package main\n\nfunc main() {\n\tx := 1\n\t_ = x\n}\n")
	histogram := filepath.Join(t.TempDir(), "depth.html")

	var buf bytes.Buffer

	err := runStats(context.Background(), path, histogram, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "pointer nodes")

	info, statErr := os.Stat(histogram)
	require.NoError(t, statErr)
	assert.Positive(t, info.Size())
}

func TestRecordDepthTracksMaxAndPerDepthCounts(t *testing.T) {
	t.Parallel()

	st := treeStats{DepthCounts: make(map[int]int)}
	recordDepth(&st, 0)
	recordDepth(&st, 2)
	recordDepth(&st, 1)

	assert.Equal(t, 2, st.MaxDepth)
	assert.Equal(t, 1, st.DepthCounts[0])
	assert.Equal(t, 1, st.DepthCounts[1])
	assert.Equal(t, 1, st.DepthCounts[2])
}
