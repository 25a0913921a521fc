package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/slamsim/config"
)

// TestOutputManagerDisabled verifies an empty dir disables output without errors.
func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	assert.Nil(t, om)
	assert.NoError(t, om.WriteCycle(CycleStats{}))
	assert.NoError(t, om.Close())
	assert.Equal(t, "", om.Dir())
}

// TestOutputManagerHeaderOnce verifies the CSV header is written with the first record only.
func TestOutputManagerHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		require.NoError(t, om.WriteCycle(CycleStats{RunID: "r1", Cycle: i, Command: "d", Legal: true, Error: float64(i)}))
	}
	require.NoError(t, om.WriteSummary(WindowStats{RunID: "r1", WindowEnd: 3, Cycles: 3}))
	require.NoError(t, om.WriteBookmark(Bookmark{RunID: "r1", Type: BookmarkConverged, Cycle: 3}))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "cycles.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "run_id,cycle,command,legal"))
	assert.Equal(t, 1, strings.Count(string(data), "run_id"))

	summary, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "error_p50")
	assert.NotContains(t, string(summary), "window_start")
}

// TestOutputManagerWriteConfig verifies the config snapshot is written.
func TestOutputManagerWriteConfig(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	require.NoError(t, err)
	defer om.Close()

	require.NoError(t, om.WriteConfig(cfg))
	back, err := config.Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, cfg.Filter, back.Filter)
}
