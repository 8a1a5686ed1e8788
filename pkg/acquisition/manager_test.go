package acquisition

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labrec/labrec/pkg/storage"
)

func newTestManager(t *testing.T, cfg ManagerConfig) *Manager {
	t.Helper()
	if cfg.DataDir == "" {
		cfg.DataDir = t.TempDir()
	}
	cfg.Logger = testLogger()
	m, err := NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestNewManager_RequiresDataDir(t *testing.T) {
	_, err := NewManager(ManagerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}

func TestManager_NewAcquisition(t *testing.T) {
	dataDir := t.TempDir()
	m := newTestManager(t, ManagerConfig{DataDir: dataDir, SaveOnEdit: true})

	record, err := m.NewAcquisition("ramsey")
	require.NoError(t, err)

	assert.Same(t, record, m.Current())
	assert.Equal(t, "ramsey", record.ExperimentName())
	assert.True(t, strings.HasPrefix(record.Filepath(), filepath.Join(dataDir, "ramsey")))
	assert.True(t, strings.HasSuffix(record.Filepath(), ".json"))
	assert.Contains(t, filepath.Base(record.Filepath()), "__ramsey")

	_, err = os.Stat(record.Filepath())
	assert.NoError(t, err)
}

func TestManager_NewAcquisitionSnapshotsConfigsAndCell(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, filepath.Join(dir, "laser.cfg"), "power = 10")

	m := newTestManager(t, ManagerConfig{SaveOnEdit: true})
	require.NoError(t, m.SetConfigFiles(cfgPath))
	m.SetCell("run()")

	record, err := m.NewAcquisition("ramsey")
	require.NoError(t, err)

	configs, ok := record.Store().Get("configs")
	require.True(t, ok)
	assert.Equal(t, ConfigSet{"laser.cfg": "power = 10"}, configs)

	cell, ok := record.Store().Get("acquisition_cell")
	require.True(t, ok)
	assert.Equal(t, "run()", cell)
}

func TestManager_NewAcquisitionValidatesName(t *testing.T) {
	m := newTestManager(t, ManagerConfig{})

	for _, name := range []string{"", "..", "a/b", "a\\b", "a\x00b"} {
		_, err := m.NewAcquisition(name)
		assert.Error(t, err, "name %q should be rejected", name)
	}
}

func TestManager_UniquePathsAndIndexEntries(t *testing.T) {
	dataDir := t.TempDir()
	m := newTestManager(t, ManagerConfig{DataDir: dataDir, SaveOnEdit: true})

	first, err := m.NewAcquisition("ramsey")
	require.NoError(t, err)
	second, err := m.NewAcquisition("ramsey")
	require.NoError(t, err)

	assert.NotEqual(t, first.Filepath(), second.Filepath())

	entries, err := m.List("ramsey")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.Filepath(), entries[0].Filepath)
	assert.Equal(t, second.Filepath(), entries[1].Filepath)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestManager_ListFiltersByExperiment(t *testing.T) {
	m := newTestManager(t, ManagerConfig{SaveOnEdit: true})

	_, err := m.NewAcquisition("ramsey")
	require.NoError(t, err)
	_, err = m.NewAcquisition("rabi")
	require.NoError(t, err)

	all, err := m.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rabi, err := m.List("rabi")
	require.NoError(t, err)
	require.Len(t, rabi, 1)
	assert.Equal(t, "rabi", rabi[0].Experiment)
}

func TestManager_ListEmptyDataDir(t *testing.T) {
	m := newTestManager(t, ManagerConfig{})

	entries, err := m.List("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestManager_SetConfigFilesRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "one", "setup.cfg"), "x = 1")
	b := writeFile(t, filepath.Join(dir, "two", "setup.cfg"), "x = 2")

	m := newTestManager(t, ManagerConfig{})
	err := m.SetConfigFiles(a, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateConfigName)
}

func TestManager_InvalidManifestFailsAcquisition(t *testing.T) {
	dataDir := t.TempDir()
	writeFile(t, filepath.Join(dataDir, "ramsey", ManifestFileName), `{"operator": "kim"}`)

	m := newTestManager(t, ManagerConfig{DataDir: dataDir})

	_, err := m.NewAcquisition("ramsey")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest")
}

func TestManager_ValidManifestAllowsAcquisition(t *testing.T) {
	dataDir := t.TempDir()
	writeFile(t, filepath.Join(dataDir, "ramsey", ManifestFileName),
		`{"name": "ramsey", "operator": "kim", "tags": ["qubit"]}`)

	m := newTestManager(t, ManagerConfig{DataDir: dataDir, SaveOnEdit: true})

	_, err := m.NewAcquisition("ramsey")
	assert.NoError(t, err)
}

func TestManager_SQLiteBackend(t *testing.T) {
	m := newTestManager(t, ManagerConfig{
		SaveOnEdit: true,
		Open:       storage.OpenSQLite,
		FileExt:    ".db",
	})

	record, err := m.NewAcquisition("ramsey")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(record.Filepath(), ".db"))

	_, err = record.SaveAcquisition(map[string]any{"shots": 1024})
	require.NoError(t, err)
}

func TestManager_EnableAutoFlushValidatesExpression(t *testing.T) {
	m := newTestManager(t, ManagerConfig{})

	err := m.EnableAutoFlush("not a cron expr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")

	require.NoError(t, m.EnableAutoFlush("*/5 * * * *"))
	assert.Error(t, m.EnableAutoFlush("*/5 * * * *"), "second enable is rejected")
}

func TestManager_WatchConfigFilesRefreshesSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, filepath.Join(dir, "laser.cfg"), "power = 10")

	m := newTestManager(t, ManagerConfig{SaveOnEdit: true})
	require.NoError(t, m.SetConfigFiles(cfgPath))
	require.NoError(t, m.WatchConfigFiles())

	writeFile(t, cfgPath, "power = 20")

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.configs["laser.cfg"] == "power = 20"
	}, 5*time.Second, 50*time.Millisecond)
}
