package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_DisabledWithoutDebug(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(Config{Dir: dir})
	require.NoError(t, err)
	defer l.Close()

	assert.Empty(t, l.Path())
	l.Info("dropped")
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "no log dir when debug is off")
}

func TestNew_WritesJSONWithDebug(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(Config{Debug: true, Level: "info", Dir: dir})
	require.NoError(t, err)

	l.Debug("below level")
	l.Info("frame submitted", zap.Uint64("frame", 7))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"frame submitted"`)
	assert.Contains(t, string(data), `"frame":7`)
	assert.NotContains(t, string(data), "below level")
}

func TestRotate_OversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, make([]byte, MaxLogSize+1), 0o644))

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, rotate(path, now))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "gridshooter.20260102-030405.log"))
	assert.NoError(t, err)
}

func TestRotate_SmallFileKept(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, rotate(path, time.Now()))
	_, err := os.Stat(path)
	assert.NoError(t, err)

	// Missing file is not an error
	require.NoError(t, rotate(filepath.Join(dir, "absent.log"), time.Now()))
}
