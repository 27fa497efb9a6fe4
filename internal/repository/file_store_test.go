package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"year-progress-bot/internal/domain"
)

func TestNewFileStore_EmptyPath(t *testing.T) {
	_, err := NewFileStore(" ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}

func TestFileStore_LoadMissingFileIsEmptyState(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	st, err := fs.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, st.LastSent)
	require.NotNil(t, st.History)
	require.NotNil(t, st.SilenceDays)
}

func TestFileStore_SaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(filepath.Join(dir, "state.json"))
	require.NoError(t, err)

	st := domain.NewState()
	st.LastSent = "2026-10-14"
	st.SetSilentDays("2026-10", []int{2, 20})
	st.Remember("year_late", "quote")
	require.NoError(t, fs.Save(context.Background(), st))

	got, err := fs.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, st, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"last_sent":"2026-01-01","feels":["old"]}`), 0o600))
	fs, err := NewFileStore(path)
	require.NoError(t, err)

	st := domain.NewState()
	st.LastSent = "2026-01-02"
	require.NoError(t, fs.Save(context.Background(), st))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"last_sent":"2026-01-02"}`, string(raw))
}

func TestFileStore_LoadReadsOriginalLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	raw := `{"last_sent": "2026-03-01", "silence_days": {"2026-03": [7]}, "year_early": ["a"], "weather_err": ["b"]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	fs, err := NewFileStore(path)
	require.NoError(t, err)

	st, err := fs.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2026-03-01", st.LastSent)
	require.Equal(t, []string{"a"}, st.Recent("year_early"))
	require.Equal(t, []string{"b"}, st.Recent("weather_err"))
}

func TestFileStore_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`not-json`), 0o600))
	fs, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = fs.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode state file")
}

func TestFileStore_SaveNil(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	require.Error(t, fs.Save(context.Background(), nil))
}

func TestFileStore_SaveMissingDirectory(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "missing", "state.json"))
	require.NoError(t, err)
	err = fs.Save(context.Background(), domain.NewState())
	require.Error(t, err)
	require.Contains(t, err.Error(), "create temp state file")
}
