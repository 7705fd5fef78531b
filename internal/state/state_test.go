package state

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statePath = "/home/dev/.devark/sync-state.json"

func newTestStore(fs afero.Fs, now time.Time) *Store {
	s := NewStore(fs, statePath)
	s.now = func() time.Time { return now }
	return s
}

func TestMissingFileIsEmptyState(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), statePath)

	doc := s.GetState()
	assert.Empty(t, doc.Projects)
	assert.Zero(t, doc.TotalSessionsUploaded)
	assert.True(t, s.GetGlobalLastSync().IsZero())
	assert.True(t, s.GetLastSyncTime("/p").IsZero())
}

func TestCorruptFileIsEmptyState(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(
		fs, statePath, []byte("{not json"), 0o644,
	))

	doc := NewStore(fs, statePath).GetState()
	assert.Empty(t, doc.Projects)
	assert.Zero(t, doc.TotalSessionsUploaded)
}

func TestRecordSync(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	fs := afero.NewMemMapFs()
	s := newTestStore(fs, now)

	require.NoError(t, s.RecordSync("/p/one", 3, "sess-3"))
	require.NoError(t, s.RecordSync("/p/two", 2, "sess-5"))
	require.NoError(t, s.RecordSync("/p/one", 1, "sess-6"))

	doc := s.GetState()
	assert.Equal(t, 6, doc.TotalSessionsUploaded)
	require.Len(t, doc.Projects, 2)

	one := doc.Projects["/p/one"]
	assert.Equal(t, "/p/one", one.ProjectPath)
	assert.Equal(t, 4, one.SessionsUploaded)
	assert.Equal(t, "sess-6", one.LastSessionID)

	assert.Equal(t, now, s.GetLastSyncTime("/p/one"))
	assert.Equal(t, now, s.GetGlobalLastSync())
}

func TestRecordSyncKeepsLastSessionIDWhenEmpty(t *testing.T) {
	s := newTestStore(afero.NewMemMapFs(), time.Now())
	require.NoError(t, s.RecordSync("/p", 1, "sess-1"))
	require.NoError(t, s.RecordSync("/p", 1, ""))

	proj, ok := s.GetProjectState("/p")
	require.True(t, ok)
	assert.Equal(t, "sess-1", proj.LastSessionID)
	assert.Equal(t, 2, proj.SessionsUploaded)
}

func TestRecordError(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestStore(afero.NewMemMapFs(), now)

	require.NoError(t, s.RecordError("upload failed", "UPLOAD_FAILED"))
	require.NoError(t, s.RecordError("token expired", "TOKEN_INVALID"))

	doc := s.GetState()
	require.NotNil(t, doc.LastError)
	assert.Equal(t, "token expired", doc.LastError.Message)
	assert.Equal(t, "TOKEN_INVALID", doc.LastError.Code)
	assert.Equal(t, "2025-03-10T12:00:00Z", doc.LastError.Time)
}

func TestSetLastSyncTime(t *testing.T) {
	s := newTestStore(afero.NewMemMapFs(), time.Now())
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SetLastSyncTime("/p", cutoff))
	assert.Equal(t, cutoff, s.GetLastSyncTime("/p"))

	// Counters are untouched.
	proj, ok := s.GetProjectState("/p")
	require.True(t, ok)
	assert.Zero(t, proj.SessionsUploaded)
}

func TestClear(t *testing.T) {
	s := newTestStore(afero.NewMemMapFs(), time.Now())
	require.NoError(t, s.RecordSync("/p", 5, "sess-5"))
	require.NoError(t, s.Clear())

	doc := s.GetState()
	assert.Empty(t, doc.Projects)
	assert.Zero(t, doc.TotalSessionsUploaded)
	assert.True(t, s.GetGlobalLastSync().IsZero())
}

func TestStateRoundTripsThroughDisk(t *testing.T) {
	fs := afero.NewMemMapFs()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t,
		newTestStore(fs, now).RecordSync("/p", 2, "sess-2"),
	)

	// A fresh store over the same file sees the same state.
	reopened := NewStore(fs, statePath)
	doc := reopened.GetState()
	assert.Equal(t, 2, doc.TotalSessionsUploaded)
	assert.Equal(t, "2025-03-10T12:00:00Z", doc.GlobalLastSync)
}
