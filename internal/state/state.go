// Package state persists sync bookkeeping: per-project last
// sync times, upload counters, and the last error.
package state

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/devark-ai/devark/internal/timeutil"
)

// FileName is the sync-state file under the data dir.
const FileName = "sync-state.json"

// ProjectState is one project's sync bookkeeping.
type ProjectState struct {
	ProjectPath      string `json:"projectPath"`
	LastSyncTime     string `json:"lastSyncTime"`
	LastSessionID    string `json:"lastSessionId,omitempty"`
	SessionsUploaded int    `json:"sessionsUploaded"`
}

// SyncError records the most recent sync failure.
type SyncError struct {
	Time    string `json:"time"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Document is the whole persisted state. It is read and written
// as a unit; concurrent writers are last-write-wins.
type Document struct {
	GlobalLastSync        string                  `json:"globalLastSync,omitempty"`
	Projects              map[string]ProjectState `json:"projects"`
	TotalSessionsUploaded int                     `json:"totalSessionsUploaded"`
	LastError             *SyncError              `json:"lastError,omitempty"`
}

func emptyDocument() Document {
	return Document{Projects: map[string]ProjectState{}}
}

// Store reads and writes the sync-state file.
type Store struct {
	fs   afero.Fs
	path string

	mu  sync.Mutex
	now func() time.Time
}

// NewStore returns a store over the given file path,
// conventionally <data dir>/sync-state.json.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path, now: time.Now}
}

// load returns the current document. A missing file or corrupt
// JSON yields an empty document, never an error.
func (s *Store) load() Document {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return emptyDocument()
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return emptyDocument()
	}
	if doc.Projects == nil {
		doc.Projects = map[string]ProjectState{}
	}
	return doc
}

func (s *Store) save(doc Document) error {
	if err := s.fs.MkdirAll(
		filepath.Dir(s.path), 0o755,
	); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("write sync state: %w", err)
	}
	return nil
}

// GetState returns the whole document.
func (s *Store) GetState() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// GetLastSyncTime returns a project's last sync time, or a zero
// time when the project has never synced.
func (s *Store) GetLastSyncTime(projectPath string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	proj, ok := s.load().Projects[projectPath]
	if !ok {
		return time.Time{}
	}
	return timeutil.Parse(proj.LastSyncTime)
}

// SetLastSyncTime overwrites a project's last sync time without
// touching its counters.
func (s *Store) SetLastSyncTime(
	projectPath string, t time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	proj := doc.Projects[projectPath]
	proj.ProjectPath = projectPath
	proj.LastSyncTime = timeutil.Format(t)
	doc.Projects[projectPath] = proj
	return s.save(doc)
}

// GetGlobalLastSync returns the time of the most recent
// successful sync across all projects, or a zero time.
func (s *Store) GetGlobalLastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return timeutil.Parse(s.load().GlobalLastSync)
}

// GetProjectState returns a project's bookkeeping.
func (s *Store) GetProjectState(
	projectPath string,
) (ProjectState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proj, ok := s.load().Projects[projectPath]
	return proj, ok
}

/// RecordSync records a successful upload for one project: its
// last-sync time moves to now, counters increment, and the
// global markers advance.
func (s *Store) RecordSync(
	projectPath string, sessionsUploaded int, lastSessionID string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := timeutil.Format(s.now().UTC())
	doc := s.load()

	proj := doc.Projects[projectPath]
	proj.ProjectPath = projectPath
	proj.LastSyncTime = now
	proj.SessionsUploaded += sessionsUploaded
	if lastSessionID != "" {
		proj.LastSessionID = lastSessionID
	}
	doc.Projects[projectPath] = proj

	doc.GlobalLastSync = now
	doc.TotalSessionsUploaded += sessionsUploaded
	return s.save(doc)
}

// RecordError overwrites the last-error slot.
func (s *Store) RecordError(message, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	doc.LastError = &SyncError{
		Time:    timeutil.Format(s.now().UTC()),
		Message: message,
		Code:    code,
	}
	return s.save(doc)
}

// Clear resets the state to an empty document.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(emptyDocument())
}
