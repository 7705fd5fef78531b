// Package sync orchestrates the upload pipeline: read local
// sessions, filter for eligibility, sanitize, upload in
// batches, and record per-project state.
package sync

import (
	"context"
	"fmt"
	"log"
	"sort"
	gosync "sync"
	"time"

	"github.com/devark-ai/devark/internal/api"
	"github.com/devark-ai/devark/internal/parser"
	"github.com/devark-ai/devark/internal/state"
	"github.com/devark-ai/devark/internal/transform"
)

// minEligibleDuration is the active-duration floor for upload.
// Shorter sessions are counted as skipped.
const minEligibleDuration = 240 * time.Second

// Error codes surfaced in SyncResult.Errors and sync state.
const (
	ErrNotAuthenticated = "NOT_AUTHENTICATED"
	ErrTokenInvalid     = "TOKEN_INVALID"
	ErrUploadFailed     = "UPLOAD_FAILED"
)

// SessionReader is the source of local sessions. The JSONL
// transcript reader implements it; additional tools slot in as
// further readers.
type SessionReader interface {
	// Name identifies the reader's tool tag.
	Name() string
	// ReadSessions returns parsed sessions plus recoverable
	// per-file errors.
	ReadSessions(opts parser.ReadOptions) parser.ReadResult
}

// Options controls a single sync run.
type Options struct {
	// ProjectPath restricts the run to one project (prefix
	// match, case-insensitive).
	ProjectPath string
	// Force ignores stored cutoffs and re-reads everything.
	Force bool
	// Since overrides the stored cutoff when non-zero.
	Since time.Time
	// DryRun stops after the eligibility filter: nothing is
	// uploaded and no state is written.
	DryRun bool
	// OnProgress receives (uploaded, total) after each batch.
	OnProgress api.ProgressFunc
}

// Result summarizes a sync run.
type Result struct {
	Success          bool
	SessionsUploaded int
	SessionsFailed   int
	SessionsSkipped  int
	ProjectsSynced   int
	Errors           []string
	UploadResult     *api.UploadResult
}

// Status is a read-only snapshot of local vs. uploaded work.
type Status struct {
	LocalSessions  int
	SyncedSessions int
	PendingUploads int
	LastSynced     time.Time
}

// Engine wires the readers, the API client, and the state
// store together. Runs are serialized; the state file itself is
// last-write-wins.
type Engine struct {
	client  *api.Client
	store   *state.Store
	readers []SessionReader

	mu gosync.Mutex
}

// NewEngine returns an engine over the given readers.
func NewEngine(
	client *api.Client,
	store *state.Store,
	readers ...SessionReader,
) *Engine {
	return &Engine{client: client, store: store, readers: readers}
}

// Sync runs the full pipeline once. The auth gate is evaluated
// before any disk or further network work.
func (e *Engine) Sync(ctx context.Context, opts Options) *Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client.Token() == "" {
		return &Result{Errors: []string{ErrNotAuthenticated}}
	}
	if valid, _ := e.client.VerifyToken(ctx); !valid {
		return &Result{Errors: []string{ErrTokenInvalid}}
	}

	sessions, readErrs := e.readAll(opts)

	var eligible []*parser.SessionData
	skipped := 0
	for _, sess := range sessions {
		if time.Duration(sess.DurationSeconds)*time.Second >=
			minEligibleDuration {
			eligible = append(eligible, sess)
		} else {
			skipped++
		}
	}

	result := &Result{
		Success:         true,
		SessionsSkipped: skipped,
		SessionsFailed:  len(readErrs),
	}
	for _, re := range readErrs {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: %s", re.File, re.Message))
	}

	if opts.DryRun {
		result.SessionsUploaded = len(eligible)
		return result
	}
	if len(eligible) == 0 {
		return result
	}

	sanitized := make([]transform.SanitizedSession, len(eligible))
	for i, sess := range eligible {
		sanitized[i] = transform.ToSanitized(sess)
	}

	uploadResult, err := e.client.UploadSessions(
		ctx, sanitized, opts.OnProgress,
	)
	if err != nil {
		if recordErr := e.store.RecordError(
			err.Error(), ErrUploadFailed,
		); recordErr != nil {
			log.Printf("recording sync error: %v", recordErr)
		}
		result.Success = false
		result.SessionsFailed += len(eligible)
		result.Errors = append(result.Errors, ErrUploadFailed)
		return result
	}

	result.UploadResult = uploadResult
	result.Success = uploadResult.Success
	result.SessionsUploaded = len(eligible)
	result.ProjectsSynced = e.recordProjects(eligible)
	return result
}

// readAll gathers sessions from every reader, applying the
// per-reader cutoff rules.
func (e *Engine) readAll(
	opts Options,
) ([]*parser.SessionData, []parser.ReadError) {
	var sessions []*parser.SessionData
	var readErrs []parser.ReadError

	for _, reader := range e.readers {
		result := reader.ReadSessions(parser.ReadOptions{
			ProjectPath: opts.ProjectPath,
			Since:       e.cutoffFor(opts),
		})
		sessions = append(sessions, result.Sessions...)
		readErrs = append(readErrs, result.Errors...)
	}
	return sessions, readErrs
}

// cutoffFor resolves the effective since cutoff: force beats
// everything, an explicit since beats stored state,
// project-scoped runs use the stored per-project time, and
// unscoped runs use the global watermark so a repeat run with
// no new files uploads nothing.
func (e *Engine) cutoffFor(opts Options) time.Time {
	if opts.Force {
		return time.Time{}
	}
	if !opts.Since.IsZero() {
		return opts.Since
	}
	if opts.ProjectPath != "" {
		return e.store.GetLastSyncTime(opts.ProjectPath)
	}
	return e.store.GetGlobalLastSync()
}

// recordProjects records a successful upload per distinct
// project path and returns how many projects were touched.
func (e *Engine) recordProjects(
	eligible []*parser.SessionData,
) int {
	byProject := make(map[string][]*parser.SessionData)
	for _, sess := range eligible {
		byProject[sess.ProjectPath] = append(
			byProject[sess.ProjectPath], sess,
		)
	}

	paths := make([]string, 0, len(byProject))
	for path := range byProject {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		group := byProject[path]
		last := group[len(group)-1]
		if err := e.store.RecordSync(
			path, len(group), last.ID,
		); err != nil {
			log.Printf("recording sync for %s: %v", path, err)
		}
	}
	return len(byProject)
}

// GetSyncStatus reports local and pending work. It never
// fails: an unreadable root degrades to zeros for that reader.
func (e *Engine) GetSyncStatus() Status {
	doc := e.store.GetState()
	status := Status{
		SyncedSessions: doc.TotalSessionsUploaded,
		LastSynced:     e.store.GetGlobalLastSync(),
	}

	for _, reader := range e.readers {
		result := reader.ReadSessions(parser.ReadOptions{})
		for _, sess := range result.Sessions {
			if time.Duration(sess.DurationSeconds)*time.Second <
				minEligibleDuration {
				continue
			}
			status.LocalSessions++
			if status.LastSynced.IsZero() ||
				sess.Timestamp.After(status.LastSynced) {
				status.PendingUploads++
			}
		}
	}
	return status
}
