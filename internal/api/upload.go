package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/devark-ai/devark/internal/transform"
)

// batchTargetBytes is the serialized size a batch aims to stay
// under. A single session larger than this is sent alone.
const batchTargetBytes = 400 * 1024

// ProgressFunc reports upload progress after each batch as
// (sessions uploaded so far, total sessions).
type ProgressFunc func(current, total int)

// PointsEarned breaks down points granted by an upload.
type PointsEarned struct {
	Streak int `json:"streak"`
	Share  int `json:"share"`
	Volume int `json:"volume"`
	Total  int `json:"total"`
}

// UploadResult is the merged outcome of an upload run.
type UploadResult struct {
	Success           bool
	SessionsProcessed int
	Created           int
	Duplicates        int
	Streak            *Streak
	PointsEarned      *PointsEarned
	AnalysisPreview   string
	BatchID           string
}

type batchPayload struct {
	Sessions      json.RawMessage `json:"sessions"`
	Checksum      string          `json:"checksum"`
	TotalSessions int             `json:"totalSessions"`
	BatchNumber   int             `json:"batchNumber"`
	TotalBatches  int             `json:"totalBatches"`
}

type batchResponse struct {
	Success         bool          `json:"success"`
	Created         int           `json:"created"`
	Duplicates      int           `json:"duplicates"`
	Streak          *Streak       `json:"streak"`
	PointsEarned    *PointsEarned `json:"pointsEarned"`
	AnalysisPreview string        `json:"analysisPreview"`
	BatchID         string        `json:"batchId"`
}

// batch is a group of pre-serialized sessions. Keeping the
// per-session JSON means the checksum is computed over exactly
// the bytes that go on the wire.
type batch struct {
	items [][]byte
	size  int
	count int
}

func (b *batch) sessionsJSON() []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range b.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// splitBatches groups sessions so each batch's serialized size
// stays at or below the target. Order is preserved.
func splitBatches(
	sessions []transform.SanitizedSession,
) ([]*batch, error) {
	var batches []*batch
	current := &batch{}

	for i := range sessions {
		data, err := json.Marshal(&sessions[i])
		if err != nil {
			return nil, fmt.Errorf(
				"encode session %s: %w", sessions[i].ID, err,
			)
		}
		if current.count > 0 &&
			current.size+len(data) > batchTargetBytes {
			batches = append(batches, current)
			current = &batch{}
		}
		current.items = append(current.items, data)
		current.size += len(data)
		current.count++
	}
	if current.count > 0 {
		batches = append(batches, current)
	}
	return batches, nil
}

func checksumSessions(sessionsJSON []byte) string {
	sum := sha256.Sum256(sessionsJSON)
	return hex.EncodeToString(sum[:])
}

// UploadSessions uploads sessions in size-bounded batches.
// Batches are posted strictly in order; progress fires after
// each successful batch and the final call has current==total.
// Empty input succeeds without touching the network.
func (c *Client) UploadSessions(
	ctx context.Context,
	sessions []transform.SanitizedSession,
	onProgress ProgressFunc,
) (*UploadResult, error) {
	if len(sessions) == 0 {
		return &UploadResult{
			Success:           true,
			SessionsProcessed: 0,
		}, nil
	}

	batches, err := splitBatches(sessions)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{
		Success:           true,
		SessionsProcessed: len(sessions),
	}
	uploaded := 0

	for i, b := range batches {
		sessionsJSON := b.sessionsJSON()
		payload := batchPayload{
			Sessions:      sessionsJSON,
			Checksum:      checksumSessions(sessionsJSON),
			TotalSessions: len(sessions),
			BatchNumber:   i + 1,
			TotalBatches:  len(batches),
		}

		var resp batchResponse
		err := c.doJSON(
			ctx, http.MethodPost, "/cli/sessions", &payload, &resp,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"upload batch %d/%d: %w", i+1, len(batches), err,
			)
		}

		mergeBatch(result, &resp, i == 0)

		uploaded += b.count
		if onProgress != nil {
			onProgress(uploaded, len(sessions))
		}
	}

	return result, nil
}

// mergeBatch folds one batch response into the run result.
// created/duplicates sum; streak tracks the latest batch;
// analysisPreview keeps the first; points max the streak/share
// components and sum volume/total.
func mergeBatch(result *UploadResult, resp *batchResponse, first bool) {
	result.Success = result.Success && resp.Success
	result.Created += resp.Created
	result.Duplicates += resp.Duplicates

	if resp.Streak != nil {
		result.Streak = resp.Streak
	}
	if first {
		result.AnalysisPreview = resp.AnalysisPreview
	}
	if resp.BatchID != "" {
		result.BatchID = resp.BatchID
	}
	if resp.PointsEarned != nil {
		if result.PointsEarned == nil {
			pts := *resp.PointsEarned
			result.PointsEarned = &pts
		} else {
			p := result.PointsEarned
			if resp.PointsEarned.Streak > p.Streak {
				p.Streak = resp.PointsEarned.Streak
			}
			if resp.PointsEarned.Share > p.Share {
				p.Share = resp.PointsEarned.Share
			}
			p.Volume += resp.PointsEarned.Volume
			p.Total += resp.PointsEarned.Total
		}
	}
}
