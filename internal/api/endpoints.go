package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AuthSession is the result of starting a browser login.
type AuthSession struct {
	// AuthURL is the page the user opens to approve the login.
	AuthURL string
	// ID is the opaque identifier used to poll or stream
	// completion.
	ID string
}

type authSessionResponse struct {
	AuthURL   string `json:"authUrl"`
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}

// CreateAuthSession starts a login session on the server. The
// server names the opaque identifier either "token" or
// "sessionId" depending on version; both are accepted.
func (c *Client) CreateAuthSession(
	ctx context.Context,
) (*AuthSession, error) {
	body := map[string]string{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	var resp authSessionResponse
	err := c.doJSON(
		ctx, http.MethodPost, "/api/auth/cli/session", body, &resp,
	)
	if err != nil {
		return nil, fmt.Errorf("create auth session: %w", err)
	}

	id := resp.Token
	if id == "" {
		id = resp.SessionID
	}
	if id == "" {
		return nil, errors.New(
			"create auth session: response has no token or sessionId",
		)
	}
	if resp.AuthURL == "" {
		return nil, errors.New(
			"create auth session: response has no authUrl",
		)
	}

	authURL := resp.AuthURL
	if strings.Contains(authURL, "?") {
		authURL += "&source=ide_extension"
	} else {
		authURL += "?source=ide_extension"
	}

	return &AuthSession{AuthURL: authURL, ID: id}, nil
}

// OpenAuthStream opens the server-sent event stream that
// reports login completion for the given session id. The caller
// must close the returned body; the stream lives until the
// context is canceled.
func (c *Client) OpenAuthStream(
	ctx context.Context, id string,
) (io.ReadCloser, error) {
	path := "/api/auth/cli/stream/" + url.PathEscape(id)
	body, err := c.stream(ctx, path, "text/event-stream")
	if err != nil {
		return nil, fmt.Errorf("open auth stream: %w", err)
	}
	return body, nil
}

// AuthCompletion is the result of polling a login session.
type AuthCompletion struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

// CheckAuthCompletion polls whether the browser login finished.
// A 404 means the session is still pending, not an error.
func (c *Client) CheckAuthCompletion(
	ctx context.Context, id string,
) (*AuthCompletion, error) {
	path := "/api/auth/cli/complete?token=" + url.QueryEscape(id)
	var resp AuthCompletion
	err := c.doJSON(ctx, http.MethodGet, path, nil, &resp)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) &&
			statusErr.Status == http.StatusNotFound {
			return &AuthCompletion{Success: false}, nil
		}
		return nil, fmt.Errorf("check auth completion: %w", err)
	}
	return &resp, nil
}

// User identifies the authenticated account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type verifyResponse struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user"`
}

// VerifyToken checks the current bearer token against the
// server. Any failure, network or HTTP, means invalid.
func (c *Client) VerifyToken(ctx context.Context) (bool, *User) {
	var resp verifyResponse
	err := c.doJSON(
		ctx, http.MethodGet, "/api/auth/cli/verify", nil, &resp,
	)
	if err != nil {
		return false, nil
	}
	return resp.Valid, resp.User
}

// Streak is the user's current daily-coding streak.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// GetStreak fetches the user's streak.
func (c *Client) GetStreak(ctx context.Context) (*Streak, error) {
	var resp Streak
	err := c.doJSON(ctx, http.MethodGet, "/api/streak", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return &resp, nil
}

// RecentSession is a server-side session summary.
type RecentSession struct {
	ID        string `json:"id"`
	Tool      string `json:"tool"`
	Timestamp string `json:"timestamp"`
	Duration  int    `json:"durationSeconds"`
	Project   string `json:"projectName"`
}

// GetRecentSessions fetches the user's recently uploaded
// sessions. Older servers return a bare array, newer ones wrap
// it in {sessions: [...]}.
func (c *Client) GetRecentSessions(
	ctx context.Context, limit int,
) ([]RecentSession, error) {
	path := fmt.Sprintf("/api/sessions/recent?limit=%d", limit)

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, fmt.Errorf("get recent sessions: %w", err)
	}

	var bare []RecentSession
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Sessions []RecentSession `json:"sessions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("get recent sessions: %w", err)
	}
	return wrapped.Sessions, nil
}
