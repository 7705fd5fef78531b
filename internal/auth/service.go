package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devark-ai/devark/internal/api"
)

// loginTimeout bounds the whole browser login flow.
const loginTimeout = 5 * time.Minute

// ErrLoginTimeout is returned when the user does not complete
// the browser login in time.
var ErrLoginTimeout = errors.New("login timed out")

// Service drives the browser login flow and keeps the API
// client's bearer token in step with the token store.
type Service struct {
	client *api.Client
	store  TokenStore
}

// NewService returns a service over the given client and store.
// A previously stored token is loaded onto the client.
func NewService(client *api.Client, store TokenStore) *Service {
	if token, err := store.Get(); err == nil && token != "" {
		client.SetToken(token)
	}
	return &Service{client: client, store: store}
}

// IsAuthenticated reports whether a stored token exists and the
// server still accepts it.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	if !s.store.Has() {
		return false
	}
	valid, _ := s.client.VerifyToken(ctx)
	return valid
}

// StartLogin creates a login session on the server and returns
// the URL the user must open. Completion is awaited separately
// with WaitForCompletion.
func (s *Service) StartLogin(
	ctx context.Context,
) (*api.AuthSession, error) {
	return s.client.CreateAuthSession(ctx)
}

// streamEvent is one data frame on the auth event stream.
type streamEvent struct {
	Status  string `json:"status"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// WaitForCompletion blocks until the browser login for the
// given session id finishes. On success the token is persisted
// and set on the API client.
func (s *Service) WaitForCompletion(
	ctx context.Context, sessionID string,
) error {
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	stream, err := s.client.OpenAuthStream(ctx, sessionID)
	if err != nil {
		return err
	}
	defer stream.Close()

	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Heartbeat comments and frame separators.
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal(
			[]byte(strings.TrimSpace(data)), &event,
		); err != nil {
			continue
		}

		switch event.Status {
		case "pending":
			continue
		case "success":
			return s.completeLogin(event.Token)
		case "error", "expired", "timeout":
			msg := event.Message
			if msg == "" {
				msg = event.Status
			}
			return fmt.Errorf("login failed: %s", msg)
		}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrLoginTimeout
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read auth stream: %w", err)
	}
	return errors.New("auth stream closed before completion")
}

func (s *Service) completeLogin(token string) error {
	if token == "" {
		return errors.New("login succeeded but no token was sent")
	}
	if err := s.store.Store(token); err != nil {
		return err
	}
	s.client.SetToken(token)
	return nil
}

// Logout clears the token from both storage and the client.
func (s *Service) Logout() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.client.SetToken("")
	return nil
}

// GetCurrentUser returns the authenticated user, or nil when
// the token is missing or invalid.
func (s *Service) GetCurrentUser(ctx context.Context) *api.User {
	if !s.store.Has() {
		return nil
	}
	valid, user := s.client.VerifyToken(ctx)
	if !valid {
		return nil
	}
	return user
}
