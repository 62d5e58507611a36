// Package sessions provides the typed operations on the Browsergrid
// browser-session resource: create, list, get, release, plus log and
// debug-endpoint retrieval. All methods are thin wrappers that shape
// parameters, call the request engine, and decode typed JSON.
package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	bghttp "github.com/browsergrid/browsergrid-go/http"
	"golang.org/x/sync/errgroup"
)

const basePath = "/api/v1/sessions"

// Service exposes the session resource operations. It is stateless and safe
// for concurrent use.
type Service struct {
	engine *bghttp.Engine
}

// NewService creates a session service backed by the given engine
func NewService(engine *bghttp.Engine) *Service {
	return &Service{engine: engine}
}

// Create starts a new browser session. A nil opts requests the service
// defaults. Note that create is retried on transient failures like any other
// call; set a zero retry budget on the client for strict at-most-once
// creation.
func (s *Service) Create(ctx context.Context, opts *CreateOptions) (*Session, error) {
	req := &bghttp.Request{}
	if opts != nil {
		req.Body = opts
	}

	resp, err := s.engine.Post(ctx, basePath, req)
	if err != nil {
		return nil, err
	}
	return decodeSession(resp.Body)
}

// List returns sessions matching opts, newest first
func (s *Service) List(ctx context.Context, opts *ListOptions) (*SessionList, error) {
	req := &bghttp.Request{}
	if opts != nil {
		if opts.Status != "" {
			req.Query = append(req.Query, bghttp.Q("status", opts.Status))
		}
		if opts.Region != "" {
			req.Query = append(req.Query, bghttp.Q("region", opts.Region))
		}
		if opts.Limit != nil {
			req.Query = append(req.Query, bghttp.Q("limit", *opts.Limit))
		}
		if opts.Offset != nil {
			req.Query = append(req.Query, bghttp.Q("offset", *opts.Offset))
		}
	}

	resp, err := s.engine.Get(ctx, basePath, req)
	if err != nil {
		return nil, err
	}

	var list SessionList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, bghttp.NewError(bghttp.UnknownError, fmt.Sprintf("failed to decode session list: %v", err))
	}
	return &list, nil
}

// Get retrieves one session by ID
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	path, err := itemPath(id)
	if err != nil {
		return nil, err
	}

	resp, err := s.engine.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeSession(resp.Body)
}

// Release terminates a session and frees its browser
func (s *Service) Release(ctx context.Context, id string) error {
	path, err := itemPath(id)
	if err != nil {
		return err
	}

	_, err = s.engine.Delete(ctx, path, nil)
	return err
}

// ReleaseAll releases the given sessions concurrently and returns the first
// failure, if any. Sessions already released are reported by the service as
// SESSION_NOT_FOUND.
func (s *Service) ReleaseAll(ctx context.Context, ids ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return s.Release(gctx, id)
		})
	}
	return g.Wait()
}

// Logs retrieves the captured log entries of a session
func (s *Service) Logs(ctx context.Context, id string) ([]LogEntry, error) {
	path, err := itemPath(id)
	if err != nil {
		return nil, err
	}

	resp, err := s.engine.Get(ctx, path+"/logs", nil)
	if err != nil {
		return nil, err
	}

	var entries []LogEntry
	if err := json.Unmarshal(resp.Body, &entries); err != nil {
		return nil, bghttp.NewError(bghttp.UnknownError, fmt.Sprintf("failed to decode session logs: %v", err))
	}
	return entries, nil
}

// Debug retrieves the live debugging endpoints of a running session
func (s *Service) Debug(ctx context.Context, id string) (*DebugInfo, error) {
	path, err := itemPath(id)
	if err != nil {
		return nil, err
	}

	resp, err := s.engine.Get(ctx, path+"/debug", nil)
	if err != nil {
		return nil, err
	}

	var info DebugInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, bghttp.NewError(bghttp.UnknownError, fmt.Sprintf("failed to decode debug info: %v", err))
	}
	return &info, nil
}

// itemPath builds the percent-encoded item endpoint for a session ID.
// An empty ID is rejected client-side before any network call.
func itemPath(id string) (string, error) {
	if id == "" {
		return "", bghttp.NewError(bghttp.InvalidRequest, "session ID must not be empty")
	}
	return basePath + "/" + url.PathEscape(id), nil
}

func decodeSession(body []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, bghttp.NewError(bghttp.UnknownError, fmt.Sprintf("failed to decode session: %v", err))
	}
	return &session, nil
}
