package config

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"
)

const (
	BASE_BACKOFF   = 1 * time.Second
	MAX_BACKOFF    = 2 * time.Minute
	BACKOFF_FACTOR = 2.0
	JITTER_FACTOR  = 0.5
)

// retryBaseDelay is the first sleep of DoWithBackoff. Tests shorten it.
var retryBaseDelay = BASE_BACKOFF

type backoffData struct {
	BackoffDelay time.Duration
	NextRetryAt  time.Time
}

// BackoffStore tracks, per feed name, when a failing feed may be fetched again.
type BackoffStore struct {
	mu       sync.RWMutex
	backoffs map[string]backoffData
}

func NewBackoffStore() *BackoffStore {
	return &BackoffStore{
		backoffs: make(map[string]backoffData),
	}
}

func (s *BackoffStore) NextRetryAt(feed string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if backoff, exists := s.backoffs[feed]; exists {
		return backoff.NextRetryAt.UTC(), true
	}
	return time.Time{}, false
}

// ShouldSkip reports whether feed is still inside its backoff window at now.
func (s *BackoffStore) ShouldSkip(feed string, now time.Time) bool {
	next, ok := s.NextRetryAt(feed)
	return ok && now.Before(next)
}

func (s *BackoffStore) UpdateBackoff(feed string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if backoff, exists := s.backoffs[feed]; exists {
		backoff.BackoffDelay = calculateNewBackoffDelay(backoff.BackoffDelay)
		backoff.NextRetryAt = calculateNextRetryAt(backoff.BackoffDelay)
		s.backoffs[feed] = backoff
	} else {
		s.backoffs[feed] = backoffData{
			BackoffDelay: BASE_BACKOFF,
			NextRetryAt:  calculateNextRetryAt(BASE_BACKOFF),
		}
	}
}

func (s *BackoffStore) ResetBackoff(feed string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.backoffs, feed)
}

func calculateNextRetryAt(backoff time.Duration) time.Time {
	return time.Now().Add(withJitter(backoff)).UTC()
}

func withJitter(backoff time.Duration) time.Duration {
	jitter := time.Duration(rand.Float64() * float64(backoff) * JITTER_FACTOR)
	backoff += jitter
	if backoff > MAX_BACKOFF {
		backoff = MAX_BACKOFF
	}
	return backoff
}

func calculateNewBackoffDelay(backoffDelay time.Duration) time.Duration {
	backoffDelay *= BACKOFF_FACTOR
	if backoffDelay >= MAX_BACKOFF {
		backoffDelay = MAX_BACKOFF
	}
	return backoffDelay
}

// DoWithBackoff sends req, retrying up to maxRetries times on transport errors and 5xx
// responses with jittered exponential backoff. Other responses are returned to the caller
// as is, whatever their status.
//
// req must have no body or a body that GetBody can replay.
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	delay := retryBaseDelay
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		default:
			return resp, nil
		}

		if attempt == maxRetries {
			break
		}

		timer := time.NewTimer(withJitter(delay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay = calculateNewBackoffDelay(delay)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
