package api

import (
	"context"
	"sync"
	"time"
)

// csrfTTL bounds how long a fetched CSRF token is reused before a fresh
// one is obtained.
const csrfTTL = 5 * time.Minute

// csrfCookieName is the session cookie the server mirrors the token into.
const csrfCookieName = "csrftoken"

// csrfSource resolves the CSRF token required by mutating calls:
// cache first, session cookie second, network fetch last. The mutex is
// held across the fetch so concurrent callers share a single retrieval.
type csrfSource struct {
	mu        sync.Mutex
	token     string
	fetchedAt time.Time

	now    func() time.Time
	cookie func() string
	fetch  func(ctx context.Context) (string, error)
}

// Token returns a CSRF token valid for the current session.
func (s *csrfSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Sub(s.fetchedAt) < csrfTTL {
		return s.token, nil
	}

	if c := s.cookie(); c != "" {
		s.token = c
		s.fetchedAt = s.now()
		return s.token, nil
	}

	token, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	s.fetchedAt = s.now()
	return s.token, nil
}

// Invalidate drops the cached token so the next mutating call re-resolves
// it. Called after a 403 that indicates token rotation.
func (s *csrfSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.fetchedAt = time.Time{}
}
