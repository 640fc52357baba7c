package identity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Identity is the anonymous player identity handed back by the provider.
type Identity struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// Provider performs the actual anonymous sign-in against the identity
// service.
type Provider interface {
	SignInAnonymously(ctx context.Context) (Identity, error)
}

// Service is the sign-in bootstrap. EnsureSignedIn must complete before any
// lobby operation is attempted; after the first success it returns the
// cached identity. Failures propagate to the caller without retry.
type Service struct {
	provider Provider
	log      *zap.Logger

	group singleflight.Group

	mu     sync.Mutex
	cached *Identity
}

func NewService(p Provider, log *zap.Logger) *Service {
	return &Service{provider: p, log: log}
}

// EnsureSignedIn signs in anonymously, or returns the cached identity if a
// previous call already succeeded. Concurrent callers share one in-flight
// sign-in attempt rather than issuing duplicates.
func (s *Service) EnsureSignedIn(ctx context.Context) (Identity, error) {
	s.mu.Lock()
	if s.cached != nil {
		id := *s.cached
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("sign-in", func() (any, error) {
		// Re-check under the flight: a caller that lost the race to a
		// completed sign-in must not start another one.
		s.mu.Lock()
		if s.cached != nil {
			id := *s.cached
			s.mu.Unlock()
			return id, nil
		}
		s.mu.Unlock()

		id, err := s.provider.SignInAnonymously(ctx)
		if err != nil {
			return Identity{}, err
		}

		s.mu.Lock()
		s.cached = &id
		s.mu.Unlock()

		s.log.Info("signed in",
			zap.String("player_id", id.ID),
			zap.String("username", id.Username))
		return id, nil
	})
	if err != nil {
		return Identity{}, err
	}

	return v.(Identity), nil
}

// PlayerID returns the cached player id, or false if sign-in has not
// completed yet.
func (s *Service) PlayerID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil {
		return "", false
	}
	return s.cached.ID, true
}
