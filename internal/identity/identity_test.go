package identity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	calls   atomic.Int32
	release chan struct{} // sign-in blocks until this closes, if set
	err     error
}

func (f *fakeProvider) SignInAnonymously(ctx context.Context) (Identity, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return Identity{}, f.err
	}
	return Identity{ID: "player-1", Username: "anon"}, nil
}

func TestEnsureSignedIn_CachesAfterSuccess(t *testing.T) {
	fp := &fakeProvider{}
	s := NewService(fp, zap.NewNop())

	first, err := s.EnsureSignedIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "player-1", first.ID)

	second, err := s.EnsureSignedIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, fp.calls.Load(), "cached identity must not re-sign-in")

	id, ok := s.PlayerID()
	assert.True(t, ok)
	assert.Equal(t, "player-1", id)
}

func TestEnsureSignedIn_ConcurrentCallersShareOneAttempt(t *testing.T) {
	fp := &fakeProvider{release: make(chan struct{})}
	s := NewService(fp, zap.NewNop())

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.EnsureSignedIn(context.Background())
			results <- err
		}()
	}

	close(fp.release)
	wg.Wait()
	close(results)

	for err := range results {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, fp.calls.Load(), "expected a single shared sign-in call")
}

func TestEnsureSignedIn_FailureIsNotCached(t *testing.T) {
	fp := &fakeProvider{err: errors.New("identity service down")}
	s := NewService(fp, zap.NewNop())

	_, err := s.EnsureSignedIn(context.Background())
	require.Error(t, err)

	_, ok := s.PlayerID()
	assert.False(t, ok)

	// A later attempt is allowed; the caller decides whether to retry.
	fp.err = nil
	_, err = s.EnsureSignedIn(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, fp.calls.Load())
}
