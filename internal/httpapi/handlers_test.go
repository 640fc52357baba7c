package httpapi

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coopmp/lobbysync/internal/admission"
	"github.com/coopmp/lobbysync/internal/hub"
	"github.com/coopmp/lobbysync/internal/lobby"
	"github.com/coopmp/lobbysync/internal/provider"
	"github.com/coopmp/lobbysync/pkg/types"
)

// newTestAPI spins up the whole provider surface and returns a REST client
// pointed at it. These tests double as coverage for provider.HTTPClient.
func newTestAPI(t *testing.T) (*provider.HTTPClient, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, zap.NewNop(), 0)
	gate := admission.NewGate(admission.NewRegistry(admission.DefaultMaxPlayers), zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(h, gate, nil, zap.NewNop()))
	t.Cleanup(srv.Close)

	return provider.NewHTTPClient(srv.URL), srv.URL
}

func TestAnonymousSignIn_MintsDistinctIdentities(t *testing.T) {
	client, _ := newTestAPI(t)

	first, err := client.SignInAnonymously(context.Background())
	require.NoError(t, err)
	second, err := client.SignInAnonymously(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEmpty(t, first.Username)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestLobbyLifecycle_EndToEnd(t *testing.T) {
	client, baseURL := newTestAPI(t)
	ctx := context.Background()

	host, err := client.SignInAnonymously(ctx)
	require.NoError(t, err)
	client.SetPlayerID(host.ID)

	created, err := client.CreateLobby(ctx, "friday night", 4, provider.CreateOptions{
		IsPrivate:   true,
		PublicData:  map[string]string{lobby.HostNameKey: "Ann", lobby.RelayJoinCodeKey: "relay-1"},
		LocalMember: lobby.Member{ID: host.ID, DisplayName: "Ann"},
	})
	require.NoError(t, err)
	assert.Len(t, created.JoinCode, 6)
	require.Len(t, created.Members, 1)
	assert.False(t, created.Members[0].IsReady)
	assert.Equal(t, "relay-1", created.PublicData[lobby.RelayJoinCodeKey])

	// Three more distinct players join; the lobby fills to its max of 4.
	for i := 2; i <= 4; i++ {
		member := lobby.Member{ID: fmt.Sprintf("player-%d", i), DisplayName: fmt.Sprintf("P%d", i)}
		joined, err := client.JoinByCode(ctx, created.JoinCode, member)
		require.NoError(t, err)
		assert.Len(t, joined.Members, i)
	}

	// A fifth join attempt is refused for capacity.
	_, err = client.JoinByCode(ctx, created.JoinCode, lobby.Member{ID: "player-5"})
	assert.ErrorIs(t, err, provider.ErrLobbyFull)

	// Member order is append order, stable across reads.
	got, err := client.GetLobby(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 4)
	assert.Equal(t, host.ID, got.Members[0].ID)
	assert.Equal(t, "player-2", got.Members[1].ID)

	require.NoError(t, client.SendHeartbeat(ctx, created.ID))

	// Kick player-2; their next poll comes back forbidden.
	require.NoError(t, client.RemoveMember(ctx, created.ID, "player-2"))

	kicked := provider.NewHTTPClient(baseURL)
	kicked.SetPlayerID("player-2")
	_, err = kicked.GetLobby(ctx, created.ID)
	assert.ErrorIs(t, err, provider.ErrForbidden)

	// The host tears the lobby down; polls now come back not-found.
	require.NoError(t, client.DeleteLobby(ctx, created.ID))
	_, err = client.GetLobby(ctx, created.ID)
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestJoinLobby_UnknownCode(t *testing.T) {
	client, _ := newTestAPI(t)

	_, err := client.JoinByCode(context.Background(), "ZZZZZZ", lobby.Member{ID: "p1"})
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestCreateLobby_RejectsBadRequests(t *testing.T) {
	client, _ := newTestAPI(t)

	_, err := client.CreateLobby(context.Background(), "x", 0, provider.CreateOptions{
		LocalMember: lobby.Member{ID: "p1"},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, provider.ErrNotFound)
	assert.NotErrorIs(t, err, provider.ErrLobbyFull)
}

func TestRecordResult_WithoutStoreIsRefused(t *testing.T) {
	client, _ := newTestAPI(t)
	ctx := context.Background()

	err := client.RecordResult(ctx, "lobby-1", types.GameResultRequest{
		WinnerID: "p1", WinnerName: "Ann", WinnerScore: 3,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "results store disabled")
}
