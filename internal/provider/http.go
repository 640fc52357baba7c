package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coopmp/lobbysync/internal/identity"
	"github.com/coopmp/lobbysync/internal/lobby"
	"github.com/coopmp/lobbysync/pkg/types"
)

const playerIDHeader = "X-Player-ID"

// HTTPClient talks to the lobby provider REST API. It implements Client and
// identity.Provider. Set the player id once sign-in completes; the provider
// uses it to decide lobby visibility. Not safe to reconfigure concurrently
// with in-flight calls.
type HTTPClient struct {
	baseURL  string
	playerID string
	http     *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetPlayerID attaches the signed-in player id to every subsequent request.
func (c *HTTPClient) SetPlayerID(id string) { c.playerID = id }

// SignInAnonymously implements identity.Provider against the same API.
func (c *HTTPClient) SignInAnonymously(ctx context.Context) (identity.Identity, error) {
	var resp types.IdentityResponse
	if err := c.do(ctx, http.MethodPost, "/auth/anonymous", nil, &resp); err != nil {
		return identity.Identity{}, err
	}
	return identity.Identity{ID: resp.ID, Username: resp.Username, CreatedAt: resp.CreatedAt}, nil
}

func (c *HTTPClient) CreateLobby(ctx context.Context, name string, maxPlayers int, opts CreateOptions) (*lobby.Session, error) {
	req := types.CreateLobbyRequest{
		Name:       name,
		MaxPlayers: maxPlayers,
		IsPrivate:  opts.IsPrivate,
		PublicData: opts.PublicData,
		Member:     toPayload(opts.LocalMember),
	}

	var resp types.LobbyResponse
	if err := c.do(ctx, http.MethodPost, "/lobbies", req, &resp); err != nil {
		return nil, err
	}
	return fromResponse(resp), nil
}

func (c *HTTPClient) GetLobby(ctx context.Context, sessionID string) (*lobby.Session, error) {
	var resp types.LobbyResponse
	if err := c.do(ctx, http.MethodGet, "/lobbies/"+sessionID, nil, &resp); err != nil {
		return nil, err
	}
	return fromResponse(resp), nil
}

func (c *HTTPClient) JoinByCode(ctx context.Context, code string, member lobby.Member) (*lobby.Session, error) {
	req := types.JoinLobbyRequest{JoinCode: code, Member: toPayload(member)}

	var resp types.LobbyResponse
	if err := c.do(ctx, http.MethodPost, "/lobbies/join", req, &resp); err != nil {
		return nil, err
	}
	return fromResponse(resp), nil
}

func (c *HTTPClient) DeleteLobby(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/lobbies/"+sessionID, nil, nil)
}

func (c *HTTPClient) RemoveMember(ctx context.Context, sessionID, memberID string) error {
	return c.do(ctx, http.MethodDelete, "/lobbies/"+sessionID+"/members/"+memberID, nil, nil)
}

func (c *HTTPClient) SendHeartbeat(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/lobbies/"+sessionID+"/heartbeat", nil, nil)
}

// RecordResult reports a finished game's results for persistence.
func (c *HTTPClient) RecordResult(ctx context.Context, sessionID string, result types.GameResultRequest) error {
	return c.do(ctx, http.MethodPost, "/lobbies/"+sessionID+"/results", result, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.playerID != "" {
		req.Header.Set(playerIDHeader, c.playerID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body types.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body.Error)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, body.Error)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrLobbyFull, body.Error)
	default:
		return fmt.Errorf("lobby api: status %d: %s", resp.StatusCode, body.Error)
	}
}

func toPayload(m lobby.Member) types.MemberPayload {
	return types.MemberPayload{ID: m.ID, DisplayName: m.DisplayName, IsReady: m.IsReady}
}

func fromResponse(r types.LobbyResponse) *lobby.Session {
	members := make([]lobby.Member, len(r.Members))
	for i, m := range r.Members {
		members[i] = lobby.Member{ID: m.ID, DisplayName: m.DisplayName, IsReady: m.IsReady}
	}
	return &lobby.Session{
		ID:         r.ID,
		Name:       r.Name,
		JoinCode:   r.JoinCode,
		HostName:   r.HostName,
		IsPrivate:  r.IsPrivate,
		MaxPlayers: r.MaxPlayers,
		PublicData: r.PublicData,
		Members:    members,
	}
}
