package provider

import (
	"context"
	"errors"

	"github.com/coopmp/lobbysync/internal/lobby"
)

// Recognized provider failures. Anything else coming back from a Client is
// transient: callers log it and try again on their next scheduled tick.
var ErrNotFound = errors.New("lobby not found")
var ErrForbidden = errors.New("lobby access forbidden")
var ErrLobbyFull = errors.New("lobby full")

// CreateOptions carries the extras for lobby creation: visibility, public
// key/value data (host name, relay join code) and the creating member.
type CreateOptions struct {
	IsPrivate   bool
	PublicData  map[string]string
	LocalMember lobby.Member
}

// Client is the lobby provider capability the session engine is written
// against. Implementations must return ErrNotFound, ErrForbidden and
// ErrLobbyFull for the matching conditions; all other failures are treated
// as transient by callers.
type Client interface {
	CreateLobby(ctx context.Context, name string, maxPlayers int, opts CreateOptions) (*lobby.Session, error)
	GetLobby(ctx context.Context, sessionID string) (*lobby.Session, error)
	JoinByCode(ctx context.Context, code string, member lobby.Member) (*lobby.Session, error)
	DeleteLobby(ctx context.Context, sessionID string) error
	RemoveMember(ctx context.Context, sessionID, memberID string) error
	SendHeartbeat(ctx context.Context, sessionID string) error
}
