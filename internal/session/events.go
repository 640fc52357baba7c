package session

import "github.com/coopmp/lobbysync/internal/lobby"

// Event is raised by the session engine for the driver loop to drain once
// per tick. Subscribing is reading from Events(); there is nothing to
// unsubscribe.
type Event interface{ isSessionEvent() }

// LobbyChanged fires when the polled membership snapshot differs from the
// previous one and the local peer is still a member.
type LobbyChanged struct {
	Members     []lobby.Member
	IsGameReady bool
}

// PlayerLeftLobby fires whenever the local peer stops being a member of the
// active session, voluntarily or not.
type PlayerLeftLobby struct{}

// ReturnReason distinguishes why the local peer was forced back to the menu.
type ReturnReason int

const (
	ReasonPlayerKicked ReturnReason = iota + 1
	ReasonLobbyClosed
)

func (r ReturnReason) String() string {
	switch r {
	case ReasonPlayerKicked:
		return "player kicked"
	case ReasonLobbyClosed:
		return "lobby closed"
	default:
		return "unknown"
	}
}

// ReturnToMenu fires on forced removal: the session vanished remotely
// (LobbyClosed) or the host revoked this peer's access (PlayerKicked).
type ReturnToMenu struct {
	Reason ReturnReason
}

func (LobbyChanged) isSessionEvent()    {}
func (PlayerLeftLobby) isSessionEvent() {}
func (ReturnToMenu) isSessionEvent()    {}
