package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/coopmp/lobbysync/internal/identity"
	"github.com/coopmp/lobbysync/internal/lobby"
	"github.com/coopmp/lobbysync/internal/provider"
)

// Default scheduling intervals. The host heartbeat keeps the remote lobby
// from expiring; membership polls drive reconciliation. Within one tick the
// two are mutually exclusive, heartbeat first.
const (
	HeartbeatInterval = 15 * time.Second
	PollInterval      = 1500 * time.Millisecond
)

const eventBuffer = 16

var ErrClosed = errors.New("lobby session closed")
var ErrNotSignedIn = errors.New("sign-in must complete before lobby operations")
var ErrAlreadyConstructed = errors.New("lobby session already constructed in this process")

// constructed enforces the one-instance rule below.
var constructed atomic.Bool

// LobbySession owns this peer's view of lobby membership and runs the
// poll/heartbeat reconciliation loop. It is confined to a single driver
// goroutine: one caller invokes Tick on a schedule and drains Events between
// ticks. A process gets exactly one instance; New refuses a second
// construction. Collaborators receive the one instance, they never build
// their own.
type LobbySession struct {
	client provider.Client
	ident  *identity.Service
	log    *zap.Logger
	now    func() time.Time

	heartbeatEvery time.Duration
	pollEvery      time.Duration

	active      *lobby.Session
	members     []lobby.Member
	isHost      bool
	gameStarted bool
	localName   string

	nextHeartbeat time.Time
	nextPoll      time.Time

	closed bool
	events chan Event
}

type Option func(*LobbySession)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *LobbySession) { s.now = now }
}

// WithIntervals overrides the heartbeat and poll intervals.
func WithIntervals(heartbeat, poll time.Duration) Option {
	return func(s *LobbySession) {
		s.heartbeatEvery = heartbeat
		s.pollEvery = poll
	}
}

// New builds the process's lobby session. The second and every later call
// returns ErrAlreadyConstructed; a torn-down session is not replaceable.
func New(client provider.Client, ident *identity.Service, log *zap.Logger, opts ...Option) (*LobbySession, error) {
	if !constructed.CompareAndSwap(false, true) {
		return nil, ErrAlreadyConstructed
	}

	s := &LobbySession{
		client:         client,
		ident:          ident,
		log:            log,
		now:            time.Now,
		heartbeatEvery: HeartbeatInterval,
		pollEvery:      PollInterval,
		events:         make(chan Event, eventBuffer),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// resetConstructionGuard clears the one-instance guard so each test can
// build a fresh session.
func resetConstructionGuard() { constructed.Store(false) }

// Events is the stream the driver loop drains once per tick.
func (s *LobbySession) Events() <-chan Event { return s.events }

// Active returns the current session, or nil when not in one.
func (s *LobbySession) Active() *lobby.Session { return s.active }

// Members returns the last observed membership snapshot.
func (s *LobbySession) Members() []lobby.Member { return lobby.CloneMembers(s.members) }

func (s *LobbySession) IsHost() bool { return s.isHost }

func (s *LobbySession) NumMembers() int { return len(s.members) }

// MarkGameStarted latches the session out of the poll loop once gameplay has
// begun; membership reconciliation only matters pre-game.
func (s *LobbySession) MarkGameStarted() { s.gameStarted = true }

// Create makes this peer the host of a fresh session. Any session this peer
// already hosts is deleted first; that cleanup never errors when there is
// nothing to clean up. Both scheduling timers come due immediately, so the
// first tick after creation sends the initial heartbeat.
func (s *LobbySession) Create(ctx context.Context, name string, maxPlayers int, hostName string, isPrivate bool, relayJoinCode string) (*lobby.Session, error) {
	if s.closed {
		return nil, ErrClosed
	}

	ident, err := s.requireIdentity()
	if err != nil {
		return nil, err
	}

	s.isHost = true
	s.localName = hostName
	s.gameStarted = false

	s.deleteAnyHostedLobby(ctx)
	if s.closed {
		return nil, ErrClosed
	}

	opts := provider.CreateOptions{
		IsPrivate: isPrivate,
		PublicData: map[string]string{
			lobby.HostNameKey:      hostName,
			lobby.RelayJoinCodeKey: relayJoinCode,
		},
		LocalMember: lobby.Member{ID: ident, DisplayName: hostName},
	}

	created, err := s.client.CreateLobby(ctx, name, maxPlayers, opts)
	if err != nil {
		return nil, fmt.Errorf("create lobby: %w", err)
	}
	if s.closed {
		return nil, ErrClosed
	}

	s.active = created
	s.members = created.Members
	s.resetTimers()

	s.log.Info("created lobby",
		zap.String("lobby_id", created.ID),
		zap.String("join_code", created.JoinCode),
		zap.Bool("private", created.IsPrivate),
		zap.Int("max_players", created.MaxPlayers))

	return created, nil
}

// Join enters a session by its join code. If this peer is already in a
// session it leaves that one first. ErrNotFound and ErrLobbyFull propagate
// with local state cleared; the caller owns any retry prompt.
func (s *LobbySession) Join(ctx context.Context, joinCode, displayName string) (*lobby.Session, error) {
	if s.closed {
		return nil, ErrClosed
	}

	ident, err := s.requireIdentity()
	if err != nil {
		return nil, err
	}

	s.isHost = false
	s.localName = displayName
	s.gameStarted = false

	if s.active != nil {
		s.log.Info("already in a lobby, leaving before join",
			zap.String("lobby_id", s.active.ID))
		if err := s.Leave(ctx); err != nil {
			s.log.Warn("leave before join failed", zap.Error(err))
		}
		if s.closed {
			return nil, ErrClosed
		}
	}

	member := lobby.Member{ID: ident, DisplayName: displayName}
	joined, err := s.client.JoinByCode(ctx, joinCode, member)
	if err != nil {
		s.active = nil
		s.members = nil
		return nil, fmt.Errorf("join lobby %q: %w", joinCode, err)
	}
	if s.closed {
		return nil, ErrClosed
	}

	s.active = joined
	s.members = joined.Members
	s.resetTimers()

	s.log.Info("joined lobby",
		zap.String("lobby_id", joined.ID),
		zap.Int("members", len(joined.Members)))

	return joined, nil
}

// Leave removes this peer from the active session. It is a no-op when not
// in one, and tolerates already being absent remotely.
func (s *LobbySession) Leave(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.active == nil {
		return nil
	}

	id, ok := s.ident.PlayerID()
	if ok {
		if err := s.client.RemoveMember(ctx, s.active.ID, id); err != nil && !errors.Is(err, provider.ErrNotFound) {
			s.log.Warn("remove member failed", zap.Error(err))
		}
	}
	if s.closed {
		return ErrClosed
	}

	s.playerNotInLobby()
	return nil
}

// Close deletes the remote session when this peer hosts it, then leaves.
func (s *LobbySession) Close(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.active == nil {
		return nil
	}

	if s.isHost {
		s.deleteAnyHostedLobby(ctx)
		if s.closed {
			return ErrClosed
		}
		return nil
	}

	return s.Leave(ctx)
}

// NameUnique runs the lobby-level duplicate check for the local display name
// against the current snapshot. Meaningful right after Join, while this peer
// is already counted in the snapshot.
func (s *LobbySession) NameUnique() bool {
	return lobby.CheckNameUnique(s.localName, s.members)
}

// Tick services at most one due action: the host heartbeat when its interval
// elapsed, otherwise a membership poll when its interval elapsed. Timers are
// advanced before the remote call so an overlapping schedule cannot double-
// fire against the provider. Transient failures are logged and retried
// implicitly on the next tick.
func (s *LobbySession) Tick(ctx context.Context) {
	if s.closed || s.active == nil || s.gameStarted {
		return
	}

	now := s.now()

	if s.isHost && !now.Before(s.nextHeartbeat) {
		s.nextHeartbeat = now.Add(s.heartbeatEvery)
		if err := s.client.SendHeartbeat(ctx, s.active.ID); err != nil {
			s.log.Warn("host heartbeat failed", zap.Error(err))
		}
		// Only ever one remote call per tick: heartbeat or poll, not both.
		return
	}

	if now.Before(s.nextPoll) {
		return
	}
	s.nextPoll = now.Add(s.pollEvery)

	updated, err := s.client.GetLobby(ctx, s.active.ID)
	if s.closed || s.active == nil {
		return
	}

	switch {
	case errors.Is(err, provider.ErrNotFound):
		// Host canceled the game; the lobby is gone.
		s.emit(ReturnToMenu{Reason: ReasonLobbyClosed})
		s.playerNotInLobby()
		return

	case errors.Is(err, provider.ErrForbidden):
		// Host booted this peer; we may no longer view the lobby.
		s.emit(ReturnToMenu{Reason: ReasonPlayerKicked})
		s.playerNotInLobby()
		return

	case err != nil:
		s.log.Warn("lobby poll failed", zap.Error(err))
		return
	}

	s.reconcile(updated)
}

func (s *LobbySession) reconcile(updated *lobby.Session) {
	if updated == nil {
		return
	}
	if !lobby.DidMembersChange(s.members, updated.Members) {
		return
	}

	s.active = updated
	s.members = updated.Members

	id, ok := s.ident.PlayerID()
	if !ok || !lobby.ContainsMember(updated.Members, id) {
		s.emit(ReturnToMenu{Reason: ReasonPlayerKicked})
		s.playerNotInLobby()
		return
	}

	s.emit(LobbyChanged{
		Members:     lobby.CloneMembers(updated.Members),
		IsGameReady: lobby.IsGameReady(updated.Members),
	})
}

// Shutdown tears the instance down. A torn-down session never touches its
// state again, even if a remote call was in flight when it happened.
func (s *LobbySession) Shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

func (s *LobbySession) requireIdentity() (string, error) {
	id, ok := s.ident.PlayerID()
	if !ok {
		return "", ErrNotSignedIn
	}
	return id, nil
}

func (s *LobbySession) deleteAnyHostedLobby(ctx context.Context) {
	if s.active == nil || !s.isHost {
		return
	}

	if err := s.client.DeleteLobby(ctx, s.active.ID); err != nil && !errors.Is(err, provider.ErrNotFound) {
		s.log.Warn("delete hosted lobby failed", zap.Error(err))
	}
	if s.closed {
		return
	}
	s.playerNotInLobby()
}

func (s *LobbySession) playerNotInLobby() {
	if s.active == nil {
		return
	}
	s.active = nil
	s.members = nil
	s.emit(PlayerLeftLobby{})
}

func (s *LobbySession) resetTimers() {
	now := s.now()
	s.nextHeartbeat = now
	s.nextPoll = now
}

func (s *LobbySession) emit(e Event) {
	if s.closed {
		return
	}
	select {
	case s.events <- e:
	default:
		s.log.Warn("event buffer full, dropping event")
	}
}
