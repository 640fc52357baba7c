package hub

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coopmp/lobbysync/internal/lobby"
	"github.com/coopmp/lobbysync/internal/provider"
)

// DefaultTTL is how long a lobby survives without a host heartbeat.
const DefaultTTL = 90 * time.Second

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Name       string
	MaxPlayers int
	IsPrivate  bool
	PublicData map[string]string
	Host       lobby.Member
	Reply      chan *lobby.Session
}

type GetLobby struct {
	ID       string
	CallerID string
	Reply    chan LobbyReply
}

type JoinByCode struct {
	Code   string
	Member lobby.Member
	Reply  chan LobbyReply
}

type DeleteLobby struct {
	ID    string
	Reply chan error
}

type RemoveMember struct {
	ID       string
	MemberID string
	Reply    chan error
}

type Heartbeat struct {
	ID    string
	Reply chan error
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg()  {}
func (GetLobby) isHubMsg()     {}
func (JoinByCode) isHubMsg()   {}
func (DeleteLobby) isHubMsg()  {}
func (RemoveMember) isHubMsg() {}
func (Heartbeat) isHubMsg()    {}
func (ShutdownHub) isHubMsg()  {}

// LobbyReply carries a copied session or one of the provider sentinel
// errors (ErrNotFound, ErrForbidden, ErrLobbyFull).
type LobbyReply struct {
	Session *lobby.Session
	Err     error
}

type record struct {
	sess          lobby.Session
	lastHeartbeat time.Time
}

// Hub is the reference lobby provider: a single goroutine owns every lobby
// and serializes access through the inbox. Member order within a lobby is
// append order and stays stable across reads; clients diff snapshots
// positionally and rely on that.
type Hub struct {
	inbox  chan HubMsg
	byID   map[string]*record
	byCode map[string]*record
	ttl    time.Duration
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger, ttl time.Duration) *Hub {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		byID:   make(map[string]*record),
		byCode: make(map[string]*record),
		ttl:    ttl,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	expire := time.NewTicker(h.ttl / 3)
	defer expire.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case <-expire.C:
			h.expireStale()

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				msg.Reply <- h.create(msg)

			case GetLobby:
				msg.Reply <- h.get(msg)

			case JoinByCode:
				msg.Reply <- h.join(msg)

			case DeleteLobby:
				msg.Reply <- h.delete(msg.ID)

			case RemoveMember:
				msg.Reply <- h.removeMember(msg.ID, msg.MemberID)

			case Heartbeat:
				msg.Reply <- h.heartbeat(msg.ID)

			case ShutdownHub:
				h.cancel()
			}
		}
	}
}

func (h *Hub) create(msg CreateLobby) *lobby.Session {
	code := h.newJoinCode()
	rec := &record{
		sess: lobby.Session{
			ID:         uuid.NewString(),
			Name:       msg.Name,
			JoinCode:   code,
			HostName:   msg.Host.DisplayName,
			IsPrivate:  msg.IsPrivate,
			MaxPlayers: msg.MaxPlayers,
			PublicData: msg.PublicData,
			Members:    []lobby.Member{msg.Host},
		},
		lastHeartbeat: time.Now(),
	}

	h.byID[rec.sess.ID] = rec
	h.byCode[code] = rec

	h.log.Info("lobby created",
		zap.String("lobby_id", rec.sess.ID),
		zap.String("join_code", code),
		zap.String("host", msg.Host.ID),
		zap.Int("max_players", msg.MaxPlayers))

	return copySession(&rec.sess)
}

func (h *Hub) get(msg GetLobby) LobbyReply {
	rec, ok := h.byID[msg.ID]
	if !ok {
		return LobbyReply{Err: provider.ErrNotFound}
	}
	if !lobby.ContainsMember(rec.sess.Members, msg.CallerID) {
		// Non-members may not view the lobby. A kicked player keeps
		// polling until it hits this and learns it was booted.
		return LobbyReply{Err: provider.ErrForbidden}
	}
	return LobbyReply{Session: copySession(&rec.sess)}
}

func (h *Hub) join(msg JoinByCode) LobbyReply {
	rec, ok := h.byCode[msg.Code]
	if !ok {
		return LobbyReply{Err: provider.ErrNotFound}
	}
	if len(rec.sess.Members) >= rec.sess.MaxPlayers {
		return LobbyReply{Err: provider.ErrLobbyFull}
	}

	rec.sess.Members = append(rec.sess.Members, msg.Member)

	h.log.Info("member joined",
		zap.String("lobby_id", rec.sess.ID),
		zap.String("member", msg.Member.ID),
		zap.Int("members", len(rec.sess.Members)))

	return LobbyReply{Session: copySession(&rec.sess)}
}

func (h *Hub) delete(id string) error {
	rec, ok := h.byID[id]
	if !ok {
		return provider.ErrNotFound
	}

	delete(h.byID, id)
	delete(h.byCode, rec.sess.JoinCode)
	h.log.Info("lobby deleted", zap.String("lobby_id", id))
	return nil
}

func (h *Hub) removeMember(id, memberID string) error {
	rec, ok := h.byID[id]
	if !ok {
		return provider.ErrNotFound
	}

	members := rec.sess.Members
	for i, m := range members {
		if m.ID == memberID {
			rec.sess.Members = append(members[:i:i], members[i+1:]...)
			h.log.Info("member removed",
				zap.String("lobby_id", id),
				zap.String("member", memberID))
			return nil
		}
	}

	// Removing an absent member is fine; leave is idempotent.
	return nil
}

func (h *Hub) heartbeat(id string) error {
	rec, ok := h.byID[id]
	if !ok {
		return provider.ErrNotFound
	}
	rec.lastHeartbeat = time.Now()
	return nil
}

func (h *Hub) expireStale() {
	cutoff := time.Now().Add(-h.ttl)
	for id, rec := range h.byID {
		if rec.lastHeartbeat.Before(cutoff) {
			delete(h.byID, id)
			delete(h.byCode, rec.sess.JoinCode)
			h.log.Info("lobby expired", zap.String("lobby_id", id))
		}
	}
}

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (h *Hub) newJoinCode() string {
	for {
		code := make([]byte, 6)
		for i := range code {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
			if err != nil {
				// crypto/rand failing is unrecoverable here.
				panic(err)
			}
			code[i] = codeCharset[n.Int64()]
		}
		if _, taken := h.byCode[string(code)]; !taken {
			return string(code)
		}
	}
}

// copySession hands out an independent copy so callers never alias the
// hub-owned members slice.
func copySession(s *lobby.Session) *lobby.Session {
	out := *s
	out.Members = lobby.CloneMembers(s.Members)
	return &out
}
