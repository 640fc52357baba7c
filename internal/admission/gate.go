package admission

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ReasonKind classifies a connection-approval rejection.
type ReasonKind int

const (
	ReasonNone ReasonKind = iota
	ReasonCapacityReached
	ReasonNameTaken
)

// Machine-readable tags embedded in the human-readable rejection text. The
// rejected peer sees only the disconnect reason string, so the tag is how it
// tells "name taken, re-prompt" apart from every other rejection.
const (
	capacityTag  = "ERR_CAPACITY"
	nameTakenTag = "ERR_NAME_TAKEN"
)

// Request is one incoming connection attempt. ConnectionOrdinal 0 is the
// connection that establishes the hosting peer itself; Payload is the
// proposed display name as raw UTF-8 bytes.
type Request struct {
	ConnectionOrdinal uint64
	Payload           []byte
}

// SpawnPose is where an approved connection's player entity appears.
type SpawnPose struct {
	Position [3]float32
	Rotation [4]float32 // quaternion, w last
}

// Response is the gate's one-shot decision. The decision is never deferred.
type Response struct {
	Approved     bool
	CreateEntity bool
	Reason       ReasonKind
	ReasonText   string
	Spawn        SpawnPose
}

// IdentityPose returns the default spawn transform: origin position,
// identity rotation.
func IdentityPose() SpawnPose {
	return SpawnPose{Rotation: [4]float32{0, 0, 0, 1}}
}

// Gate runs the connection-approval protocol, once per incoming connection.
type Gate struct {
	registry *Registry
	log      *zap.Logger
}

func NewGate(registry *Registry, log *zap.Logger) *Gate {
	return &Gate{registry: registry, log: log}
}

// Evaluate decides approve/reject for one connection attempt. The initial
// connection is approved unconditionally without touching the registry; all
// others pass the capacity check first, then the name claim. A successful
// claim is permanent even if the connection later fails elsewhere.
func (g *Gate) Evaluate(req Request) Response {
	name := string(req.Payload)

	if req.ConnectionOrdinal == 0 {
		g.log.Info("approving initial connection", zap.String("name", name))
		return approved()
	}

	if g.registry.CapacityReached() {
		text := fmt.Sprintf("%s: access denied, session at capacity (%s)",
			capacityTag, g.registry.CapacityLabel())
		g.log.Info("rejecting connection",
			zap.Uint64("ordinal", req.ConnectionOrdinal),
			zap.String("reason", text))
		return rejected(ReasonCapacityReached, text)
	}

	if !g.registry.TryClaim(name) {
		text := fmt.Sprintf("%s: access denied, player name %q already taken",
			nameTakenTag, name)
		g.log.Info("rejecting connection",
			zap.Uint64("ordinal", req.ConnectionOrdinal),
			zap.String("reason", text))
		return rejected(ReasonNameTaken, text)
	}

	g.log.Info("approving connection",
		zap.Uint64("ordinal", req.ConnectionOrdinal),
		zap.String("name", name),
		zap.String("capacity", g.registry.CapacityLabel()))
	return approved()
}

func approved() Response {
	return Response{
		Approved:     true,
		CreateEntity: true,
		Spawn:        IdentityPose(),
	}
}

func rejected(kind ReasonKind, text string) Response {
	return Response{Reason: kind, ReasonText: text}
}

// ParseReasonKind recovers the rejection kind from a disconnect reason
// string on the rejected peer's side.
func ParseReasonKind(text string) ReasonKind {
	switch {
	case strings.HasPrefix(text, nameTakenTag):
		return ReasonNameTaken
	case strings.HasPrefix(text, capacityTag):
		return ReasonCapacityReached
	default:
		return ReasonNone
	}
}
