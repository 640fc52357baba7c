package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/coopmp/lobbysync/internal/admission"
	"github.com/coopmp/lobbysync/internal/types"
)

// Handler runs the connection-approval protocol on each incoming websocket.
// The first client frame is the proposed display name as raw bytes; the gate
// decides once, immediately. Rejections close the socket with the tagged
// reason text so the peer can tell a taken name apart from a full session.
// Ordinals count from 0: the first connection is the hosting peer itself and
// always passes.
func Handler(gate *admission.Gate, log *zap.Logger) http.HandlerFunc {
	var ordinal atomic.Uint64

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		ord := ordinal.Add(1) - 1

		readCtx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		_, payload, err := conn.Read(readCtx)
		cancel()
		if err != nil {
			log.Warn("connection dropped before sending a name",
				zap.Uint64("ordinal", ord), zap.Error(err))
			return
		}

		resp := gate.Evaluate(admission.Request{ConnectionOrdinal: ord, Payload: payload})
		if !resp.Approved {
			// Close-frame reasons are capped at 125 bytes; reason texts
			// stay well under that.
			conn.Close(websocket.StatusPolicyViolation, resp.ReasonText)
			return
		}

		msg := types.ApprovalMessage{
			Type:     "Approved",
			Position: resp.Spawn.Position,
			Rotation: resp.Spawn.Rotation,
		}
		buf, _ := json.Marshal(msg)

		writeCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		err = conn.Write(writeCtx, websocket.MessageText, buf)
		cancel()
		if err != nil {
			return
		}

		// Park until the peer goes away. Names claimed here stay claimed;
		// a disconnect does not release them.
		for {
			_, _, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
		}
	}
}
