package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coopmp/lobbysync/internal/admission"
	"github.com/coopmp/lobbysync/internal/hub"
	"github.com/coopmp/lobbysync/internal/store"
	"github.com/coopmp/lobbysync/internal/ws"
)

// SetupRoutes builds the provider API router. st may be nil when no
// database is configured.
func SetupRoutes(h *hub.Hub, gate *admission.Gate, st *store.Store, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/anonymous", SignInAnonymously(log))

	r.Route("/lobbies", func(r chi.Router) {
		r.Post("/", CreateLobby(h))
		r.Post("/join", JoinLobby(h))
		r.Get("/{lobbyID}", GetLobby(h))
		r.Delete("/{lobbyID}", DeleteLobby(h))
		r.Delete("/{lobbyID}/members/{memberID}", RemoveMember(h))
		r.Post("/{lobbyID}/heartbeat", Heartbeat(h))
		r.Post("/{lobbyID}/results", RecordResult(st, log))
	})

	r.Get("/connect", ws.Handler(gate, log))
	r.Get("/healthz", Healthz)

	return r
}
