package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coopmp/lobbysync/internal/hub"
	"github.com/coopmp/lobbysync/internal/lobby"
	"github.com/coopmp/lobbysync/internal/provider"
	"github.com/coopmp/lobbysync/internal/store"
	"github.com/coopmp/lobbysync/pkg/types"
)

const playerIDHeader = "X-Player-ID"

func CreateLobby(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateLobbyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.MaxPlayers <= 0 || req.Member.ID == "" {
			writeError(w, http.StatusBadRequest, "max_players and member.id are required")
			return
		}

		reply := make(chan *lobby.Session, 1)
		h.Inbox() <- hub.CreateLobby{
			Name:       req.Name,
			MaxPlayers: req.MaxPlayers,
			IsPrivate:  req.IsPrivate,
			PublicData: req.PublicData,
			Host:       memberFromPayload(req.Member),
			Reply:      reply,
		}
		sess := <-reply

		writeJSON(w, http.StatusCreated, toLobbyResponse(sess))
	}
}

func GetLobby(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan hub.LobbyReply, 1)
		h.Inbox() <- hub.GetLobby{
			ID:       chi.URLParam(r, "lobbyID"),
			CallerID: r.Header.Get(playerIDHeader),
			Reply:    reply,
		}
		got := <-reply
		if got.Err != nil {
			writeHubError(w, got.Err)
			return
		}

		writeJSON(w, http.StatusOK, toLobbyResponse(got.Session))
	}
}

func JoinLobby(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.JoinLobbyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.JoinCode == "" || req.Member.ID == "" {
			writeError(w, http.StatusBadRequest, "join_code and member.id are required")
			return
		}

		reply := make(chan hub.LobbyReply, 1)
		h.Inbox() <- hub.JoinByCode{
			Code:   req.JoinCode,
			Member: memberFromPayload(req.Member),
			Reply:  reply,
		}
		got := <-reply
		if got.Err != nil {
			writeHubError(w, got.Err)
			return
		}

		writeJSON(w, http.StatusOK, toLobbyResponse(got.Session))
	}
}

func DeleteLobby(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan error, 1)
		h.Inbox() <- hub.DeleteLobby{ID: chi.URLParam(r, "lobbyID"), Reply: reply}
		if err := <-reply; err != nil {
			writeHubError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func RemoveMember(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan error, 1)
		h.Inbox() <- hub.RemoveMember{
			ID:       chi.URLParam(r, "lobbyID"),
			MemberID: chi.URLParam(r, "memberID"),
			Reply:    reply,
		}
		if err := <-reply; err != nil {
			writeHubError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Heartbeat(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan error, 1)
		h.Inbox() <- hub.Heartbeat{ID: chi.URLParam(r, "lobbyID"), Reply: reply}
		if err := <-reply; err != nil {
			writeHubError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SignInAnonymously mints a throwaway identity: an opaque id and a
// generated username.
func SignInAnonymously(log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		resp := types.IdentityResponse{
			ID:        id,
			Username:  "Player-" + id[:8],
			CreatedAt: time.Now().UTC(),
		}

		log.Info("anonymous sign-in", zap.String("player_id", resp.ID))
		writeJSON(w, http.StatusOK, resp)
	}
}

// RecordResult persists a finished game's outcome. Without a configured
// store the endpoint refuses uploads rather than dropping them silently.
func RecordResult(st *store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusServiceUnavailable, "results store disabled")
			return
		}

		var req types.GameResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		lobbyID := chi.URLParam(r, "lobbyID")
		if err := st.RecordResult(r.Context(), lobbyID, req); err != nil {
			log.Error("record result failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to record result")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeHubError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, provider.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, provider.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, provider.ErrLobbyFull):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func memberFromPayload(m types.MemberPayload) lobby.Member {
	return lobby.Member{ID: m.ID, DisplayName: m.DisplayName, IsReady: m.IsReady}
}

func toLobbyResponse(s *lobby.Session) types.LobbyResponse {
	members := make([]types.MemberPayload, len(s.Members))
	for i, m := range s.Members {
		members[i] = types.MemberPayload{ID: m.ID, DisplayName: m.DisplayName, IsReady: m.IsReady}
	}
	return types.LobbyResponse{
		ID:         s.ID,
		Name:       s.Name,
		JoinCode:   s.JoinCode,
		HostName:   s.HostName,
		IsPrivate:  s.IsPrivate,
		MaxPlayers: s.MaxPlayers,
		PublicData: s.PublicData,
		Members:    members,
	}
}
