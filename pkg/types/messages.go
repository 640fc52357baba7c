// Package types holds the JSON wire contracts of the lobby provider API,
// shared by the server handlers and external clients.
package types

import "time"

type MemberPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsReady     bool   `json:"is_ready"`
}

type CreateLobbyRequest struct {
	Name       string            `json:"name"`
	MaxPlayers int               `json:"max_players"`
	IsPrivate  bool              `json:"is_private"`
	PublicData map[string]string `json:"public_data,omitempty"`
	Member     MemberPayload     `json:"member"`
}

type JoinLobbyRequest struct {
	JoinCode string        `json:"join_code"`
	Member   MemberPayload `json:"member"`
}

type LobbyResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	JoinCode   string            `json:"join_code"`
	HostName   string            `json:"host_name"`
	IsPrivate  bool              `json:"is_private"`
	MaxPlayers int               `json:"max_players"`
	PublicData map[string]string `json:"public_data,omitempty"`
	Members    []MemberPayload   `json:"members"`
}

type IdentityResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type PlayerScorePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
}

type GameResultRequest struct {
	WinnerID    string               `json:"winner_id"`
	WinnerName  string               `json:"winner_name"`
	WinnerScore int                  `json:"winner_score"`
	Scores      []PlayerScorePayload `json:"scores"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
