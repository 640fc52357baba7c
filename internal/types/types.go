package types

// ApprovalMessage is sent over the websocket to an approved connection:
// where to spawn the new player entity. A rejected connection never sees
// this; its reason travels in the close frame instead.
type ApprovalMessage struct {
	Type     string     `json:"type"` // always "Approved"
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"`
}
