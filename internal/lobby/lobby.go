package lobby

// Keys under which lobby-level public data travels to the provider.
const (
	HostNameKey      = "hostName"
	RelayJoinCodeKey = "relayJoinCode"
)

// Member is one lobby participant as last observed from the provider.
// ID is stable for the participant's whole session; DisplayName and
// IsReady only change through remote updates.
type Member struct {
	ID          string
	DisplayName string
	IsReady     bool
}

// Session is one created-or-joined lobby as tracked by the local peer.
// Members is replaced wholesale on every successful poll, never patched.
type Session struct {
	ID         string
	Name       string
	JoinCode   string
	HostName   string
	IsPrivate  bool
	MaxPlayers int
	PublicData map[string]string
	Members    []Member
}

// CloneMembers returns an independent copy of members so callers can hold
// onto a snapshot without aliasing the session's own slice.
func CloneMembers(members []Member) []Member {
	if members == nil {
		return nil
	}
	out := make([]Member, len(members))
	copy(out, members)
	return out
}
