package models

// ConnectionPhase is the closed set of live-connection states owned by the
// transport. The engine only observes these values, it never produces them.
type ConnectionPhase string

const (
	ConnectionDisconnected ConnectionPhase = "disconnected"
	ConnectionConnecting   ConnectionPhase = "connecting"
	ConnectionConnected    ConnectionPhase = "connected"
	ConnectionFailed       ConnectionPhase = "failed"
)

// ConnectionState is one observation of the transport's live connection.
// Reason is set only for ConnectionFailed and carries the best-effort status
// string shown in the UI.
type ConnectionState struct {
	Phase  ConnectionPhase `json:"phase"`
	Reason string          `json:"reason,omitempty"`
}

// Connected reports whether the observation is the connected phase.
func (s ConnectionState) Connected() bool {
	return s.Phase == ConnectionConnected
}

func (s ConnectionState) String() string {
	if s.Phase == ConnectionFailed && s.Reason != "" {
		return string(s.Phase) + ": " + s.Reason
	}
	return string(s.Phase)
}
