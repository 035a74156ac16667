// Package websocket holds the wire schema of the admin live feed.
package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is the only message shape the feed accepts from clients.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventReady     Event = "ready"
	EventPong      Event = "pong"
	EventHeartbeat Event = "heartbeat"
)

type ReadyResponse struct {
	Event   Event  `json:"event"`
	Channel string `json:"channel"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
