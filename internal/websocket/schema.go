package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action of a client message.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventConnected  Event = "connected"
	EventSubmission Event = "submission"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// ConnectedResponse confirms the subscription to a test's feed.
type ConnectedResponse struct {
	Event  Event  `json:"event"`
	TestID string `json:"test_id"`
}

// SubmissionResponse wraps one published submission event.
type SubmissionResponse struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
