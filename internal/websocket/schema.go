package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionComplete Action = "complete"
	ActionPing     Action = "ping"
)

// RequestPayload is every client message. Only Action is required; the
// answer fields are read for ActionAnswer.
type RequestPayload struct {
	Action           Action `json:"action"`
	QuestionID       int64  `json:"question_id,omitempty"`
	UserAnswer       string `json:"user_answer,omitempty"`
	TimeTakenSeconds *int   `json:"time_taken_seconds,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventAnswered  Event = "answered"
	EventCompleted Event = "completed"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// ResponsePayload wraps every server message.
type ResponsePayload struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}
