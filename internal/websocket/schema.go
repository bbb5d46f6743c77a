package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionState   Action = "state"
	ActionSelect  Action = "select"
	ActionNumeric Action = "numeric"
	ActionReview  Action = "review"
	ActionNext    Action = "next"
	ActionSkip    Action = "skip"
	ActionJump    Action = "jump"
	ActionSubmit  Action = "submit"
	ActionPing    Action = "ping"
)

// Request is one client message. Only the fields of its action are read.
type Request struct {
	Action   Action `json:"action"`
	OptionID string `json:"option_id,omitempty"`
	Text     string `json:"text,omitempty"`
	Marked   *bool  `json:"marked,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState      Event = "state"
	EventTick       Event = "tick"
	EventSubmitting Event = "submitting"
	EventSubmitted  Event = "submitted"
	EventClosed     Event = "closed"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// Message is the server envelope.
type Message struct {
	Event Event `json:"event"`
	Data  any   `json:"data,omitempty"`
}

// TickData is pushed on every stream tick.
type TickData struct {
	RemainingSeconds int `json:"remaining_seconds"`
	CurrentIndex     int `json:"current_index"`
	TimeSpent        int `json:"time_spent"`
}

// ErrorData carries an API error code.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
