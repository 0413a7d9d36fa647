package domain

// Screen is a stage of the order flow.
type Screen string

const (
	ScreenWelcome Screen = "welcome"
	ScreenProduct Screen = "product"
	ScreenSpecs   Screen = "specs"
	ScreenContact Screen = "contact"
	ScreenConfirm Screen = "confirm"
	ScreenSuccess Screen = "success"
)

// Screens lists the flow in order.
var Screens = []Screen{ScreenWelcome, ScreenProduct, ScreenSpecs, ScreenContact, ScreenConfirm, ScreenSuccess}

// Index returns the position of s in the flow, or -1.
func (s Screen) Index() int {
	for i, candidate := range Screens {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ExecutionStatus tells whether the session still accepts input.
type ExecutionStatus string

const (
	StatusActive     ExecutionStatus = "active"     // Collecting input
	StatusCompleted  ExecutionStatus = "completed"  // Order submitted
	StatusTerminated ExecutionStatus = "terminated" // Cancelled by the user, nothing submitted
)

// Outcome records what happened when the order was dispatched.
type Outcome struct {
	Channel      Channel  `json:"channel"`
	EmailSent    bool     `json:"email_sent"`
	EmailError   string   `json:"email_error,omitempty"`
	WhatsAppLink string   `json:"whatsapp_link,omitempty"`
	Guidance     []string `json:"guidance,omitempty"`
}

// State is the snapshot of one session.
type State struct {
	SessionID string          `json:"session_id"`
	Screen    Screen          `json:"screen"`
	Status    ExecutionStatus `json:"status"`

	// Profile keys the contact autofill record; empty disables autofill.
	Profile string `json:"profile,omitempty"`

	// Field is the cursor of the conversational walk inside the current screen.
	Field int `json:"field"`

	Draft Draft `json:"draft"`

	// Errors holds the messages of the last rejected input.
	Errors []string `json:"errors,omitempty"`

	// Notice is a one-shot informational message (classifier replies, fallbacks).
	Notice string `json:"notice,omitempty"`

	Outcome *Outcome `json:"outcome,omitempty"`

	History []Screen `json:"history"`

	// Sealed carries an encrypted snapshot when the state is stored as an envelope.
	Sealed string `json:"sealed,omitempty"`
}

// NewState creates a session positioned on the welcome screen.
func NewState(sessionID string) *State {
	return &State{
		SessionID: sessionID,
		Screen:    ScreenWelcome,
		Status:    StatusActive,
		History:   []Screen{ScreenWelcome},
	}
}

// Done reports whether the session no longer accepts input.
func (s *State) Done() bool {
	return s.Status != StatusActive
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Draft = s.Draft.Clone()
	if s.Errors != nil {
		next.Errors = append([]string(nil), s.Errors...)
	}
	if s.History != nil {
		next.History = append([]Screen(nil), s.History...)
	}
	if s.Outcome != nil {
		o := *s.Outcome
		o.Guidance = append([]string(nil), s.Outcome.Guidance...)
		next.Outcome = &o
	}
	return &next
}

// Redacted returns a snapshot without attachment payloads, for responses
// to clients that already hold the files.
func (s *State) Redacted() *State {
	out := s.Snapshot()
	if out == nil {
		return nil
	}
	for i := range out.Draft.Attachments {
		out.Draft.Attachments[i].Payload = ""
	}
	return out
}
