package task

// EventType tags an update the session pushes to the interactive surface.
type EventType string

const (
	EventLog            EventType = "log"
	EventProgress       EventType = "progress"
	EventControls       EventType = "controls"
	EventPasswordPrompt EventType = "password_prompt"
	EventResult         EventType = "result"
	EventError          EventType = "error"
)

// Event is one interactive-surface update. Events are emitted in the order
// they were posted to the session loop and never reordered.
type Event struct {
	Type          EventType `json:"type"`
	Message       string    `json:"message,omitempty"`
	Fraction      float64   `json:"fraction,omitempty"`
	Indeterminate bool      `json:"indeterminate,omitempty"`
	Enabled       bool      `json:"enabled,omitempty"`
	File          string    `json:"file,omitempty"`
}
