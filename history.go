package devq

import "strings"

// Role identifies the speaker of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the prefix used for the role in a flat prompt.
func (r Role) Label() string {
	switch r {
	case RoleAssistant:
		return "Assistant"
	default:
		return "User"
	}
}

// Turn is a single exchange in a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// AcknowledgementTurn is inserted between prior history and a new prompt. It
// simulates the model accepting the previous context so that its
// continuation follows on from it.
var AcknowledgementTurn = Turn{Role: RoleAssistant, Text: "Great, keep going"}

// History is the ordered conversation of one analysis run.
type History []Turn

// Render formats the history as "Role: text" lines.
func (h History) Render() string {
	lines := make([]string, 0, len(h))
	for _, t := range h {
		lines = append(lines, t.Role.Label()+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}

// HistoryStore persists the conversation of one run.
type HistoryStore interface {
	Append(turns ...Turn) error
	Load() (History, error)
}
