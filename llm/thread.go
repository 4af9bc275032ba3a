package llm

import (
	"strings"

	"github.com/fwojciec/devq"
)

// Thread renders prompt as the next user turn of history, in the flat
// "Role: text" form the endpoint expects. With prior history, the
// acknowledgement turn is placed between it and the new prompt. The result
// always ends with an open assistant turn.
func Thread(prompt string, history devq.History) string {
	user := devq.Turn{Role: devq.RoleUser, Text: prompt}
	turns := devq.History{user}
	if len(history) > 0 {
		turns = make(devq.History, 0, len(history)+2)
		turns = append(turns, history...)
		turns = append(turns, devq.AcknowledgementTurn, user)
	}

	var sb strings.Builder
	sb.WriteString(turns.Render())
	sb.WriteString("\n")
	sb.WriteString(devq.RoleAssistant.Label())
	sb.WriteString(":")
	return sb.String()
}
