// Package flair governs submission status transitions and composes the
// pinned best-answer comment.
package flair

import (
	"strings"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

// TemplateIDs maps flair states to the platform's flair template IDs.
type TemplateIDs struct {
	Support string
	Solved  string
}

// Machine is the submission flair state machine. Valid transitions are
// Unset→Support (support triage), Support→Solved and Unset→Solved; a
// solved submission is terminal.
type Machine struct {
	ids TemplateIDs
}

func New(ids TemplateIDs) *Machine {
	return &Machine{ids: ids}
}

// CanTransition reports whether from→to is a legal transition.
func (m *Machine) CanTransition(from, to domain.FlairState) bool {
	switch to {
	case domain.FlairSolved:
		return from == domain.FlairUnset || from == domain.FlairSupport
	case domain.FlairSupport:
		return from == domain.FlairUnset
	default:
		return false
	}
}

// TemplateID returns the platform flair template for a target state.
func (m *Machine) TemplateID(state domain.FlairState) string {
	switch state {
	case domain.FlairSupport:
		return m.ids.Support
	case domain.FlairSolved:
		return m.ids.Solved
	default:
		return ""
	}
}

// Authorized reports whether actor may transition the submission: the
// submission's own author, or a moderator of the submission's subreddit.
// The moderator set must be the one for that specific subreddit.
func Authorized(actor, submissionAuthor string, moderators map[string]struct{}) bool {
	if strings.EqualFold(actor, submissionAuthor) {
		return true
	}
	for mod := range moderators {
		if strings.EqualFold(actor, mod) {
			return true
		}
	}
	return false
}

// BestAnswer composes the pinned nomination comment: the helper's text
// re-indented as block quotes, attributing both nominee and nominator.
// The wording differs when a moderator nominates on the author's behalf.
func BestAnswer(helperAuthor, helperBody, nominator string, nominatorIsMod bool) string {
	var b strings.Builder
	if nominatorIsMod {
		b.WriteString("**Best answer**, nominated by " + domain.Mention(nominator) + " on behalf of the author:\n\n")
	} else {
		b.WriteString("**Best answer**, nominated by " + domain.Mention(nominator) + ":\n\n")
	}

	for _, line := range strings.Split(strings.TrimRight(helperBody, "\n"), "\n") {
		line = strings.TrimRight(line, " ")
		if line == "" {
			b.WriteString(">\n")
		} else {
			b.WriteString("> " + line + "\n")
		}
	}

	b.WriteString("\nAnswer by " + domain.Mention(helperAuthor) + ".")
	return b.String()
}
