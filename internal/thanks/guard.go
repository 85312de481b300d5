// Package thanks enforces the once-per-thread rule for helper grants.
package thanks

import (
	"context"
	"regexp"
	"strings"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

// GrantKeyword is the command that awards a point.
const GrantKeyword = "thanks"

// confirmationPattern is the canonical registered-confirmation the bot
// posts under a grant. The guard recognizes earlier grants by this
// pattern, so it lives here rather than in the hot-reloadable response
// templates.
const confirmationPattern = "Thanks registered for %s"

var confirmationRe = regexp.MustCompile(`(?i)thanks registered for (u/[\w-]+)`)

// Confirmation renders the registered-confirmation body for a recipient.
func Confirmation(recipient string) string {
	return strings.Replace(confirmationPattern, "%s", domain.Mention(recipient), 1)
}

// ConfirmationRecipient extracts the addressed recipient from a
// registered confirmation, or ok=false when body is not one.
func ConfirmationRecipient(body string) (string, bool) {
	m := confirmationRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Guard decides whether a grant may proceed within a thread.
type Guard struct {
	botUsername string
}

func NewGuard(botUsername string) *Guard {
	return &Guard{botUsername: botUsername}
}

// IsSelfGrant rejects a grant whose recipient is the granting actor,
// regardless of any prior history or moderator status.
func (g *Guard) IsSelfGrant(actor, recipient string) bool {
	return strings.EqualFold(actor, recipient)
}

// IsBotTarget reports whether the grant is aimed at the bot itself. Such
// grants get a static acknowledgement and never touch the leaderboard.
func (g *Guard) IsBotTarget(recipient string) bool {
	return strings.EqualFold(recipient, g.botUsername)
}

// AlreadyGranted walks the submission's full comment tree looking for a
// prior grant to the same recipient: a comment by the submission author
// containing the grant keyword, with a direct bot reply whose registered
// confirmation addresses that recipient.
//
// The walk is an explicit depth-first stack over lazily materialized
// nodes. It tolerates arbitrary depth and width and never assumes the
// whole tree is resident.
func (g *Guard) AlreadyGranted(ctx context.Context, roots []domain.CommentNode, submissionAuthor, recipient string) (bool, error) {
	recipient = domain.Mention(recipient)
	trigger := "!" + GrantKeyword

	stack := make([]domain.CommentNode, len(roots))
	copy(stack, roots)

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		replies, err := node.Replies(ctx)
		if err != nil {
			return false, err
		}

		c := node.Comment()
		if strings.EqualFold(c.Author, submissionAuthor) && strings.Contains(strings.ToLower(c.Body), trigger) {
			for _, reply := range replies {
				rc := reply.Comment()
				if !strings.EqualFold(rc.Author, g.botUsername) {
					continue
				}
				addressed, ok := ConfirmationRecipient(rc.Body)
				if ok && strings.EqualFold(addressed, recipient) {
					return true, nil
				}
			}
		}

		stack = append(stack, replies...)
	}
	return false, nil
}
