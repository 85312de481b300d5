package domain

import "strings"

// --- Model types ---

// Comment is a single comment as delivered by the platform.
type Comment struct {
	ID             string
	Author         string
	Body           string
	ParentFullname string // t1_* for a comment parent, t3_* for a submission parent
	SubmissionID   string
	Subreddit      string
}

// Fullname returns the platform fullname of the comment (t1_<id>).
func (c Comment) Fullname() string {
	return "t1_" + c.ID
}

// ParentIsSubmission reports whether the comment is top-level, i.e. its
// parent is the submission itself rather than another comment.
func (c Comment) ParentIsSubmission() bool {
	return strings.HasPrefix(c.ParentFullname, "t3_")
}

// CommentEvent is one unit of work for the dispatcher: the comment plus the
// surrounding context the collaborator resolves for us up front.
type CommentEvent struct {
	Comment

	// ParentAuthor is the author of the parent comment, or the submission
	// author when the comment is top-level.
	ParentAuthor string
	// ParentBody is the parent comment's text; empty for top-level
	// comments.
	ParentBody       string
	SubmissionAuthor string
	SubmissionFlair  FlairState
}

// AliasCategory names one section of the alias dataset.
type AliasCategory string

const (
	CategoryLink     AliasCategory = "link"
	CategoryWiki     AliasCategory = "wiki"
	CategoryGlyph    AliasCategory = "glyph"
	CategoryApp      AliasCategory = "app"
	CategoryToy      AliasCategory = "toy"
	CategoryFirmware AliasCategory = "firmware"
)

// AliasEntry is one canonical reference entry in the alias dataset.
type AliasEntry struct {
	DisplayName string
	Link        string
	Aliases     []string
	Category    AliasCategory
}

// FlairState is the submission status category the bot may transition.
type FlairState int

const (
	FlairUnset FlairState = iota
	FlairSupport
	FlairSolved
)

func (f FlairState) String() string {
	switch f {
	case FlairSupport:
		return "Support"
	case FlairSolved:
		return "Solved"
	default:
		return "Unset"
	}
}

// Mention renders a username as a platform mention (u/name). Already
// prefixed names pass through unchanged so lookups stay consistent no
// matter which form the caller holds.
func Mention(username string) string {
	if strings.HasPrefix(username, "u/") {
		return username
	}
	return "u/" + username
}
