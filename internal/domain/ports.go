package domain

import (
	"context"
	"time"
)

// --- Collaborator ports ---
//
// The bot talks to the host platform through these narrow interfaces. The
// reddit adapter implements all of them; tests substitute in-memory fakes.

// Feed delivers comment events strictly in order. Next blocks until an
// event is available; it is the loop's only suspension point.
type Feed interface {
	Next(ctx context.Context) (*CommentEvent, error)
}

// SubmissionFeed delivers newly created submissions for support triage.
type SubmissionFeed interface {
	NextSubmission(ctx context.Context) (*Submission, error)
}

// Submission is a top-level post as delivered by the platform.
type Submission struct {
	ID        string
	Author    string
	Title     string
	Body      string
	Subreddit string
	Flair     FlairState
}

// SubmissionSource re-reads a submission's current state. Feed
// snapshots go stale while buffered; flair decisions need the live
// state.
type SubmissionSource interface {
	Submission(ctx context.Context, submissionID string) (*Submission, error)
}

// Actions is the write side of the platform collaborator.
type Actions interface {
	// Reply posts body as a reply to the thing named by fullname.
	Reply(ctx context.Context, fullname, body string) error
	// SelectFlair applies the flair template to the submission.
	SelectFlair(ctx context.Context, submissionID, flairTemplateID string) error
	// PostComment creates a new top-level comment on the submission,
	// optionally pinned.
	PostComment(ctx context.Context, submissionID, body string, sticky bool) error
}

// CommentNode is one node of a submission's comment tree. Replies
// materializes children on demand, including collapsed "load more"
// placeholders, so callers never assume the whole tree is in memory.
type CommentNode interface {
	Comment() Comment
	Replies(ctx context.Context) ([]CommentNode, error)
}

// TreeSource opens the comment tree of a submission at its roots.
type TreeSource interface {
	Tree(ctx context.Context, submissionID string) ([]CommentNode, error)
}

// WikiStore reads and replaces whole wiki documents. Revised is the
// document's last modification time, used to key hot reloads.
type WikiStore interface {
	Get(ctx context.Context, page string) (content string, revised time.Time, err error)
	Put(ctx context.Context, page, content, reason string) error
}

// ModeratorSource resolves the moderator set of a specific subreddit.
type ModeratorSource interface {
	Moderators(ctx context.Context, subreddit string) (map[string]struct{}, error)
}

// UserFlairs reads and writes a user's flair label within a subreddit.
type UserFlairs interface {
	UserFlair(ctx context.Context, subreddit, username string) (string, error)
	SetUserFlair(ctx context.Context, subreddit, username, label string) error
}
