package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

const (
	defaultPollInterval = 5 * time.Second
	pollLimit           = 100

	// seenCap bounds the duplicate-suppression window. 1000 fullnames
	// comfortably covers several poll cycles of a busy subreddit.
	seenCap = 1000
)

// FlairMapper translates a submission's flair text into the bot's flair
// state. Unknown or custom flair text counts as unset, which keeps both
// transitions available.
type FlairMapper struct {
	SupportText string
	SolvedText  string
}

func (m FlairMapper) State(text string) domain.FlairState {
	switch {
	case strings.EqualFold(text, m.SolvedText) && m.SolvedText != "":
		return domain.FlairSolved
	case strings.EqualFold(text, m.SupportText) && m.SupportText != "":
		return domain.FlairSupport
	default:
		return domain.FlairUnset
	}
}

// seenSet is a bounded insertion-ordered set for duplicate suppression
// across poll cycles.
type seenSet struct {
	set   map[string]struct{}
	order []string
}

func newSeenSet() *seenSet {
	return &seenSet{set: make(map[string]struct{})}
}

func (s *seenSet) has(id string) bool {
	_, ok := s.set[id]
	return ok
}

func (s *seenSet) add(id string) {
	if s.has(id) {
		return
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > seenCap {
		delete(s.set, s.order[0])
		s.order = s.order[1:]
	}
}

// CommentFeed polls the subreddit's newest comments and delivers them
// oldest first, each enriched with its parent and submission context.
type CommentFeed struct {
	client       *Client
	subreddit    string
	flairs       FlairMapper
	clock        clockwork.Clock
	pollInterval time.Duration

	buffer []commentData
	seen   *seenSet
	primed bool
}

func NewCommentFeed(client *Client, subreddit string, flairs FlairMapper) *CommentFeed {
	return &CommentFeed{
		client:       client,
		subreddit:    subreddit,
		flairs:       flairs,
		clock:        client.clock,
		pollInterval: defaultPollInterval,
		seen:         newSeenSet(),
	}
}

// Next blocks until a fresh comment is available. The first poll only
// primes the duplicate window so a restart never replays old comments.
func (f *CommentFeed) Next(ctx context.Context) (*domain.CommentEvent, error) {
	for {
		if len(f.buffer) > 0 {
			c := f.buffer[0]
			f.buffer = f.buffer[1:]
			return f.enrich(ctx, c)
		}

		fresh, err := f.poll(ctx)
		if err != nil {
			return nil, err
		}
		if f.primed {
			f.buffer = fresh
		}
		f.primed = true

		if len(f.buffer) == 0 {
			select {
			case <-f.clock.After(f.pollInterval):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
}

// poll fetches the newest comments and returns the unseen ones oldest
// first.
func (f *CommentFeed) poll(ctx context.Context) ([]commentData, error) {
	var page thing
	query := url.Values{"limit": {fmt.Sprint(pollLimit)}}
	if err := f.client.get(ctx, "/r/"+f.subreddit+"/comments", query, &page); err != nil {
		return nil, fmt.Errorf("polling comments: %w", err)
	}
	var data listingData
	if err := json.Unmarshal(page.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding comment listing: %w", err)
	}

	// the listing is newest first; reverse while filtering
	var fresh []commentData
	for i := len(data.Children) - 1; i >= 0; i-- {
		child := data.Children[i]
		if child.Kind != "t1" {
			continue
		}
		var c commentData
		if err := json.Unmarshal(child.Data, &c); err != nil {
			return nil, fmt.Errorf("decoding comment: %w", err)
		}
		if f.seen.has(c.Name) {
			continue
		}
		f.seen.add(c.Name)
		fresh = append(fresh, c)
	}
	return fresh, nil
}

// enrich resolves the parent and submission context in one info call.
func (f *CommentFeed) enrich(ctx context.Context, c commentData) (*domain.CommentEvent, error) {
	ids := c.LinkID
	parentIsComment := strings.HasPrefix(c.ParentID, "t1_")
	if parentIsComment {
		ids = c.ParentID + "," + c.LinkID
	}

	var page thing
	if err := f.client.get(ctx, "/api/info", url.Values{"id": {ids}}, &page); err != nil {
		return nil, fmt.Errorf("enriching comment %s: %w", c.ID, err)
	}
	var data listingData
	if err := json.Unmarshal(page.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding info listing: %w", err)
	}

	ev := &domain.CommentEvent{Comment: c.toComment()}
	for _, child := range data.Children {
		switch child.Kind {
		case "t1":
			var parent commentData
			if err := json.Unmarshal(child.Data, &parent); err != nil {
				return nil, fmt.Errorf("decoding parent comment: %w", err)
			}
			ev.ParentAuthor = parent.Author
			ev.ParentBody = parent.Body
		case "t3":
			var sub submissionData
			if err := json.Unmarshal(child.Data, &sub); err != nil {
				return nil, fmt.Errorf("decoding submission: %w", err)
			}
			ev.SubmissionAuthor = sub.Author
			ev.SubmissionFlair = f.flairs.State(sub.LinkFlairText)
			if !parentIsComment {
				ev.ParentAuthor = sub.Author
			}
		}
	}
	return ev, nil
}

// Submissions re-reads individual submissions by ID.
type Submissions struct {
	client *Client
	flairs FlairMapper
}

func NewSubmissions(client *Client, flairs FlairMapper) *Submissions {
	return &Submissions{client: client, flairs: flairs}
}

func (s *Submissions) Submission(ctx context.Context, submissionID string) (*domain.Submission, error) {
	var page thing
	if err := s.client.get(ctx, "/api/info", url.Values{"id": {"t3_" + submissionID}}, &page); err != nil {
		return nil, fmt.Errorf("fetching submission %s: %w", submissionID, err)
	}
	var data listingData
	if err := json.Unmarshal(page.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding submission %s: %w", submissionID, err)
	}
	for _, child := range data.Children {
		if child.Kind != "t3" {
			continue
		}
		var sub submissionData
		if err := json.Unmarshal(child.Data, &sub); err != nil {
			return nil, fmt.Errorf("decoding submission %s: %w", submissionID, err)
		}
		result := sub.toSubmission(s.flairs)
		return &result, nil
	}
	return nil, fmt.Errorf("submission %s not found", submissionID)
}

// SubmissionFeed polls the subreddit's newest submissions for triage.
type SubmissionFeed struct {
	client       *Client
	subreddit    string
	flairs       FlairMapper
	clock        clockwork.Clock
	pollInterval time.Duration

	buffer []domain.Submission
	seen   *seenSet
	primed bool
}

func NewSubmissionFeed(client *Client, subreddit string, flairs FlairMapper) *SubmissionFeed {
	return &SubmissionFeed{
		client:       client,
		subreddit:    subreddit,
		flairs:       flairs,
		clock:        client.clock,
		pollInterval: defaultPollInterval,
		seen:         newSeenSet(),
	}
}

func (f *SubmissionFeed) NextSubmission(ctx context.Context) (*domain.Submission, error) {
	for {
		if len(f.buffer) > 0 {
			sub := f.buffer[0]
			f.buffer = f.buffer[1:]
			return &sub, nil
		}

		fresh, err := f.poll(ctx)
		if err != nil {
			return nil, err
		}
		if f.primed {
			f.buffer = fresh
		}
		f.primed = true

		if len(f.buffer) == 0 {
			select {
			case <-f.clock.After(f.pollInterval):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
}

func (f *SubmissionFeed) poll(ctx context.Context) ([]domain.Submission, error) {
	var page thing
	query := url.Values{"limit": {fmt.Sprint(pollLimit)}}
	if err := f.client.get(ctx, "/r/"+f.subreddit+"/new", query, &page); err != nil {
		return nil, fmt.Errorf("polling submissions: %w", err)
	}
	var data listingData
	if err := json.Unmarshal(page.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding submission listing: %w", err)
	}

	var fresh []domain.Submission
	for i := len(data.Children) - 1; i >= 0; i-- {
		child := data.Children[i]
		if child.Kind != "t3" {
			continue
		}
		var sub submissionData
		if err := json.Unmarshal(child.Data, &sub); err != nil {
			return nil, fmt.Errorf("decoding submission: %w", err)
		}
		if f.seen.has(sub.Name) {
			continue
		}
		f.seen.add(sub.Name)
		fresh = append(fresh, sub.toSubmission(f.flairs))
	}
	return fresh, nil
}
