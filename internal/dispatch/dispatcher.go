// Package dispatch runs the bot's single-consumer event loop, routing
// detected commands to the resolution, grant and flair components.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rNothingTech/NothingTechBot/internal/aliases"
	"github.com/rNothingTech/NothingTechBot/internal/command"
	"github.com/rNothingTech/NothingTechBot/internal/domain"
	"github.com/rNothingTech/NothingTechBot/internal/flair"
	"github.com/rNothingTech/NothingTechBot/internal/leaderboard"
	"github.com/rNothingTech/NothingTechBot/internal/metrics"
	"github.com/rNothingTech/NothingTechBot/internal/platform/correlation"
	"github.com/rNothingTech/NothingTechBot/internal/platform/retry"
	"github.com/rNothingTech/NothingTechBot/internal/responses"
	"github.com/rNothingTech/NothingTechBot/internal/sanitize"
	"github.com/rNothingTech/NothingTechBot/internal/thanks"
	"github.com/rNothingTech/NothingTechBot/internal/triage"
)

// defaultMaxArgWords bounds lookup arguments that have no per-category
// override; longer arguments are garbage, not queries.
const defaultMaxArgWords = 5

// replyRetryPolicy governs reply posting. Comment creation is the one
// call reddit rate-limits aggressively, so rate-limit rejections back
// off much longer than ordinary transient failures.
var replyRetryPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   2 * time.Second,
	RateLimitBackoff: time.Minute,
	OnRetry: func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Retrying reply", "attempt", attempt, "backoff", backoff, "error", err)
	},
}

func classifyReplyError(err error) retry.Action {
	if strings.Contains(err.Error(), "RATELIMIT") {
		return retry.After
	}
	return retry.Retry
}

// Options wires a Dispatcher.
type Options struct {
	Feed        domain.Feed
	Actions     domain.Actions
	Trees       domain.TreeSource
	Moderators  domain.ModeratorSource
	UserFlairs  domain.UserFlairs
	Submissions domain.SubmissionSource
	Aliases     *aliases.Loader
	Sanitizer   *sanitize.Sanitizer
	Guard       *thanks.Guard
	Leaderboard *leaderboard.Store
	Flair       *flair.Machine
	Responses   *responses.Store
	Clock       clockwork.Clock

	BotUsername string
	// SendResponses false logs would-be replies instead of posting them.
	SendResponses bool
	// RetryDelay is the fixed pause before resuming a failed feed.
	RetryDelay time.Duration
	// MaxArgWords overrides the lookup word budget per category.
	MaxArgWords map[domain.AliasCategory]int
}

// Dispatcher drains one ordered comment feed and processes events
// strictly one at a time. No event starts before the previous one's
// actions completed, which is what makes the thanks guard correct
// without locking.
type Dispatcher struct {
	opts Options

	// flairMu serializes flair transitions between the comment loop and
	// the triage loop; submission flair is the one resource both touch.
	flairMu sync.Mutex
}

// New validates the response template set up front so config typos fail
// at startup instead of silently dropping replies later.
func New(opts Options) (*Dispatcher, error) {
	required := []string{
		responses.KeyFooter,
		responses.KeySolved,
		responses.KeySupport,
		responses.KeyFeedback,
		responses.KeyThanksAck,
		responses.KeyThanksSelf,
		responses.KeyThanksOnce,
		responses.KeyThanksBot,
		responses.KeyThanksCustomFlair,
		responses.KeyThanksParent,
		responses.KeyAnswerParent,
		responses.KeyNoMatch,
		responses.KeyTooLong,
	}
	for kind, category := range map[command.Kind]domain.AliasCategory{
		command.KindLink:     domain.CategoryLink,
		command.KindWiki:     domain.CategoryWiki,
		command.KindGlyph:    domain.CategoryGlyph,
		command.KindApp:      domain.CategoryApp,
		command.KindToy:      domain.CategoryToy,
		command.KindFirmware: domain.CategoryFirmware,
	} {
		required = append(required, responses.UsageKey(kind.Keyword()), responses.FooterKey(category))
	}
	if err := opts.Responses.Require(required...); err != nil {
		return nil, fmt.Errorf("bot config document: %w", err)
	}
	return &Dispatcher{opts: opts}, nil
}

// Run consumes the feed until ctx is cancelled. Transient feed errors
// trigger a fixed-delay pause and a resume; the feed's own resumption
// semantics decide where consumption picks back up.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		ev, err := d.opts.Feed.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.FeedErrorsTotal.Inc()
			slog.WarnContext(ctx, "feed error, backing off", "error", err, "delay", d.opts.RetryDelay)
			select {
			case <-d.opts.Clock.After(d.opts.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		d.Process(ctx, ev)
	}
}

// Process handles a single comment event start to finish. It never
// returns an error: malformed input and policy violations become
// replies or silence, and action failures are logged so the loop keeps
// draining.
func (d *Dispatcher) Process(ctx context.Context, ev *domain.CommentEvent) {
	ctx = correlation.WithID(ctx, correlation.NewID())

	if strings.EqualFold(ev.Author, d.opts.BotUsername) {
		metrics.EventsTotal.WithLabelValues("skipped").Inc()
		return
	}

	slog.DebugContext(ctx, "processing comment",
		"comment", ev.ID, "submission", ev.SubmissionID, "author", ev.Author)

	index, err := d.opts.Aliases.Snapshot()
	if err != nil {
		// a stale snapshot still serves lookups; only a failed initial
		// load leaves index nil
		slog.WarnContext(ctx, "alias snapshot", "error", err)
	}

	detected := command.Detect(ev.Body)
	if len(detected) == 0 {
		metrics.EventsTotal.WithLabelValues("processed").Inc()
		return
	}

	for _, cmd := range detected {
		metrics.CommandsTotal.WithLabelValues(cmd.Kind.String(), fmt.Sprint(cmd.Quoted)).Inc()
		if cmd.Quoted {
			slog.InfoContext(ctx, "quoted command ignored", "kind", cmd.Kind.String())
			continue
		}

		switch cmd.Kind {
		case command.KindSolved:
			d.handleSolved(ctx, ev, false)
		case command.KindAnswer:
			d.handleSolved(ctx, ev, true)
		case command.KindSupport:
			d.handleSupport(ctx, ev)
		case command.KindFeedback:
			d.handleFeedback(ctx, ev)
		case command.KindThanks:
			d.handleThanks(ctx, ev)
		default:
			d.handleLookup(ctx, ev, cmd, index)
		}
	}
	metrics.EventsTotal.WithLabelValues("processed").Inc()
}

// RunTriage consumes the submission feed, flairing support requests. It
// runs independently of the comment loop and only ever performs the
// Unset→Support transition.
func (d *Dispatcher) RunTriage(ctx context.Context, feed domain.SubmissionFeed, classifier *triage.Classifier) error {
	for {
		sub, err := feed.NextSubmission(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.FeedErrorsTotal.Inc()
			slog.WarnContext(ctx, "submission feed error, backing off", "error", err, "delay", d.opts.RetryDelay)
			select {
			case <-d.opts.Clock.After(d.opts.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		if !classifier.IsSupportRequest(sub.Title, sub.Body) {
			continue
		}
		d.triageFlair(ctx, sub)
	}
}

// triageFlair applies the Support transition under the flair lock. The
// submission's flair is re-read first: the feed snapshot may be stale by
// the time the buffer drains, and a submission the comment loop just
// solved must not be downgraded.
func (d *Dispatcher) triageFlair(ctx context.Context, sub *domain.Submission) {
	d.flairMu.Lock()
	defer d.flairMu.Unlock()

	current, err := d.opts.Submissions.Submission(ctx, sub.ID)
	if err != nil {
		slog.ErrorContext(ctx, "submission re-read", "submission", sub.ID, "error", err)
		return
	}
	if !d.opts.Flair.CanTransition(current.Flair, domain.FlairSupport) {
		return
	}
	if err := d.opts.Actions.SelectFlair(ctx, sub.ID, d.opts.Flair.TemplateID(domain.FlairSupport)); err != nil {
		slog.ErrorContext(ctx, "support flair select", "submission", sub.ID, "error", err)
		return
	}
	metrics.FlairTransitionsTotal.WithLabelValues(domain.FlairSupport.String()).Inc()
	slog.InfoContext(ctx, "support request flaired", "submission", sub.ID)
}

// reply posts body (plus the bot footer) under the event's comment,
// honoring the dry-run switch.
func (d *Dispatcher) reply(ctx context.Context, ev *domain.CommentEvent, body string) {
	footer, err := d.opts.Responses.Get(responses.KeyFooter)
	if err != nil {
		// Require() at construction makes this unreachable
		slog.ErrorContext(ctx, "footer lookup", "error", err)
		return
	}
	full := body + "\n\n" + footer

	if !d.opts.SendResponses {
		metrics.RepliesTotal.WithLabelValues("dry_run").Inc()
		slog.InfoContext(ctx, "dry run, reply not sent", "would_reply", full)
		return
	}
	err = retry.DoVoid(ctx, replyRetryPolicy, classifyReplyError, func() error {
		return d.opts.Actions.Reply(ctx, ev.Fullname(), full)
	})
	if err != nil {
		metrics.RepliesTotal.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "reply post", "comment", ev.ID, "error", err)
		return
	}
	metrics.RepliesTotal.WithLabelValues("sent").Inc()
}

func (d *Dispatcher) maxWords(category domain.AliasCategory) int {
	if n, ok := d.opts.MaxArgWords[category]; ok {
		return n
	}
	return defaultMaxArgWords
}
