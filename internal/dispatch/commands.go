package dispatch

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
	"github.com/rNothingTech/NothingTechBot/internal/flair"
	"github.com/rNothingTech/NothingTechBot/internal/leaderboard"
	"github.com/rNothingTech/NothingTechBot/internal/metrics"
	"github.com/rNothingTech/NothingTechBot/internal/responses"
	"github.com/rNothingTech/NothingTechBot/internal/thanks"
)

// handleSolved runs the Solved transition; with nominate it additionally
// pins the parent comment as the best answer.
func (d *Dispatcher) handleSolved(ctx context.Context, ev *domain.CommentEvent, nominate bool) {
	mods := d.moderatorsFor(ctx, ev.Subreddit)
	if !flair.Authorized(ev.Author, ev.SubmissionAuthor, mods) {
		slog.DebugContext(ctx, "unauthorized solved attempt", "comment", ev.ID, "author", ev.Author)
		return
	}

	if nominate && ev.ParentIsSubmission() {
		d.replyTemplate(ctx, ev, responses.KeyAnswerParent, ev.Author)
		return
	}

	if !d.solveFlair(ctx, ev) {
		return
	}

	if nominate {
		onBehalf := !strings.EqualFold(ev.Author, ev.SubmissionAuthor) && isModerator(ev.Author, mods)
		body := flair.BestAnswer(ev.ParentAuthor, ev.ParentBody, ev.Author, onBehalf)
		if err := d.opts.Actions.PostComment(ctx, ev.SubmissionID, body, true); err != nil {
			slog.ErrorContext(ctx, "best answer post", "submission", ev.SubmissionID, "error", err)
		}
	}

	d.replyTemplate(ctx, ev, responses.KeySolved, ev.Author)
}

// solveFlair applies the Solved transition under the flair lock shared
// with the triage loop, reporting whether the transition happened.
func (d *Dispatcher) solveFlair(ctx context.Context, ev *domain.CommentEvent) bool {
	d.flairMu.Lock()
	defer d.flairMu.Unlock()

	if !d.opts.Flair.CanTransition(ev.SubmissionFlair, domain.FlairSolved) {
		slog.DebugContext(ctx, "submission already solved", "submission", ev.SubmissionID)
		return false
	}
	if err := d.opts.Actions.SelectFlair(ctx, ev.SubmissionID, d.opts.Flair.TemplateID(domain.FlairSolved)); err != nil {
		slog.ErrorContext(ctx, "solved flair select", "submission", ev.SubmissionID, "error", err)
		return false
	}
	metrics.FlairTransitionsTotal.WithLabelValues(domain.FlairSolved.String()).Inc()
	return true
}

// handleSupport answers with the support contact channels, addressed to
// the author of the comment being replied to.
func (d *Dispatcher) handleSupport(ctx context.Context, ev *domain.CommentEvent) {
	d.replyTemplate(ctx, ev, responses.KeySupport, ev.ParentAuthor)
}

func (d *Dispatcher) handleFeedback(ctx context.Context, ev *domain.CommentEvent) {
	d.replyTemplate(ctx, ev, responses.KeyFeedback, ev.Author)
}

// handleThanks runs the grant flow. Priority: self-grant, bot target,
// then the once-per-thread guard for the author path. Moderators
// granting on behalf of the author bypass the guard.
func (d *Dispatcher) handleThanks(ctx context.Context, ev *domain.CommentEvent) {
	if ev.ParentIsSubmission() {
		metrics.GrantsTotal.WithLabelValues("no_parent").Inc()
		d.replyTemplate(ctx, ev, responses.KeyThanksParent, ev.Author)
		return
	}

	actor, recipient := ev.Author, ev.ParentAuthor

	if d.opts.Guard.IsSelfGrant(actor, recipient) {
		metrics.GrantsTotal.WithLabelValues("self").Inc()
		d.replyTemplate(ctx, ev, responses.KeyThanksSelf, actor)
		return
	}
	if d.opts.Guard.IsBotTarget(recipient) {
		metrics.GrantsTotal.WithLabelValues("bot_target").Inc()
		d.replyTemplate(ctx, ev, responses.KeyThanksBot, actor)
		return
	}

	isAuthor := strings.EqualFold(actor, ev.SubmissionAuthor)
	if !isAuthor && !isModerator(actor, d.moderatorsFor(ctx, ev.Subreddit)) {
		slog.DebugContext(ctx, "thanks from non-author ignored", "comment", ev.ID, "author", actor)
		return
	}

	if isAuthor {
		roots, err := d.opts.Trees.Tree(ctx, ev.SubmissionID)
		if err != nil {
			slog.ErrorContext(ctx, "comment tree fetch", "submission", ev.SubmissionID, "error", err)
			return
		}
		already, err := d.opts.Guard.AlreadyGranted(ctx, roots, ev.SubmissionAuthor, recipient)
		if err != nil {
			slog.ErrorContext(ctx, "grant guard walk", "submission", ev.SubmissionID, "error", err)
			return
		}
		if already {
			metrics.GrantsTotal.WithLabelValues("already_granted").Inc()
			d.replyTemplate(ctx, ev, responses.KeyThanksOnce, recipient)
			return
		}
	}

	label, err := d.opts.UserFlairs.UserFlair(ctx, ev.Subreddit, recipient)
	if err != nil {
		slog.WarnContext(ctx, "user flair read", "user", recipient, "error", err)
		label = ""
	}
	if _, custom := leaderboard.ParseFlairLabel(label); custom {
		metrics.GrantsTotal.WithLabelValues("custom_flair").Inc()
		d.replyTemplate(ctx, ev, responses.KeyThanksCustomFlair, recipient)
		return
	}

	points, err := d.opts.Leaderboard.Award(ctx, recipient)
	if err != nil {
		metrics.GrantsTotal.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "leaderboard award", "recipient", recipient, "error", err)
		return
	}
	metrics.GrantsTotal.WithLabelValues("awarded").Inc()

	newLabel := leaderboard.BumpFlairLabel(label, points)
	if err := d.opts.UserFlairs.SetUserFlair(ctx, ev.Subreddit, recipient, newLabel); err != nil {
		slog.WarnContext(ctx, "user flair update", "user", recipient, "error", err)
	}

	ack, err := d.opts.Responses.ForUser(responses.KeyThanksAck, recipient)
	if err != nil {
		slog.ErrorContext(ctx, "response template", "key", responses.KeyThanksAck, "error", err)
		return
	}
	d.reply(ctx, ev, thanks.Confirmation(recipient)+"\n\n"+ack)
}

// replyTemplate posts a canned response with the <user> placeholder
// bound to username.
func (d *Dispatcher) replyTemplate(ctx context.Context, ev *domain.CommentEvent, key, username string) {
	body, err := d.opts.Responses.ForUser(key, username)
	if err != nil {
		slog.ErrorContext(ctx, "response template", "key", key, "error", err)
		return
	}
	d.reply(ctx, ev, body)
}

// moderatorsFor resolves the moderator set of the event's own subreddit.
// A lookup failure degrades to an empty set: flair transitions then only
// honor the submission author, which errs on the safe side.
func (d *Dispatcher) moderatorsFor(ctx context.Context, subreddit string) map[string]struct{} {
	mods, err := d.opts.Moderators.Moderators(ctx, subreddit)
	if err != nil {
		slog.WarnContext(ctx, "moderator list", "subreddit", subreddit, "error", err)
		return nil
	}
	return mods
}

func isModerator(actor string, mods map[string]struct{}) bool {
	for mod := range mods {
		if strings.EqualFold(actor, mod) {
			return true
		}
	}
	return false
}
