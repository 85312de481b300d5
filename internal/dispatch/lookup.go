package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rNothingTech/NothingTechBot/internal/aliases"
	"github.com/rNothingTech/NothingTechBot/internal/command"
	"github.com/rNothingTech/NothingTechBot/internal/domain"
	"github.com/rNothingTech/NothingTechBot/internal/metrics"
	"github.com/rNothingTech/NothingTechBot/internal/resolver"
	"github.com/rNothingTech/NothingTechBot/internal/responses"
	"github.com/rNothingTech/NothingTechBot/internal/sanitize"
)

// handleLookup resolves a reference command against the current alias
// snapshot and replies with the link, suggestions, or a miss template.
func (d *Dispatcher) handleLookup(ctx context.Context, ev *domain.CommentEvent, cmd command.Parsed, index *aliases.Index) {
	if index == nil {
		slog.ErrorContext(ctx, "lookup without alias dataset", "kind", cmd.Kind.String())
		return
	}
	category := cmd.Kind.Category()

	if !cmd.HasArgument() {
		usage, err := d.opts.Responses.Get(responses.UsageKey(cmd.Kind.Keyword()))
		if err != nil {
			slog.ErrorContext(ctx, "usage template", "kind", cmd.Kind.String(), "error", err)
			return
		}
		metrics.LookupsTotal.WithLabelValues(string(category), "usage").Inc()
		d.reply(ctx, ev, usage)
		return
	}

	argument := d.opts.Sanitizer.Sanitize(cmd.Argument)
	if category == domain.CategoryLink && sanitize.CollidesWithBrand(argument) {
		argument = sanitize.StripBrand(argument)
	}

	result := resolver.Resolve(argument, index.Category(category), d.maxWords(category))
	switch result.Outcome {
	case resolver.OutcomeExact:
		metrics.LookupsTotal.WithLabelValues(string(category), "exact").Inc()
		d.reply(ctx, ev, d.exactReply(category, argument, result.Exact))
	case resolver.OutcomeSuggestions:
		metrics.LookupsTotal.WithLabelValues(string(category), "suggestions").Inc()
		d.reply(ctx, ev, suggestionsReply(argument, result.Suggestions))
	case resolver.OutcomeTooLong:
		metrics.LookupsTotal.WithLabelValues(string(category), "too_long").Inc()
		d.replyTemplate(ctx, ev, responses.KeyTooLong, ev.Author)
	default:
		metrics.LookupsTotal.WithLabelValues(string(category), "none").Inc()
		d.replyTemplate(ctx, ev, responses.KeyNoMatch, ev.Author)
	}
}

// exactReply formats a hit. Anchored links additionally point at the
// parent page, since fragment navigation is unreliable on mobile clients.
func (d *Dispatcher) exactReply(category domain.AliasCategory, argument string, m resolver.Match) string {
	var b strings.Builder
	if idx := strings.Index(m.Link, "#"); idx > 0 {
		fmt.Fprintf(&b, "Here's the link for `%s`: %s\n\n", argument, m.Link)
		fmt.Fprintf(&b, "In case the link doesn't take you to the right section, it's on this page: %s", m.Link[:idx])
	} else {
		fmt.Fprintf(&b, "Here's the link for `%s`: %s", argument, m.Link)
	}
	if footer, err := d.opts.Responses.Get(responses.FooterKey(category)); err == nil && footer != "" {
		b.WriteString("\n\n")
		b.WriteString(footer)
	}
	return b.String()
}

func suggestionsReply(argument string, suggestions []resolver.Suggestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I couldn't find an exact match for `%s`. Did you mean any of the following?\n", argument)
	for _, s := range suggestions {
		fmt.Fprintf(&b, "\n* `%s`: %s", s.Alias, s.Match.Link)
	}
	return b.String()
}
