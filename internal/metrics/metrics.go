package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal tracks comment events drained from the feed by outcome
	// (processed, skipped)
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_events_total",
			Help: "Comment events consumed from the feed by outcome",
		},
		[]string{"outcome"},
	)

	// CommandsTotal tracks detected commands by kind and whether they
	// were quoted discussion rather than live invocations
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Commands detected in comment bodies by kind and quoting",
		},
		[]string{"kind", "quoted"},
	)

	// LookupsTotal tracks reference resolution results by category and
	// outcome (exact, suggestions, none, too_long)
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_lookups_total",
			Help: "Reference lookups by category and resolution outcome",
		},
		[]string{"category", "outcome"},
	)

	// GrantsTotal tracks thanks grants by outcome (awarded, self,
	// bot_target, already_granted, custom_flair)
	GrantsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_grants_total",
			Help: "Helper grants by outcome",
		},
		[]string{"outcome"},
	)

	// RepliesTotal tracks outgoing replies by status (sent, dry_run, error)
	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_replies_total",
			Help: "Outgoing replies by delivery status",
		},
		[]string{"status"},
	)

	// FlairTransitionsTotal tracks applied flair transitions by target state
	FlairTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_flair_transitions_total",
			Help: "Applied submission flair transitions by target state",
		},
		[]string{"state"},
	)

	// FeedErrorsTotal counts transient feed failures that triggered the
	// fixed-delay resume
	FeedErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_feed_errors_total",
			Help: "Transient feed errors followed by a backoff and resume",
		},
	)

	// AliasReloadsTotal counts alias dataset snapshot replacements
	AliasReloadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_alias_reloads_total",
			Help: "Alias dataset snapshot reloads keyed off the source revision",
		},
	)
)
