package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rNothingTech/NothingTechBot/internal/adapter/httpserver"
	"github.com/rNothingTech/NothingTechBot/internal/adapter/reddit"
	"github.com/rNothingTech/NothingTechBot/internal/aliases"
	"github.com/rNothingTech/NothingTechBot/internal/dispatch"
	"github.com/rNothingTech/NothingTechBot/internal/domain"
	"github.com/rNothingTech/NothingTechBot/internal/flair"
	"github.com/rNothingTech/NothingTechBot/internal/leaderboard"
	"github.com/rNothingTech/NothingTechBot/internal/platform/config"
	"github.com/rNothingTech/NothingTechBot/internal/platform/logging"
	"github.com/rNothingTech/NothingTechBot/internal/responses"
	"github.com/rNothingTech/NothingTechBot/internal/sanitize"
	"github.com/rNothingTech/NothingTechBot/internal/thanks"
	"github.com/rNothingTech/NothingTechBot/internal/triage"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupResponses pulls the moderator-maintained bot config document and
// parses it into the template store.
func setupResponses(ctx context.Context, wiki *reddit.Wiki, page string) *responses.Store {
	content, _, err := wiki.Get(ctx, page)
	if err != nil {
		slog.Error("Failed to load bot config document", "page", page, "error", err)
		os.Exit(1)
	}
	values, err := responses.ParseDocument(content)
	if err != nil {
		slog.Error("Failed to parse bot config document", "page", page, "error", err)
		os.Exit(1)
	}
	return responses.NewStore(values)
}

// setupSanitizer builds the argument sanitizer from the stop word list
// in the bot config document; a missing list means no stop words.
func setupSanitizer(store *responses.Store) *sanitize.Sanitizer {
	list, err := store.Get(responses.KeyStopWords)
	if err != nil {
		slog.Info("No stop word list configured")
		return sanitize.New(nil)
	}
	return sanitize.NewFromList(list)
}

// setupAliases wires the alias dataset loader against either a wiki page
// or a local file, and verifies the initial snapshot parses.
func setupAliases(cfg *config.Config, wiki *reddit.Wiki, sanitizer *sanitize.Sanitizer) *aliases.Loader {
	var source aliases.Source
	if cfg.AliasWikiPage != "" {
		source = reddit.NewWikiPage(wiki, cfg.AliasWikiPage)
	} else {
		source = aliases.FileSource{Path: cfg.AliasDatasetPath}
	}

	loader := aliases.NewLoader(source, sanitizer)
	index, err := loader.Snapshot()
	if err != nil {
		slog.Error("Failed to load alias dataset", "error", err)
		os.Exit(1)
	}
	slog.Info("Alias dataset loaded", "entries", index.Len())
	return loader
}

// setupTriage compiles the support triage patterns from their wiki
// pages. Missing pages disable triage rather than failing startup.
func setupTriage(ctx context.Context, wiki *reddit.Wiki, matchPage, excludePage string) *triage.Classifier {
	load := func(page string) []string {
		content, _, err := wiki.Get(ctx, page)
		if errors.Is(err, domain.ErrPageNotFound) {
			slog.Info("Triage pattern page missing, skipping", "page", page)
			return nil
		}
		if err != nil {
			slog.Error("Failed to load triage patterns", "page", page, "error", err)
			os.Exit(1)
		}
		return triage.ParsePatternDocument(content)
	}

	classifier, err := triage.NewClassifier(load(matchPage), load(excludePage))
	if err != nil {
		slog.Error("Failed to compile triage patterns", "error", err)
		os.Exit(1)
	}
	return classifier
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "subreddit", cfg.Subreddit, "port", cfg.Port)

	client := reddit.NewClient(reddit.Credentials{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		Username:     cfg.RedditUsername,
		Password:     cfg.RedditPassword,
		OTP:          cfg.RedditOTP,
		UserAgent:    cfg.UserAgent,
	}, clock)

	wiki := reddit.NewWiki(client, cfg.Subreddit)
	directory := reddit.NewDirectory(client)
	actions := reddit.NewActions(client, cfg.Subreddit)
	trees := reddit.NewTrees(client)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 60*time.Second)
	store := setupResponses(startupCtx, wiki, cfg.BotConfigWikiPage)
	sanitizer := setupSanitizer(store)
	loader := setupAliases(cfg, wiki, sanitizer)
	classifier := setupTriage(startupCtx, wiki, cfg.SupportMatchWikiPage, cfg.SupportExcludeWikiPage)
	cancelStartup()

	flairMapper := reddit.FlairMapper{
		SupportText: cfg.SupportFlairText,
		SolvedText:  cfg.SolvedFlairText,
	}
	submissionFeed := reddit.NewSubmissionFeed(client, cfg.Subreddit, flairMapper)

	dispatcher, err := dispatch.New(dispatch.Options{
		Feed:        reddit.NewCommentFeed(client, cfg.Subreddit, flairMapper),
		Actions:     actions,
		Trees:       trees,
		Moderators:  directory,
		UserFlairs:  directory,
		Submissions: reddit.NewSubmissions(client, flairMapper),
		Aliases:     loader,
		Sanitizer:   sanitizer,
		Guard:       thanks.NewGuard(cfg.RedditUsername),
		Leaderboard: leaderboard.NewStore(wiki, cfg.LeaderboardWikiPage, clock),
		Flair: flair.New(flair.TemplateIDs{
			Support: cfg.SupportFlairTemplateID,
			Solved:  cfg.SolvedFlairTemplateID,
		}),
		Responses: store,
		Clock:     clock,

		BotUsername:   cfg.RedditUsername,
		SendResponses: cfg.SendResponses,
		RetryDelay:    cfg.RetryDelay,
	})
	if err != nil {
		slog.Error("Failed to create dispatcher", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Comment loop stopped", "error", err)
		}
	}()
	go func() {
		if err := dispatcher.RunTriage(ctx, submissionFeed, classifier); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Triage loop stopped", "error", err)
		}
	}()

	srv := httpserver.NewServer(cfg.Port, []httpserver.HealthCheck{
		{Name: "reddit", Check: func(ctx context.Context) error {
			_, err := directory.Moderators(ctx, cfg.Subreddit)
			return err
		}},
	})

	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")
		cancel()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		close(done)
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
