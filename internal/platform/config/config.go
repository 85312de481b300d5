// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	RedditClientID     string `env:"REDDIT_CLIENT_ID"`
	RedditClientSecret string `env:"REDDIT_CLIENT_SECRET"`
	RedditUsername     string `env:"REDDIT_USERNAME"`
	RedditPassword     string `env:"REDDIT_PASSWORD"`
	// RedditOTP is an optional one-time 2FA token appended to the
	// password grant at startup.
	RedditOTP string `env:"REDDIT_OTP" default:""`
	UserAgent string `env:"REDDIT_USER_AGENT" default:"NothingTechBot/1.0"`

	Subreddit string `env:"SUBREDDIT"`

	SupportFlairTemplateID string `env:"SUPPORT_FLAIR_TEMPLATE_ID"`
	SolvedFlairTemplateID  string `env:"SOLVED_FLAIR_TEMPLATE_ID"`
	SupportFlairText       string `env:"SUPPORT_FLAIR_TEXT" default:"Support"`
	SolvedFlairText        string `env:"SOLVED_FLAIR_TEXT" default:"Solved"`

	BotConfigWikiPage      string `env:"BOT_CONFIG_WIKI_PAGE" default:"techbot/config"`
	LeaderboardWikiPage    string `env:"LEADERBOARD_WIKI_PAGE" default:"techbot/leaderboard"`
	SupportMatchWikiPage   string `env:"SUPPORT_MATCH_WIKI_PAGE" default:"techbot/support-match"`
	SupportExcludeWikiPage string `env:"SUPPORT_EXCLUDE_WIKI_PAGE" default:"techbot/support-exclude"`
	// AliasWikiPage switches the alias dataset to a wiki page; when
	// empty the local file at AliasDatasetPath is used instead.
	AliasWikiPage    string `env:"ALIAS_WIKI_PAGE" default:""`
	AliasDatasetPath string `env:"ALIAS_DATASET_PATH" default:"commands.yaml"`

	// SendResponses false logs would-be replies instead of posting them.
	SendResponses bool          `env:"SEND_RESPONSES" default:"true"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" default:"30s"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"REDDIT_CLIENT_ID":          cfg.RedditClientID,
		"REDDIT_CLIENT_SECRET":      cfg.RedditClientSecret,
		"REDDIT_USERNAME":           cfg.RedditUsername,
		"REDDIT_PASSWORD":           cfg.RedditPassword,
		"SUBREDDIT":                 cfg.Subreddit,
		"SUPPORT_FLAIR_TEMPLATE_ID": cfg.SupportFlairTemplateID,
		"SOLVED_FLAIR_TEMPLATE_ID":  cfg.SolvedFlairTemplateID,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.RetryDelay <= 0 {
		return fmt.Errorf("RETRY_DELAY must be positive, got %s", cfg.RetryDelay)
	}

	return nil
}
