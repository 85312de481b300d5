// Package responses holds the canned reply templates the bot posts,
// sourced from the moderator-maintained bot config document.
package responses

import (
	"fmt"
	"strings"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

// Config document keys. Lookup-style commands additionally use
// "usage_<keyword>" and "footer_<category>" keys.
const (
	KeyFooter            = "footer"
	KeyStopWords         = "stop_words"
	KeySolved            = "solved_response"
	KeySupport           = "support_response"
	KeyFeedback          = "feedback_response"
	KeyThanksAck         = "thanks_ack_response"
	KeyThanksSelf        = "thanks_self_response"
	KeyThanksOnce        = "thanks_once_response"
	KeyThanksBot         = "thanks_bot_response"
	KeyThanksCustomFlair = "thanks_custom_flair_response"
	KeyThanksParent      = "thanks_parent_response"
	KeyAnswerParent      = "answer_parent_response"
	KeyNoMatch           = "no_match_response"
	KeyTooLong           = "too_long_response"
)

// UsageKey names the usage-help template of a lookup command.
func UsageKey(keyword string) string {
	return "usage_" + keyword
}

// FooterKey names the per-category footer of a lookup command.
func FooterKey(category domain.AliasCategory) string {
	return "footer_" + string(category)
}

// ParseDocument reads the wiki-hosted bot config: an INI-style document
// with `key = value` lines. Section headers and comment lines are
// skipped; values run to the end of the line.
func ParseDocument(content string) (map[string]string, error) {
	values := make(map[string]string)
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%w: bot config line %d: %q", domain.ErrMalformedDocument, i+1, line)
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return values, nil
}

// Store serves response templates by exact key. Missing keys are
// surfaced as errors instead of silently falling back, so a typo in the
// config document fails during startup validation rather than quietly
// dropping a footer.
type Store struct {
	values map[string]string
}

func NewStore(values map[string]string) *Store {
	return &Store{values: values}
}

// Require verifies every key is present, reporting all missing ones.
func (s *Store) Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if _, ok := s.values[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownResponseKey, strings.Join(missing, ", "))
	}
	return nil
}

// Get returns the template for an exactly matching key.
func (s *Store) Get(key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownResponseKey, key)
	}
	return value, nil
}

// ForUser returns the template with the <user> placeholder replaced by
// the given username's mention.
func (s *Store) ForUser(key, username string) (string, error) {
	value, err := s.Get(key)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(value, "<user>", domain.Mention(username)), nil
}
