// Package triage classifies new submissions as support requests using
// the moderator-maintained match and exclude pattern documents.
package triage

import (
	"fmt"
	"regexp"
	"strings"
)

// ParsePatternDocument reads a wiki pattern page: one regular expression
// per line, blank lines and # comments skipped.
func ParsePatternDocument(content string) []string {
	var patterns []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// Classifier decides whether a submission looks like a support request:
// at least one match pattern hits and no exclude pattern does.
type Classifier struct {
	match   []*regexp.Regexp
	exclude []*regexp.Regexp
}

func NewClassifier(matchPatterns, excludePatterns []string) (*Classifier, error) {
	match, err := compileAll(matchPatterns)
	if err != nil {
		return nil, fmt.Errorf("support match patterns: %w", err)
	}
	exclude, err := compileAll(excludePatterns)
	if err != nil {
		return nil, fmt.Errorf("support exclude patterns: %w", err)
	}
	return &Classifier{match: match, exclude: exclude}, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// IsSupportRequest checks a submission's title and body against the
// pattern sets.
func (c *Classifier) IsSupportRequest(title, body string) bool {
	text := title + "\n" + body
	for _, re := range c.exclude {
		if re.MatchString(text) {
			return false
		}
	}
	for _, re := range c.match {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
