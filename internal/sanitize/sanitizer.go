// Package sanitize normalizes free-text command arguments before alias
// lookup.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// emoticonToken matches a whole whitespace-delimited token that is a
	// common ASCII emoticon ( :) ;-) xd :p <3 ). These mix letters in, so
	// a plain punctuation strip would leave stray fragments behind.
	emoticonToken = regexp.MustCompile(`^(?:[:;=8x][-'^o]?[)(\[\]dp/\\|*o3]+|<3+|o[._]o|\^\^|t[._]t)$`)
	// emojiChars covers the emoji, symbol and variation-selector planes.
	emojiChars = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{FE00}-\x{FE0F}\x{200D}\x{2190}-\x{21FF}]`)
	// nonTokenChars removes punctuation while keeping letters, digits and
	// whitespace for field splitting.
	nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]`)
)

// Sanitizer strips filler words, emoticons, emoji and punctuation from
// lookup arguments. Sanitization is idempotent: applying it twice yields
// the same string.
type Sanitizer struct {
	stopWords map[string]struct{}
}

// New creates a Sanitizer with the given whole-word stop list.
func New(stopWords []string) *Sanitizer {
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return &Sanitizer{stopWords: set}
}

// NewFromList creates a Sanitizer from a comma-separated stop-word list,
// the format the bot config document uses.
func NewFromList(list string) *Sanitizer {
	return New(strings.Split(list, ","))
}

// Sanitize lower-cases, unicode-normalizes, strips emoticons, emoji and
// punctuation, drops stop words and collapses runs of whitespace.
func (s *Sanitizer) Sanitize(argument string) string {
	// re-created per call, the chain is not safe for concurrent reuse
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	text := strings.ToLower(argument)
	if folded, _, err := transform.String(normFunc, text); err == nil {
		text = folded
	}
	text = emojiChars.ReplaceAllString(text, "")

	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if !emoticonToken.MatchString(f) {
			kept = append(kept, f)
		}
	}
	text = nonTokenChars.ReplaceAllString(strings.Join(kept, " "), "")

	// the punctuation strip can expose a bare emoticon core ("xd." →
	// "xd"), so the token filter runs again to keep one pass a fixed
	// point
	fields = strings.Fields(text)
	kept = fields[:0]
	for _, f := range fields {
		if emoticonToken.MatchString(f) {
			continue
		}
		if _, stop := s.stopWords[f]; stop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// brandWord is the product brand that collides with accessory searches
// ("nothing phone", "nothing ear").
const brandWord = "nothing"

// CollidesWithBrand reports whether the argument is the kind of accessory
// search where the brand word is noise rather than signal.
func CollidesWithBrand(argument string) bool {
	return strings.Contains(argument, "ear") || strings.Contains(argument, "phone")
}

// StripBrand removes the brand word from an already sanitized argument
// and re-collapses whitespace.
func StripBrand(argument string) string {
	fields := strings.Fields(argument)
	kept := fields[:0]
	for _, f := range fields {
		if f != brandWord {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
