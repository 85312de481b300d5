// Package command extracts bot commands from free-form comment text.
package command

import "github.com/rNothingTech/NothingTechBot/internal/domain"

// Kind is the closed set of commands the bot understands.
type Kind int

const (
	KindSolved Kind = iota
	KindAnswer
	KindSupport
	KindFeedback
	KindThanks
	KindLink
	KindWiki
	KindGlyph
	KindApp
	KindToy
	KindFirmware
)

// detectionOrder fixes routing priority. Commands are not mutually
// exclusive per comment: a later kind still fires after an earlier one.
var detectionOrder = []Kind{
	KindSolved,
	KindAnswer,
	KindSupport,
	KindFeedback,
	KindThanks,
	KindLink,
	KindWiki,
	KindGlyph,
	KindApp,
	KindToy,
	KindFirmware,
}

var keywords = map[Kind]string{
	KindSolved:   "solved",
	KindAnswer:   "answer",
	KindSupport:  "support",
	KindFeedback: "feedback",
	KindThanks:   "thanks",
	KindLink:     "link",
	KindWiki:     "wiki",
	KindGlyph:    "glyph",
	KindApp:      "app",
	KindToy:      "toy",
	KindFirmware: "firmware",
}

// Keyword returns the bare keyword, without the "!" trigger prefix.
func (k Kind) Keyword() string {
	return keywords[k]
}

func (k Kind) String() string {
	return keywords[k]
}

// IsLookup reports whether the kind resolves an argument against the
// alias index.
func (k Kind) IsLookup() bool {
	_, ok := lookupCategories[k]
	return ok
}

// Category maps a lookup kind to its alias dataset category.
func (k Kind) Category() domain.AliasCategory {
	return lookupCategories[k]
}

var lookupCategories = map[Kind]domain.AliasCategory{
	KindLink:     domain.CategoryLink,
	KindWiki:     domain.CategoryWiki,
	KindGlyph:    domain.CategoryGlyph,
	KindApp:      domain.CategoryApp,
	KindToy:      domain.CategoryToy,
	KindFirmware: domain.CategoryFirmware,
}
