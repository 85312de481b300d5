package command

import "strings"

// Parsed is one detected command occurrence within a comment body.
type Parsed struct {
	Kind     Kind
	Keyword  string
	Argument string
	Quoted   bool
}

// HasArgument reports whether the command carried a non-empty argument.
// An empty argument is distinct from a missing keyword and routes to the
// per-command usage reply.
func (p Parsed) HasArgument() bool {
	return p.Argument != ""
}

// Detect scans body for every known command trigger and returns the
// matches in routing priority order. Kinds are not mutually exclusive:
// a single comment can carry both a !solved and a !thanks.
func Detect(body string) []Parsed {
	lower := strings.ToLower(body)
	var out []Parsed
	for _, kind := range detectionOrder {
		trigger := "!" + kind.Keyword()
		if !strings.Contains(lower, trigger) {
			continue
		}
		p := Parse(body, kind.Keyword())
		p.Kind = kind
		out = append(out, p)
	}
	return out
}

// Parse extracts the argument of the first case-insensitive occurrence of
// !keyword in body. The argument runs from just after the keyword to the
// next line break, or to the end of the body when the command is on the
// last line. Callers check containment before invoking; on a missing
// keyword the zero Parsed is returned.
func Parse(body, keyword string) Parsed {
	trigger := "!" + strings.ToLower(keyword)
	lower := strings.ToLower(body)

	start := strings.Index(lower, trigger)
	if start < 0 {
		return Parsed{}
	}
	argStart := start + len(trigger)

	argEnd := len(body)
	if nl := strings.IndexByte(body[argStart:], '\n'); nl >= 0 {
		argEnd = argStart + nl
	}

	return Parsed{
		Keyword:  keyword,
		Argument: strings.TrimSpace(body[argStart:argEnd]),
		Quoted:   IsQuoted(body, keyword),
	}
}

// quotePairs are the wrappings that turn a command into quoted discussion
// rather than a live invocation. The escaped double quote covers commands
// mentioned inside code-fenced JSON or similar.
var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"`", "`"},
	{`\"`, `\"`},
}

// IsQuoted reports whether !keyword appears in body only wrapped in
// matching quote characters. A single unquoted occurrence anywhere makes
// the command live.
func IsQuoted(body, keyword string) bool {
	trigger := "!" + strings.ToLower(keyword)
	lower := strings.ToLower(body)

	quoted := false
	for _, pair := range quotePairs {
		if strings.Contains(lower, pair[0]+trigger+pair[1]) {
			quoted = true
			break
		}
	}
	if !quoted {
		return false
	}

	// Strip every quoted form, then check whether a bare occurrence
	// remains.
	stripped := lower
	for _, pair := range quotePairs {
		stripped = strings.ReplaceAll(stripped, pair[0]+trigger+pair[1], "")
	}
	return !strings.Contains(stripped, trigger)
}
