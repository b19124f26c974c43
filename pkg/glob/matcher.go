package glob

import (
	"regexp"
	"strings"
)

// Matcher tests whole strings against a compiled glob pattern.
type Matcher struct {
	pattern string
	re      *regexp.Regexp
}

// Compile converts a glob pattern (literals plus "*") into a Matcher.
// Every regex metacharacter other than "*" is escaped; "*" becomes ".*".
// The result is anchored at both ends so matching is always whole-string.
// Compile never fails: the grammar has no way to produce an invalid
// expression once literals are escaped.
func Compile(pattern string) *Matcher {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		if r == '*' {
			sb.WriteString(".*")
			continue
		}
		sb.WriteString(regexp.QuoteMeta(string(r)))
	}
	sb.WriteString("$")

	return &Matcher{
		pattern: pattern,
		re:      regexp.MustCompile(sb.String()),
	}
}

// Matches reports whether s matches the compiled pattern in full.
func (m *Matcher) Matches(s string) bool {
	return m.re.MatchString(s)
}

// Pattern returns the original glob pattern this Matcher was compiled from.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Match is a convenience one-shot form of Compile(pattern).Matches(s), for
// call sites that don't need to reuse the compiled matcher.
func Match(pattern, s string) bool {
	return Compile(pattern).Matches(s)
}
