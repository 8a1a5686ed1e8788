package acquisition

import (
	"regexp"
	"strconv"
	"strings"
)

// Assignment is one `name = literal` pattern found on a config line.
type Assignment struct {
	Name    string // identifier left of '='
	Literal string // literal text exactly as written, quotes included
	Value   any    // parsed value: string, int64, float64 or bool
	Raw     string // full matched substring
}

// LineParser extracts assignment patterns from one line of config text,
// in match order. Implementations must not inspect surrounding lines.
type LineParser func(line string) []Assignment

// assignRegex matches `name = literal` where the literal is a quoted string
// or a run of characters up to whitespace, a separator or a comment.
var assignRegex = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*=\s*("[^"]*"|'[^']*'|[^\s,;#]+)`)

// ParseLine is the default LineParser. It recognizes quoted strings, integer,
// float and boolean literals; anything else parses as a bare string.
func ParseLine(line string) []Assignment {
	matches := assignRegex.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return nil
	}

	assignments := make([]Assignment, 0, len(matches))
	for _, m := range matches {
		assignments = append(assignments, Assignment{
			Name:    m[1],
			Literal: m[2],
			Value:   parseLiteral(m[2]),
			Raw:     m[0],
		})
	}
	return assignments
}

// parseLiteral converts a literal token to its Go value. A quoted literal
// yields its content with one quote layer stripped.
func parseLiteral(literal string) any {
	if len(literal) >= 2 {
		if (strings.HasPrefix(literal, `"`) && strings.HasSuffix(literal, `"`)) ||
			(strings.HasPrefix(literal, `'`) && strings.HasSuffix(literal, `'`)) {
			return literal[1 : len(literal)-1]
		}
	}
	if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return f
	}
	switch literal {
	case "true", "True":
		return true
	case "false", "False":
		return false
	}
	return literal
}
