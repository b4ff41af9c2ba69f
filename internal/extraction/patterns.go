package extraction

import (
	"regexp"
	"strings"
)

var (
	// namePattern matches capitalized words at the very start of a document,
	// each separated by exactly one whitespace character (a newline counts)
	namePattern = regexp.MustCompile(`^[A-Z][a-z]+(?:\s[A-Z][a-z]+)*`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// indeedPattern matches an indeed.com résumé profile path, used in place of an email
	indeedPattern = regexp.MustCompile(`indeed\.com/r/[\w-]+/\w+`)

	// phonePattern: optional country code, optional parentheses around the
	// area code, and space, dot, hyphen or nothing between the groups
	phonePattern = regexp.MustCompile(`(?:(?:\+?\d{1,3})?[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
)

// MatchName returns the capitalized words at the start of text
func MatchName(text string) (string, bool) {
	m := strings.TrimSpace(namePattern.FindString(text))
	return m, m != ""
}

// MatchEmail returns the leftmost email address, falling back to the
// leftmost indeed.com profile path
func MatchEmail(text string) (string, bool) {
	if m := emailPattern.FindString(text); m != "" {
		return m, true
	}
	if m := indeedPattern.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

// MatchPhone returns the leftmost phone number with surrounding space trimmed
func MatchPhone(text string) (string, bool) {
	m := strings.TrimSpace(phonePattern.FindString(text))
	return m, m != ""
}
