package plano

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	dashOnly = regexp.MustCompile(`^[-–—]+$`)
)

// Normalize collapses whitespace runs into single spaces and trims the result
func Normalize(text string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}

// BlankIfDashOnly normalizes text and returns "" when it is made only of dashes,
// which the source document uses for "not informed"
func BlankIfDashOnly(text string) string {
	text = Normalize(text)
	if dashOnly.MatchString(text) {
		return ""
	}
	return text
}

// Fold removes diacritics so labels match regardless of accents
func Fold(text string) string {
	// Transformers keep state, so each call gets its own chain
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(word string) string {
	if word == "" {
		return ""
	}
	return cases.Title(language.BrazilianPortuguese).String(strings.ToLower(word))
}

// valueAfterColon returns the trimmed text after the first colon of a labelled line
func valueAfterColon(line string) string {
	idx := strings.IndexRune(line, ':')
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}
