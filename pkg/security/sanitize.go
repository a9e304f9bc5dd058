package security

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeString trims the input and drops NUL and control characters, keeping newlines and tabs
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

// SanitizeHTML escapes HTML special characters
func SanitizeHTML(input string) string {
	return html.EscapeString(input)
}

// StripHTMLTags removes anything that looks like a tag
func StripHTMLTags(input string) string {
	return htmlTagPattern.ReplaceAllString(input, "")
}

// NormalizeWhitespace collapses whitespace runs into single spaces
func NormalizeWhitespace(input string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(input, " "))
}

// TruncateString cuts input to at most maxLength runes
func TruncateString(input string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= maxLength {
		return input
	}
	return string(runes[:maxLength])
}

// SanitizePhone keeps digits and plus signs
func SanitizePhone(input string) string {
	var b strings.Builder
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeFilename makes an uploaded filename safe to embed in a storage key
func SanitizeFilename(input string) string {
	input = strings.ReplaceAll(input, "..", "")
	input = strings.ReplaceAll(input, "/", "")
	input = strings.ReplaceAll(input, "\\", "")

	var b strings.Builder
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return TruncateString(b.String(), 255)
}

// CleanText prepares free text (reviews, locations, SOS notes) for storage
func CleanText(input string, maxLength int) string {
	return TruncateString(NormalizeWhitespace(StripHTMLTags(SanitizeString(input))), maxLength)
}
