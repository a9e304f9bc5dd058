// Package i18n localizes user-facing error and status messages.
// Translations are compiled into the binary; unknown languages fall back to English.
package i18n

import (
	"fmt"
	"strings"
)

// DefaultLang is used when a key or language is not found.
const DefaultLang = "en"

// Translate returns a localized string for key in lang.
// Extra args are passed to fmt.Sprintf. An unknown key is returned as-is.
func Translate(key, lang string, args ...interface{}) string {
	if lang == "" {
		lang = DefaultLang
	}

	langMap, ok := translations[key]
	if !ok {
		return key
	}

	tmpl, ok := langMap[lang]
	if !ok {
		tmpl, ok = langMap[DefaultLang]
		if !ok {
			return key
		}
	}

	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// LanguageFromHeader picks the first supported language from an Accept-Language header
func LanguageFromHeader(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if supported[base] {
			return base
		}
	}
	return DefaultLang
}
