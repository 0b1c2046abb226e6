// Package template renders final notification content from named
// placeholders. Values are inserted verbatim; template authors control the
// surrounding markup.
package template

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

var placeholderPattern = regexp.MustCompile(`\{\{[a-z0-9_]+\}\}`)

// Render substitutes every {{name}} placeholder with its value. Unknown
// placeholders are removed, not left literal.
func Render(template string, variables map[string]string) string {
	for key, value := range variables {
		template = strings.ReplaceAll(template, "{{"+key+"}}", value)
	}
	return placeholderPattern.ReplaceAllString(template, "")
}

// FirstName returns the first whitespace-separated token of a full name,
// or the empty string.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

const (
	LocaleItalian = "it"
	LocaleEnglish = "en"
)

var (
	supportedTags    = []language.Tag{language.Italian, language.English}
	supportedLocales = []string{LocaleItalian, LocaleEnglish}
	localeMatcher    = language.NewMatcher(supportedTags)
)

// ResolveLocale walks a fallback chain (explicit booking locale, business
// locale, configured default) and returns the best supported locale.
// An empty or unparseable chain resolves to Italian.
func ResolveLocale(chain ...string) string {
	tags := make([]language.Tag, 0, len(chain))
	for _, candidate := range chain {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		tag, err := language.Parse(candidate)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return LocaleItalian
	}

	_, index, _ := localeMatcher.Match(tags...)
	return supportedLocales[index]
}

// GenericClientName is the locale-appropriate fallback display name used
// when no client name could be resolved.
func GenericClientName(locale string) string {
	if locale == LocaleItalian {
		return "Cliente"
	}
	return "Customer"
}
