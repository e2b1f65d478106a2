package gen

import (
	"strings"
	"unicode"
)

// applyCase transforms an identifier into the requested case style.
// Unknown or empty styles preserve the input.
func applyCase(name, style string) string {
	switch style {
	case "camel":
		return toCamelCase(name)
	case "pascal":
		return toPascalCase(name)
	case "snake":
		return toSnakeCase(name)
	default:
		return name
	}
}

// splitWords breaks an identifier on underscores and lower-to-upper
// boundaries.
func splitWords(s string) []string {
	var words []string
	var current strings.Builder
	var prev rune

	for _, r := range s {
		switch {
		case r == '_':
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		case unicode.IsUpper(r) && prev != 0 && !unicode.IsUpper(prev):
			words = append(words, current.String())
			current.Reset()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
		prev = r
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func toPascalCase(s string) string {
	var b strings.Builder
	for _, w := range splitWords(s) {
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}

func toCamelCase(s string) string {
	p := toPascalCase(s)
	if p == "" {
		return ""
	}
	return strings.ToLower(p[:1]) + p[1:]
}

func toSnakeCase(s string) string {
	var words []string
	for _, w := range splitWords(s) {
		if w != "" {
			words = append(words, strings.ToLower(w))
		}
	}
	return strings.Join(words, "_")
}
