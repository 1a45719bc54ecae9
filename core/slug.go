package core

import (
	"strings"
	"unicode"
)

// Slug is the stable identifier of a vault entity. It doubles as the note
// filename stem. A slug is derived once from the entity's display name at
// creation time and never changes afterwards.
type Slug string

// SlugFromName derives a filesystem-safe slug from a display name:
// lowercase, hyphen-separated, alphanumerics only.
func SlugFromName(name string) Slug {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return Slug(strings.TrimSuffix(b.String(), "-"))
}

// NormalizeName returns the matching form of an entity name: trimmed,
// lowercased, inner whitespace collapsed. Display names keep their
// original casing; matching always goes through this.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NameTokens splits a name into its normalized tokens, used for the
// fuzzy shared-token overlap rule in resolution.
func NameTokens(name string) []string {
	return strings.Fields(NormalizeName(name))
}
