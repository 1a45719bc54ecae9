package extract

import (
	"strings"

	"github.com/poiesic/notegraph/core"
)

// dedupCandidates merges candidates that share a normalized name and kind.
// Models often emit the same entity twice with different casing; merging
// keeps the first occurrence's display name, joins the summaries and unions
// aliases and related names preserving first-seen order.
func dedupCandidates(candidates []core.CandidateEntity) []core.CandidateEntity {
	type dedupKey struct {
		kind core.EntityKind
		name string
	}

	index := make(map[dedupKey]int)
	out := make([]core.CandidateEntity, 0, len(candidates))

	for _, c := range candidates {
		key := dedupKey{kind: c.Kind, name: c.NormalizedName()}
		pos, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, c)
			continue
		}

		existing := &out[pos]
		if c.Summary != "" && c.Summary != existing.Summary {
			if existing.Summary == "" {
				existing.Summary = c.Summary
			} else {
				existing.Summary = existing.Summary + " " + c.Summary
			}
		}
		existing.Aliases = unionStrings(existing.Aliases, c.Aliases)
		existing.RelatedNames = unionStrings(existing.RelatedNames, c.RelatedNames)
	}

	// An alias that duplicates the entity's own name adds nothing.
	for i := range out {
		out[i].Aliases = dropSelfAlias(out[i].Aliases, out[i].NormalizedName())
	}
	return out
}

// unionStrings appends items from extra that base does not already contain,
// comparing case-insensitively, preserving order and display casing.
func unionStrings(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[core.NormalizeName(s)] = struct{}{}
	}
	for _, s := range extra {
		norm := core.NormalizeName(s)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		base = append(base, s)
	}
	return base
}

func dropSelfAlias(aliases []string, normalizedName string) []string {
	var out []string
	for _, a := range aliases {
		if core.NormalizeName(a) == normalizedName || strings.TrimSpace(a) == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}
