package notegen

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/notegraph/core"
)

// renderBody produces the initial note body for a freshly created entity:
// the summary paragraph, then a Related list. Related names that resolved
// to an entity render as wikilinks; the rest stay plain text. Returns the
// slugs that were actually linked so backlinks can be patched.
func renderBody(candidate *core.CandidateEntity, relations Relations) (string, []core.Slug) {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(candidate.Summary))

	lines, links := renderRelatedLines(candidate.RelatedNames, relations)
	if len(lines) > 0 {
		b.WriteString("\n\n## Related\n")
		for _, line := range lines {
			b.WriteString("\n- ")
			b.WriteString(line)
		}
	}
	return b.String(), links
}

// renderMergeSection produces the dated subsection appended on a merge.
// The section content (not the surrounding note) is what gets fingerprinted
// for idempotence, so committing the same outcome twice appends once.
func renderMergeSection(candidate *core.CandidateEntity, relations Relations, now time.Time) (string, []core.Slug) {
	var b strings.Builder
	fmt.Fprintf(&b, "## Update %s\n\n", now.Format("2006-01-02"))
	b.WriteString(strings.TrimSpace(candidate.Summary))

	lines, links := renderRelatedLines(candidate.RelatedNames, relations)
	if len(lines) > 0 {
		b.WriteString("\n\nRelated: ")
		b.WriteString(strings.Join(lines, ", "))
	}
	return b.String(), links
}

// renderSourceBody produces the literature note body for an ingested unit.
func renderSourceBody(unit *core.ContentUnit, linked []*core.VaultEntity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ingested %s.", unit.SourceType)
	if unit.Duration > 0 {
		fmt.Fprintf(&b, " Duration: %s.", unit.Duration.Round(time.Second))
	}

	if len(linked) > 0 {
		b.WriteString("\n\n## Entities\n")
		for _, entity := range linked {
			fmt.Fprintf(&b, "\n- %s", wikilink(entity.ID, entity.Title))
		}
	}
	return b.String()
}

// renderRelatedLines maps related names to display lines: wikilinks for
// resolved names, plain text otherwise.
func renderRelatedLines(relatedNames []string, relations Relations) ([]string, []core.Slug) {
	var (
		lines []string
		links []core.Slug
		seen  = make(map[string]struct{}, len(relatedNames))
	)
	for _, name := range relatedNames {
		norm := core.NormalizeName(name)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}

		if slug, ok := relations[norm]; ok {
			lines = append(lines, wikilink(slug, name))
			links = append(links, slug)
		} else {
			lines = append(lines, name)
		}
	}
	return lines, links
}

// wikilink renders a slug-targeted link with a display label.
func wikilink(slug core.Slug, display string) string {
	if string(slug) == display {
		return "[[" + string(slug) + "]]"
	}
	return "[[" + string(slug) + "|" + display + "]]"
}
