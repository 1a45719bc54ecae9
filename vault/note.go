package vault

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/poiesic/notegraph/core"
	"gopkg.in/yaml.v3"
)

// frontmatter is the YAML header persisted at the top of every note file.
type frontmatter struct {
	Title     string    `yaml:"title"`
	Kind      string    `yaml:"kind"`
	Date      time.Time `yaml:"date"`
	Updated   time.Time `yaml:"updated,omitempty"`
	Source    string    `yaml:"source,omitempty"`
	Tags      []string  `yaml:"tags,omitempty"`
	Aliases   []string  `yaml:"aliases,omitempty"`
	Backlinks []string  `yaml:"backlinks,omitempty"`
	Sections  []uint64  `yaml:"sections,omitempty"`
}

const frontmatterDelimiter = "---"

var wikilinkPattern = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|[^\[\]]*)?\]\]`)

// RenderNote serializes a vault entity to its markdown file representation:
// YAML frontmatter, a level-one title heading, then the body verbatim.
func RenderNote(entity *core.VaultEntity) ([]byte, error) {
	fm := frontmatter{
		Title:   entity.Title,
		Kind:    entity.Kind.String(),
		Date:    entity.CreatedAt.UTC(),
		Source:  entity.SourceURL,
		Tags:    entity.Tags,
		Aliases: entity.Aliases,
	}
	if !entity.UpdatedAt.Equal(entity.CreatedAt) {
		fm.Updated = entity.UpdatedAt.UTC()
	}
	for _, s := range entity.Backlinks {
		fm.Backlinks = append(fm.Backlinks, string(s))
	}
	for _, h := range entity.SectionHashes {
		fm.Sections = append(fm.Sections, uint64(h))
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	b.Write(header)
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n\n")
	b.WriteString("# ")
	b.WriteString(entity.Title)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimRight(entity.Body, "\n"))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// ParseNote deserializes a note file into a vault entity. The slug comes
// from the filename, not the content, since it is the entity's identity.
func ParseNote(slug core.Slug, data []byte) (*core.VaultEntity, error) {
	text := string(data)
	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") {
		return nil, fmt.Errorf("note %s: missing frontmatter", slug)
	}

	rest := text[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter+"\n")
	if end < 0 {
		return nil, fmt.Errorf("note %s: unterminated frontmatter", slug)
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &fm); err != nil {
		return nil, fmt.Errorf("note %s: %w", slug, err)
	}

	kind, ok := core.ParseEntityKind(fm.Kind)
	if !ok {
		return nil, fmt.Errorf("note %s: unknown kind %q", slug, fm.Kind)
	}

	body := strings.TrimLeft(rest[end+len(frontmatterDelimiter)+2:], "\n")
	// Drop the title heading; it is regenerated on render.
	if strings.HasPrefix(body, "# ") {
		if idx := strings.Index(body, "\n"); idx >= 0 {
			body = strings.TrimLeft(body[idx+1:], "\n")
		} else {
			body = ""
		}
	}

	entity := &core.VaultEntity{
		ID:        slug,
		Kind:      kind,
		Title:     fm.Title,
		Aliases:   fm.Aliases,
		Body:      strings.TrimRight(body, "\n"),
		SourceURL: fm.Source,
		Tags:      fm.Tags,
		CreatedAt: fm.Date,
		UpdatedAt: fm.Date,
	}
	if !fm.Updated.IsZero() {
		entity.UpdatedAt = fm.Updated
	}
	for _, s := range fm.Backlinks {
		entity.Backlinks = append(entity.Backlinks, core.Slug(s))
	}
	for _, h := range fm.Sections {
		entity.SectionHashes = append(entity.SectionHashes, core.ID(h))
	}
	return entity, nil
}

// ExtractWikilinks returns the link targets referenced in a note body, in
// order of appearance, deduplicated. Targets are the display names inside
// the brackets; resolution to slugs goes through the index.
func ExtractWikilinks(body string) []string {
	matches := wikilinkPattern.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var targets []string
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" {
			continue
		}
		key := core.NormalizeName(target)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		targets = append(targets, target)
	}
	return targets
}
