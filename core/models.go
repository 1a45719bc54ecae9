package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a deterministic content hash used for cache keys and
// merge-section fingerprints.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceType classifies where a piece of content came from.
type SourceType int

const (
	// SourceTypePodcast is audio content reached through a podcast platform
	// or a direct audio file.
	SourceTypePodcast SourceType = iota + 1
	// SourceTypeVideo is video content (YouTube and similar).
	SourceTypeVideo
	// SourceTypeArticle is written web content. Ambiguous URLs default here.
	SourceTypeArticle
)

// String returns the frontmatter representation of the source type.
func (t SourceType) String() string {
	switch t {
	case SourceTypePodcast:
		return "podcast"
	case SourceTypeVideo:
		return "video"
	case SourceTypeArticle:
		return "article"
	default:
		return "unknown"
	}
}

// EntityKind classifies an extracted or persisted entity.
type EntityKind int

const (
	// KindConcept is an idea, principle, framework or mental model.
	KindConcept EntityKind = iota + 1
	// KindPerson is a person mentioned or featured in the content.
	KindPerson
	// KindSource is a book, paper, talk or other referenced work,
	// including the ingested content itself.
	KindSource
)

// String returns the frontmatter representation of the entity kind.
func (k EntityKind) String() string {
	switch k {
	case KindConcept:
		return "concept"
	case KindPerson:
		return "person"
	case KindSource:
		return "source"
	default:
		return "unknown"
	}
}

// ParseEntityKind parses the frontmatter representation of an entity kind.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "concept":
		return KindConcept, true
	case "person":
		return KindPerson, true
	case "source":
		return KindSource, true
	default:
		return 0, false
	}
}

// ContentUnit is a normalized piece of content ready for extraction.
// It is immutable once produced by the normalizer and consumed exactly
// once by the concept extractor.
type ContentUnit struct {
	SourceURL   string
	SourceType  SourceType
	RawText     string
	Title       string
	PublishedAt time.Time     // Zero if the source does not expose one
	Duration    time.Duration // Zero for written content
}

// CandidateEntity is an entity proposed by the extraction capability.
// Candidates are transient: they are never persisted directly and always
// pass through the resolver (or the staging gate) first.
type CandidateEntity struct {
	Kind         EntityKind
	Name         string
	Summary      string
	Aliases      []string // Deduplicated, display casing preserved
	RelatedNames []string // Ordered as produced by extraction
}

// NormalizedName returns the candidate's name in matching form.
// Display casing is preserved in Name; matching always uses this form.
func (c *CandidateEntity) NormalizedName() string {
	return NormalizeName(c.Name)
}

// VaultEntity is a persisted note. Identity is the slug, derived once at
// creation and never changed. Backlinks are the derived reverse-direction
// index: if A's body links to B, then B.Backlinks contains A's slug.
type VaultEntity struct {
	ID            Slug
	Kind          EntityKind
	Title         string
	Aliases       []string
	Body          string
	Backlinks     []Slug
	SectionHashes []ID // Fingerprints of appended merge sections
	SourceURL     string
	Tags          []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasBacklink reports whether the entity records a backlink from the given slug.
func (e *VaultEntity) HasBacklink(from Slug) bool {
	for _, s := range e.Backlinks {
		if s == from {
			return true
		}
	}
	return false
}

// HasSectionHash reports whether the given merge section has already been appended.
func (e *VaultEntity) HasSectionHash(h ID) bool {
	for _, s := range e.SectionHashes {
		if s == h {
			return true
		}
	}
	return false
}

// StagingState is the review state of a staged candidate.
type StagingState int

const (
	// StagingPending awaits a human decision. Pending items never expire.
	StagingPending StagingState = iota + 1
	// StagingApproved has been promoted into the vault.
	StagingApproved
	// StagingRejected has been discarded permanently.
	StagingRejected
)

// String returns the display representation of the staging state.
func (s StagingState) String() string {
	switch s {
	case StagingPending:
		return "pending"
	case StagingApproved:
		return "approved"
	case StagingRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// StagingItem holds a candidate that could not be committed automatically:
// low resolution confidence, a cross-kind name collision, or a wholly
// unresolved content unit after a malformed extraction.
type StagingItem struct {
	ID              string // UUID assigned at creation
	Candidate       CandidateEntity
	Confidence      float64
	ConflictingWith Slug // Empty when there is no conflicting entity
	Reason          string
	State           StagingState
	CreatedAt       time.Time
}
