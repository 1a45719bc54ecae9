package resolve

import "github.com/poiesic/notegraph/core"

// Decision is the kind of resolution outcome.
type Decision int

const (
	// DecisionCreate means no existing entity matches; a new note gets
	// created under the outcome's slug.
	DecisionCreate Decision = iota + 1
	// DecisionMerge means the candidate matched an existing entity; its
	// summary gets appended to that note.
	DecisionMerge
	// DecisionAmbiguous means resolution could not be trusted; the
	// candidate routes to the staging gate for human review.
	DecisionAmbiguous
)

// String returns the display representation of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionCreate:
		return "create"
	case DecisionMerge:
		return "merge"
	case DecisionAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Outcome is the result of resolving one candidate against the vault
// snapshot.
type Outcome struct {
	Decision Decision

	// Slug is the target: the freshly derived slug for DecisionCreate, the
	// matched entity for DecisionMerge. Empty for DecisionAmbiguous unless
	// exactly one conflicting entity exists, in which case it names it.
	Slug core.Slug

	// Candidates lists the entities an ambiguous outcome could refer to.
	Candidates []core.Slug

	// Confidence is 1.0 for an exact match or a guaranteed-new name and
	// degraded for fuzzy matches. Outcomes below the resolver's threshold
	// are forced to DecisionAmbiguous.
	Confidence float64

	// Reason explains an ambiguous outcome for the staging queue.
	Reason string
}
