package harvest

import (
	"strings"

	"github.com/tipstream/harvester/internal/models"
	"github.com/tipstream/harvester/internal/platforms"
)

// DecisionKind classifies what the store should do with a candidate
type DecisionKind int

const (
	// DecisionNew means no stored item shares (platform, external id);
	// insert the candidate as-is.
	DecisionNew DecisionKind = iota
	// DecisionMergeTags means a stored item exists but lacks one or more of
	// the candidate's tags; persist the merged set.
	DecisionMergeTags
	// DecisionUnchanged means the stored item already carries every
	// candidate tag; no write needed.
	DecisionUnchanged
)

// Decision is the outcome of reconciling one candidate against the store
type Decision struct {
	Kind   DecisionKind
	PostID string
	Tags   []string
}

// Reconcile decides whether a candidate is new, needs a tag merge, or is
// already fully known. The existing post is the store's item for the
// candidate's (platform, external id), or nil.
func Reconcile(candidate platforms.Candidate, existing *models.Post) Decision {
	if existing == nil {
		return Decision{Kind: DecisionNew}
	}

	merged, changed := MergeTags(existing.Tags, candidate.Tags)
	if changed {
		return Decision{Kind: DecisionMergeTags, PostID: existing.ID, Tags: merged}
	}

	return Decision{Kind: DecisionUnchanged, PostID: existing.ID}
}

// MergeTags unions candidate tag hints into an existing tag set. Comparison
// is case-insensitive, stored casing wins for tags already present, and new
// tags keep the candidate's casing appended after the existing ones.
func MergeTags(existing, hints []string) ([]string, bool) {
	seen := make(map[string]bool, len(existing))
	for _, tag := range existing {
		seen[strings.ToLower(tag)] = true
	}

	merged := existing
	changed := false
	for _, hint := range hints {
		folded := strings.ToLower(hint)
		if seen[folded] {
			continue
		}
		if !changed {
			// Copy before the first append so the caller's slice is
			// never mutated in place.
			merged = append([]string(nil), existing...)
			changed = true
		}
		merged = append(merged, hint)
		seen[folded] = true
	}

	return merged, changed
}

// EnsureTag appends the search keyword to a candidate's tag hints unless an
// equivalent tag is already present, so keyword-sourced items always carry
// the keyword that surfaced them.
func EnsureTag(tags []string, keyword string) []string {
	folded := strings.ToLower(keyword)
	for _, tag := range tags {
		if strings.ToLower(tag) == folded {
			return tags
		}
	}
	return append(append([]string(nil), tags...), keyword)
}
