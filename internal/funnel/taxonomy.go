package funnel

import "strings"

// Taxonomy maps raw status strings to canonical statuses. A Taxonomy is
// immutable once built and safe for concurrent use.
type Taxonomy struct {
	lookup map[string]Status
}

// legacyAliases is the status vocabulary of the first CRM version, still
// present in older candidate rows.
var legacyAliases = map[string]Status{
	"new":                StatusNew,
	"contacting":         StatusNew,
	"first_contact_done": StatusFirstContactDone,
	"proposing":          StatusSelectingJobs,
	"interviewing":       StatusInterviewConfirmed,
	"offer":              StatusOfferPending,
	"closed_won":         StatusClosedWon,
	"closed_lost":        StatusClosed,
	"pending":            StatusLongTermFollowUp,
	"on_hold":            StatusLostContact,
}

// NewTaxonomy builds a taxonomy from an explicit alias table. Keys are trimmed;
// entries with an empty key or StatusUnclassified are ignored.
func NewTaxonomy(aliases map[string]Status) *Taxonomy {
	lookup := make(map[string]Status, len(aliases))
	for raw, st := range aliases {
		key := strings.TrimSpace(raw)
		if key == "" || st == StatusUnclassified {
			continue
		}
		lookup[key] = st
	}
	return &Taxonomy{lookup: lookup}
}

// DefaultTaxonomy returns a fresh taxonomy covering wire slugs, display
// labels, the emoji-prefixed monthly sheet vocabulary and legacy values.
func DefaultTaxonomy() *Taxonomy {
	aliases := make(map[string]Status, len(Statuses())*3+len(legacyAliases))
	for _, st := range Statuses() {
		aliases[st.String()] = st
		aliases[st.Label()] = st
		aliases[st.sheetLabel()] = st
	}
	for raw, st := range legacyAliases {
		if _, taken := aliases[raw]; taken {
			continue
		}
		aliases[raw] = st
	}
	return NewTaxonomy(aliases)
}

// WithAliases returns a new taxonomy with extra entries layered on top.
// The receiver is left unchanged.
func (t *Taxonomy) WithAliases(extra map[string]Status) *Taxonomy {
	merged := make(map[string]Status, len(t.lookup)+len(extra))
	for raw, st := range t.lookup {
		merged[raw] = st
	}
	for raw, st := range extra {
		merged[raw] = st
	}
	return NewTaxonomy(merged)
}

// Canonicalize resolves a raw status by exact match after trimming.
// Blank and unknown values yield StatusUnclassified.
func (t *Taxonomy) Canonicalize(raw string) Status {
	key := strings.TrimSpace(raw)
	if key == "" || t == nil {
		return StatusUnclassified
	}
	return t.lookup[key]
}

// Len returns the number of entries in the lookup table.
func (t *Taxonomy) Len() int {
	return len(t.lookup)
}
