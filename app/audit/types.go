package audit

// GroupKind classifies a duplicate group.
type GroupKind string

const (
	GroupExact GroupKind = "exact"
	GroupNear  GroupKind = "near"
)

// Group is a set of two or more stored records that collide on a duplicate
// criterion. Representative is the first member in sorted order.
type Group struct {
	Kind           GroupKind
	Key            string
	IDs            []string
	Representative string
}

// Entry is one interview-reference record as seen by the reporter.
type Entry struct {
	ID       string
	Question string
	Answer   string
}

// Report is the corpus-wide audit result consumed by the administration
// surface.
type Report struct {
	TotalRecords         int
	ExactDuplicates      int
	DuplicateIdentifiers int
	Groups               []Group
	IsClean              bool
	Recommendations      []string
}
