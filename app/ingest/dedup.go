package ingest

// DefaultSimilarityThreshold is the Jaccard similarity on title+company
// token sets above which two listings with distinct identities are treated
// as near duplicates. Tunable per deployment against labeled fixtures.
const DefaultSimilarityThreshold = 0.85

// Index is a read-only view of the fingerprints already present in the
// store, built once per batch. Classify extends it in memory as it walks a
// batch so that repeats within the same batch are caught too.
type Index struct {
	identities map[string]string
	contents   map[string]string
	tokens     []tokenEntry
}

type tokenEntry struct {
	id     string
	tokens map[string]struct{}
}

// NewIndex builds an Index from the stored corpus.
func NewIndex(existing []Listing) *Index {
	idx := &Index{
		identities: make(map[string]string, len(existing)),
		contents:   make(map[string]string, len(existing)),
	}
	for _, listing := range existing {
		idx.add(listing)
	}
	return idx
}

func (idx *Index) add(listing Listing) {
	if _, ok := idx.identities[listing.IdentityFingerprint]; !ok {
		idx.identities[listing.IdentityFingerprint] = listing.ID
	}
	if _, ok := idx.contents[listing.ContentFingerprint]; !ok {
		idx.contents[listing.ContentFingerprint] = listing.ID
	}
	idx.tokens = append(idx.tokens, tokenEntry{
		id:     listing.ID,
		tokens: tokenize(listing.Title + " " + listing.Company),
	})
}

// Engine decides whether each batch record is new, an exact duplicate, or a
// near duplicate of the stored corpus. Pure computation; the store is never
// mutated here.
type Engine struct {
	threshold float64
}

func NewEngine(threshold float64) *Engine {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Engine{threshold: threshold}
}

// Classify tags every record in the batch. An identity match is
// authoritative and always wins over content similarity, even when the
// surface text has since changed. Near duplicates are surfaced for review,
// never discarded.
func (e *Engine) Classify(batch []Listing, idx *Index) []TaggedListing {
	tagged := make([]TaggedListing, 0, len(batch))

	for _, listing := range batch {
		if matchedID, ok := idx.identities[listing.IdentityFingerprint]; ok {
			tagged = append(tagged, TaggedListing{
				Listing:   listing,
				Decision:  DecisionExactDuplicate,
				MatchedID: matchedID,
			})
			continue
		}

		if matchedID, ok := e.nearMatch(listing, idx); ok {
			tagged = append(tagged, TaggedListing{
				Listing:   listing,
				Decision:  DecisionNearDuplicate,
				MatchedID: matchedID,
			})
			idx.add(listing)
			continue
		}

		tagged = append(tagged, TaggedListing{Listing: listing, Decision: DecisionNew})
		idx.add(listing)
	}

	return tagged
}

func (e *Engine) nearMatch(listing Listing, idx *Index) (string, bool) {
	if matchedID, ok := idx.contents[listing.ContentFingerprint]; ok {
		return matchedID, true
	}

	candidate := tokenize(listing.Title + " " + listing.Company)
	for _, entry := range idx.tokens {
		if jaccard(candidate, entry.tokens) >= e.threshold {
			return entry.id, true
		}
	}

	return "", false
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
