package ingest

import (
	"testing"
)

func mustCanonicalize(t *testing.T, source string, record RawRecord) Listing {
	t.Helper()

	listing, err := NewCanonicalizer(nil).Canonicalize(source, record)
	if err != nil {
		t.Fatalf("Unexpected canonicalization error: %v", err)
	}
	return listing
}

func TestClassifyNewListing(t *testing.T) {
	engine := NewEngine(DefaultSimilarityThreshold)
	idx := NewIndex(nil)

	listing := mustCanonicalize(t, "acme", RawRecord{
		"external_id": "job-1",
		"title":       "Backend Engineer",
		"company":     "Acme",
		"description": "Go services and Postgres.",
	})

	tagged := engine.Classify([]Listing{listing}, idx)

	if len(tagged) != 1 {
		t.Fatalf("Expected 1 tagged listing, got %d", len(tagged))
	}
	if tagged[0].Decision != DecisionNew {
		t.Errorf("Expected decision '%s', got '%s'", DecisionNew, tagged[0].Decision)
	}
	if tagged[0].MatchedID != "" {
		t.Errorf("Expected empty matched ID, got '%s'", tagged[0].MatchedID)
	}
}

func TestClassifyExactDuplicateOfStored(t *testing.T) {
	engine := NewEngine(DefaultSimilarityThreshold)

	stored := mustCanonicalize(t, "acme", RawRecord{
		"external_id": "job-1",
		"title":       "Backend Engineer",
		"company":     "Acme",
	})
	idx := NewIndex([]Listing{stored})

	// Same external id, edited surface text. Identity wins over content.
	refetched := mustCanonicalize(t, "acme", RawRecord{
		"external_id": "job-1",
		"title":       "Staff Platform Engineer",
		"company":     "Acme Holdings",
	})

	tagged := engine.Classify([]Listing{refetched}, idx)

	if tagged[0].Decision != DecisionExactDuplicate {
		t.Errorf("Expected decision '%s', got '%s'", DecisionExactDuplicate, tagged[0].Decision)
	}
	if tagged[0].MatchedID != stored.ID {
		t.Errorf("Expected matched ID '%s', got '%s'", stored.ID, tagged[0].MatchedID)
	}
}

func TestClassifyRepeatWithinBatch(t *testing.T) {
	engine := NewEngine(DefaultSimilarityThreshold)
	idx := NewIndex(nil)

	record := RawRecord{
		"external_id": "job-7",
		"title":       "QA Engineer",
		"company":     "Beta",
	}
	first := mustCanonicalize(t, "beta", record)
	second := mustCanonicalize(t, "beta", record)

	tagged := engine.Classify([]Listing{first, second}, idx)

	if tagged[0].Decision != DecisionNew {
		t.Errorf("Expected first occurrence '%s', got '%s'", DecisionNew, tagged[0].Decision)
	}
	if tagged[1].Decision != DecisionExactDuplicate {
		t.Errorf("Expected second occurrence '%s', got '%s'", DecisionExactDuplicate, tagged[1].Decision)
	}
	if tagged[1].MatchedID != first.ID {
		t.Errorf("Expected second occurrence matched to '%s', got '%s'", first.ID, tagged[1].MatchedID)
	}
}

func TestClassifyNearDuplicateByContentFingerprint(t *testing.T) {
	engine := NewEngine(DefaultSimilarityThreshold)

	stored := mustCanonicalize(t, "acme", RawRecord{
		"external_id": "job-1",
		"title":       "Frontend Engineer",
		"company":     "Acme",
		"description": "React dashboards.",
	})
	idx := NewIndex([]Listing{stored})

	// Cross-posted under a different provider id, identical content.
	crossPosted := mustCanonicalize(t, "boards", RawRecord{
		"external_id": "posting-991",
		"title":       "Frontend Engineer",
		"company":     "Acme",
		"description": "React dashboards.",
	})

	tagged := engine.Classify([]Listing{crossPosted}, idx)

	if tagged[0].Decision != DecisionNearDuplicate {
		t.Errorf("Expected decision '%s', got '%s'", DecisionNearDuplicate, tagged[0].Decision)
	}
	if tagged[0].MatchedID != stored.ID {
		t.Errorf("Expected matched ID '%s', got '%s'", stored.ID, tagged[0].MatchedID)
	}
}

func TestClassifyNearDuplicateBySimilarity(t *testing.T) {
	engine := NewEngine(DefaultSimilarityThreshold)

	stored := mustCanonicalize(t, "acme", RawRecord{
		"external_id": "job-1",
		"title":       "Senior Backend Engineer Go Postgres Kubernetes",
		"company":     "Acme",
		"description": "Team A.",
	})
	idx := NewIndex([]Listing{stored})

	// One token differs out of seven, well above the similarity threshold.
	variant := mustCanonicalize(t, "boards", RawRecord{
		"external_id": "posting-5",
		"title":       "Senior Backend Engineer Go Postgres Kubernetes",
		"company":     "Acme",
		"description": "Team B, hybrid office setup with different perks entirely.",
	})

	tagged := engine.Classify([]Listing{variant}, idx)

	if tagged[0].Decision != DecisionNearDuplicate {
		t.Errorf("Expected decision '%s', got '%s'", DecisionNearDuplicate, tagged[0].Decision)
	}
}

func TestClassifyDistinctListingsStayNew(t *testing.T) {
	engine := NewEngine(DefaultSimilarityThreshold)

	stored := mustCanonicalize(t, "acme", RawRecord{
		"external_id": "job-1",
		"title":       "Backend Engineer",
		"company":     "Acme",
		"description": "Go services.",
	})
	idx := NewIndex([]Listing{stored})

	unrelated := mustCanonicalize(t, "boards", RawRecord{
		"external_id": "posting-2",
		"title":       "Product Designer",
		"company":     "Globex",
		"description": "Figma all day.",
	})

	tagged := engine.Classify([]Listing{unrelated}, idx)

	if tagged[0].Decision != DecisionNew {
		t.Errorf("Expected decision '%s', got '%s'", DecisionNew, tagged[0].Decision)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{"identical", "senior go engineer", "senior go engineer", 1.0},
		{"disjoint", "go engineer", "product designer", 0.0},
		{"partial", "senior go engineer", "senior go developer", 0.5},
		{"empty", "", "go", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jaccard(tokenize(tt.a), tokenize(tt.b))
			if got != tt.expected {
				t.Errorf("Expected similarity %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}
