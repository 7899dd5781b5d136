package sources

import (
	"context"
	"strings"
	"testing"
)

func testAPIFetcher(appID, appKey string) *APIFetcher {
	return NewAPIFetcher(&Config{
		Name: "adz",
		URL:  "https://api.example.com/jobs/us/search",
		Type: TypeAPI,
		Settings: Settings{
			Enabled:    true,
			MaxRecords: 100,
			Timeout:    30,
		},
		Credentials: Credentials{AppID: appID, AppKey: appKey},
	}, nil, "Job Comb/1.0")
}

func TestAPIFetchSkipsWithoutCredentials(t *testing.T) {
	fetcher := testAPIFetcher("", "")

	records, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected missing credentials to be non-fatal, got: %v", err)
	}
	if records != nil {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestAPIBuildURL(t *testing.T) {
	fetcher := testAPIFetcher("my-id", "my-key")

	pageURL, err := fetcher.buildURL(2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.HasPrefix(pageURL, "https://api.example.com/jobs/us/search/2?") {
		t.Errorf("Expected page number in path, got '%s'", pageURL)
	}
	if !strings.Contains(pageURL, "app_id=my-id") {
		t.Errorf("Expected app_id in query, got '%s'", pageURL)
	}
	if !strings.Contains(pageURL, "app_key=my-key") {
		t.Errorf("Expected app_key in query, got '%s'", pageURL)
	}
	if !strings.Contains(pageURL, "results_per_page=50") {
		t.Errorf("Expected page size in query, got '%s'", pageURL)
	}
}

func TestAPIMapResult(t *testing.T) {
	fetcher := testAPIFetcher("my-id", "my-key")

	record := fetcher.mapResult(apiResult{
		ID:          "987654",
		Title:       "Backend Engineer",
		Description: "Go and Postgres.",
		Company:     apiCompany{DisplayName: "Acme Corp"},
		Location:    apiLocation{DisplayName: "Austin, TX"},
		SalaryMin:   90000,
		SalaryMax:   120000,
		RedirectURL: "https://api.example.com/redirect/987654",
		Created:     "2025-03-03T10:00:00Z",
	})

	if record.Text("external_id") != "987654" {
		t.Errorf("Expected external id '987654', got '%s'", record.Text("external_id"))
	}
	if record.Text("company") != "Acme Corp" {
		t.Errorf("Expected company 'Acme Corp', got '%s'", record.Text("company"))
	}
	if record.Text("location") != "Austin, TX" {
		t.Errorf("Expected location 'Austin, TX', got '%s'", record.Text("location"))
	}
	if v, ok := record.Number("salary_min"); !ok || v != 90000 {
		t.Errorf("Expected salary min 90000, got %v", v)
	}
	if record.Time("posted_at") == nil {
		t.Error("Expected posted_at to be parsed from created timestamp")
	}
}

func TestAPIMapResultInvalidTimestamp(t *testing.T) {
	fetcher := testAPIFetcher("my-id", "my-key")

	record := fetcher.mapResult(apiResult{
		ID:      "1",
		Title:   "Backend Engineer",
		Created: "yesterday",
	})

	if record.Time("posted_at") != nil {
		t.Error("Expected unparseable created timestamp to be dropped")
	}
}
