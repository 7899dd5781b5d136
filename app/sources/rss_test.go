package sources

import (
	"testing"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Job Board</title>
    <link>https://boards.example.com</link>
    <item>
      <title>Acme Corp: Backend Engineer</title>
      <link>https://boards.example.com/jobs/101</link>
      <guid>job-101</guid>
      <description>Build Go services.</description>
      <category>Location: Berlin</category>
      <pubDate>Mon, 03 Mar 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Product Designer</title>
      <link>https://boards.example.com/jobs/102</link>
      <guid>job-102</guid>
      <description>Own the design system.</description>
    </item>
  </channel>
</rss>`

func testRSSFetcher(maxRecords int) *RSSFetcher {
	return NewRSSFetcher(&Config{
		Name: "boards",
		URL:  "https://boards.example.com/jobs.rss",
		Type: TypeRSS,
		Settings: Settings{
			Enabled:    true,
			MaxRecords: maxRecords,
			Timeout:    30,
		},
	}, nil, "Job Comb/1.0")
}

func TestRSSParse(t *testing.T) {
	fetcher := testRSSFetcher(100)

	records, err := fetcher.parse([]byte(testFeedXML))
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Text("external_id") != "job-101" {
		t.Errorf("Expected external id 'job-101', got '%s'", first.Text("external_id"))
	}
	if first.Text("title") != "Backend Engineer" {
		t.Errorf("Expected title 'Backend Engineer', got '%s'", first.Text("title"))
	}
	if first.Text("company") != "Acme Corp" {
		t.Errorf("Expected company 'Acme Corp', got '%s'", first.Text("company"))
	}
	if first.Text("location") != "Berlin" {
		t.Errorf("Expected location 'Berlin', got '%s'", first.Text("location"))
	}
	if first.Text("description") != "Build Go services." {
		t.Errorf("Expected description 'Build Go services.', got '%s'", first.Text("description"))
	}
	if first.Text("url") != "https://boards.example.com/jobs/101" {
		t.Errorf("Expected url 'https://boards.example.com/jobs/101', got '%s'", first.Text("url"))
	}
	if first.Time("posted_at") == nil {
		t.Error("Expected posted_at to be set from pubDate")
	}

	second := records[1]
	if second.Text("title") != "Product Designer" {
		t.Errorf("Expected title 'Product Designer', got '%s'", second.Text("title"))
	}
	if second.Text("company") != "" {
		t.Errorf("Expected empty company for headline without separator, got '%s'", second.Text("company"))
	}
	if second.Time("posted_at") != nil {
		t.Error("Expected posted_at to be unset without pubDate")
	}
}

func TestRSSParseRespectsMaxRecords(t *testing.T) {
	fetcher := testRSSFetcher(1)

	records, err := fetcher.parse([]byte(testFeedXML))
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}

	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

func TestRSSParseInvalidPayload(t *testing.T) {
	fetcher := testRSSFetcher(100)

	if _, err := fetcher.parse([]byte("not a feed")); err == nil {
		t.Error("Expected parse error for invalid payload")
	}
}

func TestSplitHeadline(t *testing.T) {
	tests := []struct {
		headline        string
		expectedCompany string
		expectedTitle   string
	}{
		{"Acme Corp: Backend Engineer", "Acme Corp", "Backend Engineer"},
		{"Backend Engineer", "", "Backend Engineer"},
		{"Acme: Platform: Engineer", "Acme", "Platform: Engineer"},
		{"  Spaced Out  ", "", "Spaced Out"},
	}

	for _, tt := range tests {
		company, title := splitHeadline(tt.headline)
		if company != tt.expectedCompany {
			t.Errorf("splitHeadline(%q): expected company '%s', got '%s'", tt.headline, tt.expectedCompany, company)
		}
		if title != tt.expectedTitle {
			t.Errorf("splitHeadline(%q): expected title '%s', got '%s'", tt.headline, tt.expectedTitle, title)
		}
	}
}

func TestCategoryLocation(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		expected   string
	}{
		{"match", []string{"Engineering", "Location: Berlin"}, "Berlin"},
		{"no match", []string{"Engineering", "Full-time"}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := categoryLocation(tt.categories); got != tt.expected {
				t.Errorf("Expected location '%s', got '%s'", tt.expected, got)
			}
		})
	}
}
