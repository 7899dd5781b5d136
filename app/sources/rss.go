package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/hirewire/jobcomb/app/ingest"
)

// RSSFetcher pulls job listings from a board's RSS/Atom feed. Many boards
// publish items with a "Company: Job Title" headline; that form is split
// into the two fields, otherwise the author name stands in for the company.
type RSSFetcher struct {
	config    *Config
	client    *http.Client
	userAgent string
	parser    *gofeed.Parser
}

func NewRSSFetcher(config *Config, client *http.Client, userAgent string) *RSSFetcher {
	return &RSSFetcher{
		config:    config,
		client:    client,
		userAgent: userAgent,
		parser:    gofeed.NewParser(),
	}
}

func (f *RSSFetcher) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	data, err := fetchBody(ctx, f.client, f.config.URL, f.userAgent, f.config.Settings.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	return f.parse(data)
}

func (f *RSSFetcher) parse(data []byte) ([]ingest.RawRecord, error) {
	feed, err := f.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	records := make([]ingest.RawRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		if f.config.Settings.MaxRecords > 0 && len(records) >= f.config.Settings.MaxRecords {
			break
		}
		records = append(records, f.mapItem(item))
	}

	return records, nil
}

func (f *RSSFetcher) mapItem(item *gofeed.Item) ingest.RawRecord {
	company, title := splitHeadline(item.Title)
	if company == "" && item.Author != nil {
		company = strings.TrimSpace(item.Author.Name)
	}

	record := ingest.RawRecord{
		"external_id": cmpOr(item.GUID, item.Link),
		"title":       title,
		"company":     company,
		"location":    categoryLocation(item.Categories),
		"description": cmpOr(item.Content, item.Description),
		"url":         item.Link,
	}

	if item.PublishedParsed != nil {
		record["posted_at"] = *item.PublishedParsed
	}

	return record
}

// splitHeadline separates "Company: Job Title" headlines. Headlines without
// the separator are returned as title only.
func splitHeadline(headline string) (company, title string) {
	if before, after, found := strings.Cut(headline, ": "); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "", strings.TrimSpace(headline)
}

// categoryLocation picks a "Location: ..." category when the feed carries
// one; boards without the convention fall through to source defaults.
func categoryLocation(categories []string) string {
	for _, category := range categories {
		if region, found := strings.CutPrefix(category, "Location: "); found {
			return strings.TrimSpace(region)
		}
	}
	return ""
}
