package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// descriptionPrefixLen bounds how much of the description feeds the content
// fingerprint, so trailing boilerplate edits do not defeat near-duplicate
// detection.
const descriptionPrefixLen = 200

// Defaults are source-specific fallback values applied to missing mandatory
// fields before validation.
type Defaults struct {
	Title    string
	Company  string
	Location string
}

// Canonicalizer maps raw source records into canonical listings and derives
// their identity and content fingerprints. It performs no network or storage
// side effects.
type Canonicalizer struct {
	defaults map[string]Defaults
}

func NewCanonicalizer(defaults map[string]Defaults) *Canonicalizer {
	if defaults == nil {
		defaults = make(map[string]Defaults)
	}
	return &Canonicalizer{defaults: defaults}
}

// Run canonicalizes a batch. Malformed records are dropped and reported as
// *MalformedRecordError values; the rest of the batch is unaffected.
func (c *Canonicalizer) Run(source string, records []RawRecord) ([]Listing, []error) {
	listings := make([]Listing, 0, len(records))
	var rejected []error

	for _, record := range records {
		listing, err := c.Canonicalize(source, record)
		if err != nil {
			rejected = append(rejected, err)
			slog.Warn("Record dropped during canonicalization", "source", source, "error", err)
			continue
		}
		listings = append(listings, listing)
	}

	return listings, rejected
}

// Canonicalize validates one raw record into a Listing or rejects it with a
// *MalformedRecordError.
func (c *Canonicalizer) Canonicalize(source string, record RawRecord) (Listing, error) {
	defaults := c.defaults[source]

	listing := Listing{
		ID:          uuid.NewString(),
		Source:      source,
		ExternalID:  strings.TrimSpace(record.Text("external_id")),
		Title:       fallback(record.Text("title"), defaults.Title),
		Company:     fallback(record.Text("company"), defaults.Company),
		Location:    fallback(record.Text("location"), defaults.Location),
		Description: strings.TrimSpace(record.Text("description")),
		URL:         strings.TrimSpace(record.Text("url")),
		PostedAt:    record.Time("posted_at"),
		ExpiresAt:   record.Time("expires_at"),
	}

	if v, ok := record.Number("salary_min"); ok && v > 0 {
		listing.SalaryMin = &v
	}
	if v, ok := record.Number("salary_max"); ok && v > 0 {
		listing.SalaryMax = &v
	}

	if NormalizeText(listing.Title) == "" {
		return Listing{}, &MalformedRecordError{Source: source, ExternalID: listing.ExternalID, Field: "title"}
	}
	if NormalizeText(listing.Company) == "" {
		return Listing{}, &MalformedRecordError{Source: source, ExternalID: listing.ExternalID, Field: "company"}
	}

	listing.IdentityFingerprint = identityFingerprint(source, listing.ExternalID, listing.Title, listing.Company, listing.Location)
	listing.ContentFingerprint = contentFingerprint(listing.Title, listing.Company, listing.Description)

	return listing, nil
}

// identityFingerprint prefers the source-scoped external id when present, so
// re-fetching the same posting converges to one identity even if its surface
// text was edited. Without an external id the identity derives from the
// normalized title + company + location.
func identityFingerprint(source, externalID, title, company, location string) string {
	if externalID != "" {
		return hashKey(fmt.Sprintf("id|%s|%s", source, externalID))
	}
	return hashKey(fmt.Sprintf("fields|%s|%s|%s",
		NormalizeText(title), NormalizeText(company), NormalizeText(location)))
}

// contentFingerprint hashes the normalized semantic fields. It is only used
// for near-duplicate comparison, never as primary identity.
func contentFingerprint(title, company, description string) string {
	desc := NormalizeText(description)
	if len(desc) > descriptionPrefixLen {
		desc = desc[:descriptionPrefixLen]
	}
	return hashKey(fmt.Sprintf("content|%s|%s|%s",
		NormalizeText(title), NormalizeText(company), desc))
}

func hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

func fallback(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}
