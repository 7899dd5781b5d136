package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hirewire/jobcomb/app/ingest"
)

// Reporter batch-scans the whole stored corpus, listings and interview
// entries alike, and groups duplicate findings. It is deliberately more
// permissive than the streaming identity check: it also surfaces collisions
// the pipeline could not have caught, such as manually entered records
// colliding with fetched ones. Read-only and safe to run repeatedly.
type Reporter struct{}

func NewReporter() *Reporter {
	return &Reporter{}
}

// Run audits the corpus. Exact groups share a fully normalized text key;
// near groups share only the content key (title+company+location for
// listings, question for entries) without being textually identical.
func (r *Reporter) Run(listings []ingest.Listing, entries []Entry) *Report {
	report := &Report{TotalRecords: len(listings) + len(entries)}

	ids := make(map[string][]string)
	exactKeys := make(map[string][]string)
	contentKeys := make(map[string][]string)

	for _, listing := range listings {
		ids[listing.ID] = append(ids[listing.ID], listing.ID)
		exactKeys[listingExactKey(listing)] = append(exactKeys[listingExactKey(listing)], listing.ID)
		contentKeys[listingContentKey(listing)] = append(contentKeys[listingContentKey(listing)], listing.ID)
	}
	for _, entry := range entries {
		ids[entry.ID] = append(ids[entry.ID], entry.ID)
		exactKeys[entryExactKey(entry)] = append(exactKeys[entryExactKey(entry)], entry.ID)
		contentKeys[entryContentKey(entry)] = append(contentKeys[entryContentKey(entry)], entry.ID)
	}

	for _, members := range ids {
		if len(members) > 1 {
			report.DuplicateIdentifiers++
		}
	}

	inExactGroup := make(map[string]string)
	for key, members := range exactKeys {
		if len(members) < 2 {
			continue
		}
		group := newGroup(GroupExact, key, members)
		for _, id := range group.IDs {
			inExactGroup[id] = key
		}
		report.Groups = append(report.Groups, group)
		report.ExactDuplicates++
	}

	for key, members := range contentKeys {
		if len(members) < 2 {
			continue
		}
		if coveredByExactGroup(members, inExactGroup) {
			continue
		}
		report.Groups = append(report.Groups, newGroup(GroupNear, key, members))
	}

	sort.Slice(report.Groups, func(i, j int) bool {
		if report.Groups[i].Kind != report.Groups[j].Kind {
			return report.Groups[i].Kind == GroupExact
		}
		return report.Groups[i].Key < report.Groups[j].Key
	})

	report.IsClean = len(report.Groups) == 0 && report.DuplicateIdentifiers == 0
	report.Recommendations = r.recommend(report)

	return report
}

func (r *Reporter) recommend(report *Report) []string {
	if report.IsClean {
		return nil
	}

	var recommendations []string
	if report.ExactDuplicates > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"remove %d exact duplicate group(s), keeping the earliest record in each", report.ExactDuplicates))
	}
	if report.DuplicateIdentifiers > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"investigate %d identifier(s) shared by multiple records; identifiers must be unique", report.DuplicateIdentifiers))
	}
	if near := len(report.Groups) - report.ExactDuplicates; near > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"review %d near duplicate group(s) flagged by content similarity", near))
	}
	return recommendations
}

func newGroup(kind GroupKind, key string, members []string) Group {
	ids := append([]string(nil), members...)
	sort.Strings(ids)
	return Group{Kind: kind, Key: key, IDs: ids, Representative: ids[0]}
}

// coveredByExactGroup reports whether every member already sits in the same
// exact group, in which case a second near group would only repeat it.
func coveredByExactGroup(members []string, inExactGroup map[string]string) bool {
	first, ok := inExactGroup[members[0]]
	if !ok {
		return false
	}
	for _, id := range members[1:] {
		if inExactGroup[id] != first {
			return false
		}
	}
	return true
}

func listingExactKey(l ingest.Listing) string {
	return strings.Join([]string{
		"listing",
		ingest.NormalizeText(l.Title),
		ingest.NormalizeText(l.Company),
		ingest.NormalizeText(l.Location),
		ingest.NormalizeText(l.Description),
	}, "|")
}

func listingContentKey(l ingest.Listing) string {
	return strings.Join([]string{
		"listing",
		ingest.NormalizeText(l.Title),
		ingest.NormalizeText(l.Company),
		ingest.NormalizeText(l.Location),
	}, "|")
}

func entryExactKey(e Entry) string {
	return strings.Join([]string{
		"entry",
		ingest.NormalizeText(e.Question),
		ingest.NormalizeText(e.Answer),
	}, "|")
}

func entryContentKey(e Entry) string {
	return "entry|" + ingest.NormalizeText(e.Question)
}
