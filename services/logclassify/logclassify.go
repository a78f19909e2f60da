// Package logclassify classifies harvester log filenames into their source,
// service, date and severity facets.
//
// It is a lightweight peer of source attribution: each facet is an
// independent first-match-wins rule chain through the shared classifier, and
// the facets are not mutually exclusive — a single filename may yield all of
// them or none.
package logclassify

import (
	"sort"
	"time"

	"github.com/araddon/dateparse"

	"github.com/earthcube/ingest-monitor/classify"
)

// Classification is the best-effort decomposition of one log filename.
type Classification struct {
	Name string `json:"name"`

	Source     string        `json:"source"`
	SourceTier classify.Tier `json:"sourceTier"`

	Service  string `json:"service,omitempty"`
	Severity string `json:"severity,omitempty"`

	// RawDate is the extracted date token; Date is its parsed form, nil when
	// the token did not parse.
	RawDate   string     `json:"rawDate,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	Timestamp string     `json:"timestamp,omitempty"`
}

// sourceChain extracts the owning source: a known source name anywhere in the
// filename, else the leading separator-delimited token.
var sourceChain = []classify.Rule{
	classify.Reference(),
	classify.Pattern(`^([a-z0-9]+)[_\-.]`),
}

// Keyword chains match against a fixed vocabulary, so they run with the
// keyword list as their reference set rather than the known sources.
var (
	serviceKeywords  = []string{"gleaner", "nabu", "summoner", "scheduler", "dagster"}
	severityKeywords = []string{"fatal", "error", "warn", "info", "debug"}

	keywordChain = []classify.Rule{classify.Reference()}
)

var dateChain = []classify.Rule{
	classify.Pattern(`(\d{4}-\d{2}-\d{2})`),
	classify.Pattern(`[_\-.](\d{8})[_\-.]`),
}

var timestampChain = []classify.Rule{
	classify.Pattern(`(\d{2}:\d{2}:\d{2})`),
	classify.Pattern(`[_\-.](\d{10})(?:[_\-.]|$)`),
}

// Classify decomposes a log filename. knownSources feeds the source facet
// only; every other facet uses its own vocabulary. It never fails — facets
// that match nothing stay empty, and the source facet falls back to the
// explicit "unknown" category.
func Classify(name string, knownSources []string) Classification {
	c := Classification{Name: name}

	source := classify.Classify(name, sourceChain, knownSources)
	c.Source = source.Category
	c.SourceTier = source.Tier

	if service := classify.Classify(name, keywordChain, serviceKeywords); service.Tier == classify.TierExact {
		c.Service = service.Category
	}
	if severity := classify.Classify(name, keywordChain, severityKeywords); severity.Tier == classify.TierExact {
		c.Severity = severity.Category
	}
	if date := classify.Classify(name, dateChain, nil); date.Tier == classify.TierRaw {
		c.RawDate = date.Category
		if parsed, err := dateparse.ParseAny(c.RawDate); err == nil {
			utc := parsed.UTC()
			c.Date = &utc
		}
	}
	if ts := classify.Classify(name, timestampChain, nil); ts.Tier == classify.TierRaw {
		c.Timestamp = ts.Category
	}
	return c
}

// LogObject is one listed object of the log bucket, as reported by the
// object-storage collaborator.
type LogObject struct {
	Name         string    `json:"name"`
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
	IsDir        bool      `json:"isDir"`
}

// ClassifiedObject pairs a listed log object with its classification.
type ClassifiedObject struct {
	LogObject
	Classification Classification `json:"classification"`
}

// ClassifyObjects classifies the listed log objects modified at or after the
// cutoff, most recent first. Directory markers are skipped.
func ClassifyObjects(objects []LogObject, knownSources []string, since time.Time) []ClassifiedObject {
	var classified []ClassifiedObject
	for _, obj := range objects {
		if obj.IsDir || obj.LastModified.Before(since) {
			continue
		}
		classified = append(classified, ClassifiedObject{
			LogObject:      obj,
			Classification: Classify(obj.Name, knownSources),
		})
	}
	sort.SliceStable(classified, func(i, j int) bool {
		return classified[i].LastModified.After(classified[j].LastModified)
	})
	return classified
}
