// Package attribution resolves job run records to the logical source they
// belong to.
//
// Tags are authoritative operator-supplied metadata and always win; only when
// no source-bearing tag is present does the pipeline name go through the
// layered pattern chain, fuzzy-matched against the known-source registry.
package attribution

import (
	"strings"

	"github.com/earthcube/ingest-monitor/classify"
	"github.com/earthcube/ingest-monitor/runs"
)

// Method records how a run was attributed.
type Method string

const (
	// MethodTag means a source or provider tag supplied the value directly.
	MethodTag Method = "tag"
	// MethodExact means a known source name was found inside the pipeline name.
	MethodExact Method = "exact"
	// MethodFuzzy means a pipeline-name candidate resolved to a known source.
	MethodFuzzy Method = "fuzzy"
	// MethodRaw means the candidate matched no known source and names an
	// ad hoc category.
	MethodRaw Method = "raw"
	// MethodUnknown means nothing matched.
	MethodUnknown Method = "unknown"
)

// Attribution is the resolved source identity of a run. Tenant is carried
// along when a tenant tag is present but never influences the source itself.
type Attribution struct {
	Source string
	Tenant string
	Method Method
}

// pipelineChain is the ordered pattern chain for pipeline names: the
// structured suffixes first, then the harvester prefix, then a generic
// leading token followed by a separator. Order is a contract — the suffix
// rules must fire before any fuzzy fallback of the generic rule.
var pipelineChain = []classify.Rule{
	classify.Pattern(`^([a-z0-9_]+)_summon_and_release`),
	classify.Pattern(`^([a-z0-9_]+)_pipeline`),
	classify.Pattern(`^([a-z0-9_]+)_job`),
	classify.Pattern(`^([a-z0-9_]+)_ingest`),
	classify.Pattern(`gleaner_([a-z0-9_]+)`),
	classify.Pattern(`^([a-z0-9_]+)[_-]`),
}

// Attribute resolves the source identity of a run against the known-source
// reference set. It never fails: an unresolvable run is attributed to the
// explicit "unknown" category, which participates in aggregation like any
// other source.
func Attribute(run runs.Run, knownSources []string) Attribution {
	attr := Attribution{Source: classify.Unknown, Method: MethodUnknown}

	for _, tag := range run.Tags {
		key := strings.ToLower(tag.Key)
		switch {
		case attr.Method != MethodTag && tag.Value != "" &&
			(strings.Contains(key, "source") || strings.Contains(key, "provider")):
			attr.Source = tag.Value
			attr.Method = MethodTag
		case attr.Tenant == "" && strings.Contains(key, "tenant"):
			attr.Tenant = tag.Value
		}
	}
	if attr.Method == MethodTag {
		return attr
	}

	res := classify.Classify(run.PipelineName, pipelineChain, knownSources)
	attr.Source = res.Category
	attr.Method = methodFromTier(res.Tier)
	return attr
}

func methodFromTier(tier classify.Tier) Method {
	switch tier {
	case classify.TierExact:
		return MethodExact
	case classify.TierFuzzy:
		return MethodFuzzy
	case classify.TierRaw:
		return MethodRaw
	default:
		return MethodUnknown
	}
}

// PrefixFromServiceName extracts the ingest prefix from a scheduler container
// service name of the form sch_<prefix>_magic_gleaner. The prefix itself may
// contain underscores.
func PrefixFromServiceName(name string) (string, bool) {
	if !strings.HasPrefix(name, "sch_") || !strings.HasSuffix(name, "_magic_gleaner") {
		return "", false
	}
	prefix := strings.TrimSuffix(strings.TrimPrefix(name, "sch_"), "_magic_gleaner")
	if prefix == "" {
		return "", false
	}
	return prefix, true
}
