package attribution_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/earthcube/ingest-monitor/runs"
	"github.com/earthcube/ingest-monitor/services/attribution"
)

func TestAttribute(t *testing.T) {
	known := []string{"geochem", "hydrostation", "ocean", "oceandata"}

	t.Run("structured suffix fires before fuzzy fallback", func(t *testing.T) {
		for _, source := range known {
			run := runs.Run{RunID: "r", PipelineName: source + "_summon_and_release_job"}
			attr := attribution.Attribute(run, known)
			require.Equal(t, source, attr.Source)
			require.Equal(t, attribution.MethodFuzzy, attr.Method)
		}
	})

	t.Run("source tag beats name heuristic", func(t *testing.T) {
		// The pipeline name alone would resolve to the known source "ocean";
		// the operator tag is authoritative.
		run := runs.Run{
			RunID:        "r",
			PipelineName: "ocean_summon_and_release_job",
			Tags:         []runs.Tag{{Key: "source", Value: "oceandata"}},
		}
		attr := attribution.Attribute(run, known)
		require.Equal(t, "oceandata", attr.Source)
		require.Equal(t, attribution.MethodTag, attr.Method)
	})

	t.Run("first source-bearing tag wins in tag order", func(t *testing.T) {
		run := runs.Run{
			RunID:        "r",
			PipelineName: "whatever",
			Tags: []runs.Tag{
				{Key: "data-provider", Value: "first"},
				{Key: "source", Value: "second"},
			},
		}
		require.Equal(t, "first", attribution.Attribute(run, known).Source)
	})

	t.Run("tenant tag recorded without affecting the source", func(t *testing.T) {
		run := runs.Run{
			RunID:        "r",
			PipelineName: "geochem_job",
			Tags:         []runs.Tag{{Key: "tenant", Value: "geocodes"}},
		}
		attr := attribution.Attribute(run, known)
		require.Equal(t, "geochem", attr.Source)
		require.Equal(t, "geocodes", attr.Tenant)
		require.NotEqual(t, attribution.MethodTag, attr.Method)
	})

	t.Run("harvester prefix pattern", func(t *testing.T) {
		run := runs.Run{RunID: "r", PipelineName: "gleaner_hydrostation"}
		attr := attribution.Attribute(run, known)
		require.Equal(t, "hydrostation", attr.Source)
		require.Equal(t, attribution.MethodFuzzy, attr.Method)
	})

	t.Run("raw candidate when no known source resolves", func(t *testing.T) {
		run := runs.Run{RunID: "r", PipelineName: "brandnewfeed_ingest_weekly"}
		attr := attribution.Attribute(run, nil)
		require.Equal(t, "brandnewfeed", attr.Source)
		require.Equal(t, attribution.MethodRaw, attr.Method)
	})

	t.Run("unresolvable run goes to the unknown bucket", func(t *testing.T) {
		run := runs.Run{RunID: "r", PipelineName: "maintenance"}
		attr := attribution.Attribute(run, known)
		require.Equal(t, "unknown", attr.Source)
		require.Equal(t, attribution.MethodUnknown, attr.Method)
	})
}

func TestPrefixFromServiceName(t *testing.T) {
	testCases := []struct {
		name    string
		service string
		want    string
		wantOK  bool
	}{
		{name: "simple prefix", service: "sch_oceandata_magic_gleaner", want: "oceandata", wantOK: true},
		{name: "prefix with underscores", service: "sch_ocean_data_v2_magic_gleaner", want: "ocean_data_v2", wantOK: true},
		{name: "wrong prefix", service: "job_oceandata_magic_gleaner"},
		{name: "wrong suffix", service: "sch_oceandata_nabu"},
		{name: "empty middle", service: "sch__magic_gleaner"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := attribution.PrefixFromServiceName(tc.service)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.want, got)
		})
	}
}
