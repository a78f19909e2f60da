package classify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/earthcube/ingest-monitor/classify"
)

func TestClassify(t *testing.T) {
	chain := []classify.Rule{
		classify.Reference(),
		classify.Pattern(`^([a-z0-9_]+)_job`),
		classify.Pattern(`^([a-z0-9_]+)[_-]`),
	}

	t.Run("reference containment wins over patterns", func(t *testing.T) {
		res := classify.Classify("run_oceandata_weekly", chain, []string{"oceandata"})
		require.Equal(t, classify.Result{Category: "oceandata", Tier: classify.TierExact}, res)
	})

	t.Run("reference containment is case-insensitive", func(t *testing.T) {
		res := classify.Classify("Run_OceanData_Weekly", chain, []string{"oceandata"})
		require.Equal(t, "oceandata", res.Category)
		require.Equal(t, classify.TierExact, res.Tier)
	})

	t.Run("first match wins, later rules never run", func(t *testing.T) {
		// Both pattern rules would match; only the first is consulted.
		res := classify.Classify("geochem_job_nightly", chain, nil)
		require.Equal(t, classify.Result{Category: "geochem", Tier: classify.TierRaw}, res)
	})

	t.Run("candidate resolved against reference set", func(t *testing.T) {
		res := classify.Classify("geochemx_job", chain, []string{"geochem"})
		require.Equal(t, classify.Result{Category: "geochem", Tier: classify.TierFuzzy}, res)
	})

	t.Run("unresolved candidate returned raw", func(t *testing.T) {
		res := classify.Classify("hydrology_station_job", chain, []string{"zz"})
		// "hydrology_station" resolves to nothing by containment but the lax
		// length test does not apply either (length gap is far above two).
		require.Equal(t, classify.TierRaw, res.Tier)
		require.Equal(t, "hydrology_station", res.Category)
	})

	t.Run("no rule matches", func(t *testing.T) {
		res := classify.Classify("standalone", chain, nil)
		require.Equal(t, classify.Result{Category: classify.Unknown, Tier: classify.TierNone}, res)
	})

	t.Run("empty chain", func(t *testing.T) {
		res := classify.Classify("anything", nil, []string{"anything"})
		require.Equal(t, classify.Unknown, res.Category)
	})
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		name      string
		candidate string
		refs      []string
		want      string
		wantOK    bool
	}{
		{
			name:      "candidate inside reference",
			candidate: "ocean",
			refs:      []string{"oceandata"},
			want:      "oceandata",
			wantOK:    true,
		},
		{
			name:      "reference inside candidate",
			candidate: "oceandata_v2",
			refs:      []string{"oceandata"},
			want:      "oceandata",
			wantOK:    true,
		},
		{
			// The length rule is lax on purpose and pairs unrelated names of
			// similar length; tightening it is a product decision.
			name:      "length difference within two",
			candidate: "geoch",
			refs:      []string{"basin"},
			want:      "basin",
			wantOK:    true,
		},
		{
			name:      "equal member beats an earlier lax match",
			candidate: "ocean",
			refs:      []string{"geochem", "ocean"},
			want:      "ocean",
			wantOK:    true,
		},
		{
			name:      "set order decides among multiple matches",
			candidate: "ocean",
			refs:      []string{"oceansites", "oceandata"},
			want:      "oceansites",
			wantOK:    true,
		},
		{
			name:      "no member qualifies",
			candidate: "verylongcandidatename",
			refs:      []string{"zz"},
			wantOK:    false,
		},
		{
			name:      "empty reference set",
			candidate: "anything",
			wantOK:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := classify.Resolve(tc.candidate, tc.refs)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.want, got)
		})
	}
}
