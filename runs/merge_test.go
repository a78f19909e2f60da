package runs_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/earthcube/ingest-monitor/runs"
)

func TestBatchSetMerge(t *testing.T) {
	t.Run("all-runs record wins over status batches", func(t *testing.T) {
		id := uuid.NewString()
		rich := runs.Run{
			RunID:        id,
			PipelineName: "oceandata_summon_and_release_job",
			Status:       runs.StatusSuccess,
			Tags:         []runs.Tag{{Key: "source", Value: "oceandata"}},
		}
		thin := runs.Run{RunID: id, PipelineName: "oceandata_summon_and_release_job", Status: runs.StatusSuccess}

		merged := runs.BatchSet{All: []runs.Run{rich}, Succeeded: []runs.Run{thin}}.Merge()
		require.Len(t, merged, 1)
		require.Equal(t, rich, merged[0])
	})

	t.Run("one record per unique identifier across batches", func(t *testing.T) {
		a := runs.Run{RunID: "a", Status: runs.StatusSuccess}
		b := runs.Run{RunID: "b", Status: runs.StatusFailure}
		c := runs.Run{RunID: "c", Status: runs.StatusQueued}

		merged := runs.BatchSet{
			Succeeded: []runs.Run{a},
			Failed:    []runs.Run{b, a},
			Queued:    []runs.Run{c, b},
		}.Merge()
		require.Len(t, merged, 3)
		require.Equal(t, []runs.Run{a, b, c}, merged)
	})

	t.Run("first status batch wins when all-runs page misses the run", func(t *testing.T) {
		succeeded := runs.Run{RunID: "x", Status: runs.StatusSuccess}
		stale := runs.Run{RunID: "x", Status: runs.StatusStarted}

		merged := runs.BatchSet{Succeeded: []runs.Run{succeeded}, Started: []runs.Run{stale}}.Merge()
		require.Equal(t, []runs.Run{succeeded}, merged)
	})

	t.Run("records without identifier are dropped", func(t *testing.T) {
		merged := runs.BatchSet{All: []runs.Run{{PipelineName: "no_id_job"}}}.Merge()
		require.Empty(t, merged)
	})

	t.Run("empty set", func(t *testing.T) {
		require.Empty(t, runs.BatchSet{}.Merge())
	})
}

func TestRunDuration(t *testing.T) {
	ts := func(v float64) *float64 { return &v }

	testCases := []struct {
		name     string
		run      runs.Run
		want     float64
		complete bool
	}{
		{name: "both ends present", run: runs.Run{StartTime: ts(100), EndTime: ts(160)}, want: 60, complete: true},
		{name: "not started", run: runs.Run{EndTime: ts(160)}},
		{name: "not ended", run: runs.Run{StartTime: ts(100)}},
		{name: "end before start", run: runs.Run{StartTime: ts(160), EndTime: ts(100)}},
		{name: "zero duration", run: runs.Run{StartTime: ts(100), EndTime: ts(100)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := tc.run.Duration()
			require.Equal(t, tc.complete, ok)
			require.Equal(t, tc.want, d)
		})
	}
}
