package runs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/earthcube/ingest-monitor/runs"
)

func TestDecodePage(t *testing.T) {
	t.Run("full envelope", func(t *testing.T) {
		payload := `{
			"data": {
				"runsOrError": {
					"__typename": "Runs",
					"results": [
						{
							"runId": "run-1",
							"jobName": "oceandata_summon_and_release_job",
							"pipelineName": "oceandata_summon_and_release_job",
							"status": "SUCCESS",
							"startTime": 1700000000.5,
							"endTime": 1700000600.5,
							"creationTime": 1699999990,
							"tags": [
								{"key": "source", "value": "oceandata"},
								{"key": "tenant", "value": "geocodes"}
							],
							"assets": [
								{"key": {"path": ["oceandata", "release"]}}
							]
						},
						{
							"runId": "run-2",
							"pipelineName": "geochem_job",
							"status": "QUEUED",
							"startTime": null,
							"endTime": null
						}
					]
				}
			}
		}`

		page := runs.DecodePage([]byte(payload))
		require.Len(t, page, 2)

		first := page[0]
		require.Equal(t, "run-1", first.RunID)
		require.Equal(t, runs.StatusSuccess, first.Status)
		require.NotNil(t, first.StartTime)
		require.InDelta(t, 1700000000.5, *first.StartTime, 0.001)
		require.Equal(t, []runs.Tag{
			{Key: "source", Value: "oceandata"},
			{Key: "tenant", Value: "geocodes"},
		}, first.Tags)
		require.Equal(t, [][]string{{"oceandata", "release"}}, first.AssetPaths)

		second := page[1]
		require.Equal(t, runs.StatusQueued, second.Status)
		require.Nil(t, second.StartTime)
		require.Nil(t, second.EndTime)
	})

	t.Run("bare envelope without data wrapper", func(t *testing.T) {
		payload := `{"runsOrError": {"__typename": "Runs", "results": [{"runId": "r", "status": "STARTED"}]}}`
		page := runs.DecodePage([]byte(payload))
		require.Len(t, page, 1)
		require.Equal(t, runs.StatusStarted, page[0].Status)
	})

	t.Run("error union degrades to empty", func(t *testing.T) {
		payload := `{"data": {"runsOrError": {"__typename": "PythonError", "message": "boom"}}}`
		require.Empty(t, runs.DecodePage([]byte(payload)))
	})

	t.Run("missing status becomes unknown", func(t *testing.T) {
		payload := `{"runsOrError": {"__typename": "Runs", "results": [{"runId": "r"}]}}`
		page := runs.DecodePage([]byte(payload))
		require.Len(t, page, 1)
		require.Equal(t, runs.StatusUnknown, page[0].Status)
	})

	t.Run("unrecognized status preserved verbatim", func(t *testing.T) {
		payload := `{"runsOrError": {"__typename": "Runs", "results": [{"runId": "r", "status": "CANCELED"}]}}`
		page := runs.DecodePage([]byte(payload))
		require.Equal(t, runs.Status("CANCELED"), page[0].Status)
	})

	t.Run("malformed input degrades to empty", func(t *testing.T) {
		require.Empty(t, runs.DecodePage([]byte("{not json")))
		require.Empty(t, runs.DecodePage(nil))
		require.Empty(t, runs.DecodePage([]byte(`{"data": {}}`)))
	})
}
