package runs

import (
	"github.com/tidwall/gjson"
)

// DecodePage decodes one page of the job-execution query response into runs.
//
// The expected shape is the runsOrError envelope:
//
//	{"data": {"runsOrError": {"__typename": "Runs", "results": [...]}}}
//
// A bare envelope without the "data" wrapper is accepted too. Decoding is
// best-effort by contract: any transport or schema error upstream, a
// non-Runs typename (error unions), or malformed records degrade to an
// empty page. DecodePage never fails.
func DecodePage(data []byte) []Run {
	if !gjson.ValidBytes(data) {
		return nil
	}
	root := gjson.ParseBytes(data)
	envelope := root.Get("data.runsOrError")
	if !envelope.Exists() {
		envelope = root.Get("runsOrError")
	}
	if envelope.Get("__typename").String() != "Runs" {
		return nil
	}

	var page []Run
	envelope.Get("results").ForEach(func(_, item gjson.Result) bool {
		page = append(page, decodeRun(item))
		return true
	})
	return page
}

func decodeRun(item gjson.Result) Run {
	run := Run{
		RunID:        item.Get("runId").String(),
		JobName:      item.Get("jobName").String(),
		PipelineName: item.Get("pipelineName").String(),
		Status:       decodeStatus(item.Get("status")),
		StartTime:    decodeTimestamp(item.Get("startTime")),
		EndTime:      decodeTimestamp(item.Get("endTime")),
		CreationTime: decodeTimestamp(item.Get("creationTime")),
	}
	item.Get("tags").ForEach(func(_, tag gjson.Result) bool {
		run.Tags = append(run.Tags, Tag{
			Key:   tag.Get("key").String(),
			Value: tag.Get("value").String(),
		})
		return true
	})
	item.Get("assets").ForEach(func(_, asset gjson.Result) bool {
		var segments []string
		asset.Get("key.path").ForEach(func(_, seg gjson.Result) bool {
			segments = append(segments, seg.String())
			return true
		})
		if len(segments) > 0 {
			run.AssetPaths = append(run.AssetPaths, segments)
		}
		return true
	})
	return run
}

func decodeStatus(v gjson.Result) Status {
	if !v.Exists() || v.String() == "" {
		return StatusUnknown
	}
	return Status(v.String())
}

func decodeTimestamp(v gjson.Result) *float64 {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	ts := v.Float()
	return &ts
}
