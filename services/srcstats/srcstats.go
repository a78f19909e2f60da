// Package srcstats aggregates attributed job runs into per-source reliability
// and performance statistics for one server and one query window.
//
// Aggregation is a pure function of its input record set: results are built
// fresh on every call, never mutated afterwards and never persisted, so there
// is no state to bleed between servers or invocations.
package srcstats

import (
	"sort"

	"github.com/samber/lo"

	"github.com/earthcube/ingest-monitor/runs"
	"github.com/earthcube/ingest-monitor/services/attribution"
)

// JobDetail is the per-run slice of a source's history kept for failure
// analysis and drill-down.
type JobDetail struct {
	RunID        string      `json:"runId"`
	PipelineName string      `json:"pipelineName"`
	Status       runs.Status `json:"status"`
	StartTime    *float64    `json:"startTime,omitempty"`
	EndTime      *float64    `json:"endTime,omitempty"`
	Duration     *float64    `json:"duration,omitempty"`
}

// SourceStats holds the aggregate statistics of one source on one server for
// one query window. Total always equals the sum of the status buckets plus
// any runs carrying a status outside the known set.
type SourceStats struct {
	Source string `json:"source"`
	Tenant string `json:"tenant,omitempty"`
	Server string `json:"server"`

	TotalJobs   int `json:"totalJobs"`
	SuccessJobs int `json:"successJobs"`
	FailedJobs  int `json:"failedJobs"`
	RunningJobs int `json:"runningJobs"`
	QueuedJobs  int `json:"queuedJobs"`

	// Durations holds one sample in seconds per run with both timestamps
	// present and end strictly after start.
	Durations     []float64   `json:"durations,omitempty"`
	PipelineNames []string    `json:"pipelineNames,omitempty"`
	JobDetails    []JobDetail `json:"jobDetails,omitempty"`

	SuccessRate float64 `json:"successRate"`
	FailureRate float64 `json:"failureRate"`

	// Duration statistics are nil when no run produced a sample.
	AvgDuration    *float64 `json:"avgDuration,omitempty"`
	MinDuration    *float64 `json:"minDuration,omitempty"`
	MaxDuration    *float64 `json:"maxDuration,omitempty"`
	MedianDuration *float64 `json:"medianDuration,omitempty"`
}

// Aggregate attributes every record and folds it into its source's bucket,
// then derives rates and duration statistics once all records are processed.
// The result is deterministic for a fixed record set: bucketing is
// order-independent and the duplicate tie-break happened upstream in the
// normalizer.
func Aggregate(server string, records []runs.Run, knownSources []string) map[string]*SourceStats {
	bySource := make(map[string]*SourceStats)

	for _, run := range records {
		attr := attribution.Attribute(run, knownSources)
		stats, ok := bySource[attr.Source]
		if !ok {
			stats = &SourceStats{Source: attr.Source, Server: server}
			bySource[attr.Source] = stats
		}
		if stats.Tenant == "" {
			stats.Tenant = attr.Tenant
		}

		stats.TotalJobs++
		switch run.Status {
		case runs.StatusSuccess:
			stats.SuccessJobs++
		case runs.StatusFailure:
			stats.FailedJobs++
		case runs.StatusStarted:
			stats.RunningJobs++
		case runs.StatusQueued:
			stats.QueuedJobs++
		}
		// Any other status still counts towards the total above.

		detail := JobDetail{
			RunID:        run.RunID,
			PipelineName: run.PipelineName,
			Status:       run.Status,
			StartTime:    run.StartTime,
			EndTime:      run.EndTime,
		}
		if d, ok := run.Duration(); ok {
			stats.Durations = append(stats.Durations, d)
			detail.Duration = &d
		}
		if run.PipelineName != "" {
			stats.PipelineNames = append(stats.PipelineNames, run.PipelineName)
		}
		stats.JobDetails = append(stats.JobDetails, detail)
	}

	for _, stats := range bySource {
		stats.derive()
	}
	return bySource
}

func (s *SourceStats) derive() {
	s.PipelineNames = lo.Uniq(s.PipelineNames)
	sort.Strings(s.PipelineNames)

	if s.TotalJobs > 0 {
		s.SuccessRate = float64(s.SuccessJobs) / float64(s.TotalJobs) * 100
		s.FailureRate = float64(s.FailedJobs) / float64(s.TotalJobs) * 100
	}

	if len(s.Durations) == 0 {
		return
	}
	sorted := make([]float64, len(s.Durations))
	copy(sorted, s.Durations)
	sort.Float64s(sorted)

	s.MinDuration = ptr(sorted[0])
	s.MaxDuration = ptr(sorted[len(sorted)-1])
	s.AvgDuration = ptr(lo.Sum(sorted) / float64(len(sorted)))
	// Median is the lower-middle element of the sorted sample.
	s.MedianDuration = ptr(sorted[(len(sorted)-1)/2])
}

func ptr(v float64) *float64 { return &v }
