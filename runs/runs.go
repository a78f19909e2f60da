// Package runs holds the job run model shared by the monitoring core: one Run
// per execution instance of an ingestion pipeline, as reported by the
// job-execution query interface.
package runs

// Status of a job run as reported upstream. Values outside the known set are
// preserved verbatim so that aggregation can still count them in totals.
type Status string

const (
	StatusQueued  Status = "QUEUED"
	StatusStarted Status = "STARTED"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
	StatusUnknown Status = "UNKNOWN"
)

// Tag is one key/value pair of a run's tag set. Tag order is meaningful and
// keys may repeat.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Run is a single job execution record. Runs are created by the upstream
// job-execution API and are read-only once ingested: the core copies and
// derives from them but never mutates them.
//
// Timestamps are Unix seconds; nil means the run has not reached that point
// of its lifecycle yet.
type Run struct {
	RunID        string     `json:"runId"`
	JobName      string     `json:"jobName,omitempty"`
	PipelineName string     `json:"pipelineName"`
	Status       Status     `json:"status"`
	StartTime    *float64   `json:"startTime,omitempty"`
	EndTime      *float64   `json:"endTime,omitempty"`
	CreationTime *float64   `json:"creationTime,omitempty"`
	Tags         []Tag      `json:"tags,omitempty"`
	AssetPaths   [][]string `json:"assetPaths,omitempty"`
}

// Duration returns the run's wall-clock duration in seconds. It reports false
// unless both start and end are present and the end is strictly after the
// start.
func (r *Run) Duration() (float64, bool) {
	if r.StartTime == nil || r.EndTime == nil {
		return 0, false
	}
	d := *r.EndTime - *r.StartTime
	if d <= 0 {
		return 0, false
	}
	return d, true
}

// Tag returns the value of the first tag with the given key.
func (r *Run) Tag(key string) (string, bool) {
	for _, t := range r.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}
