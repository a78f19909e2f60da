package runner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/earthcube/ingest-monitor/runs"
	"github.com/earthcube/ingest-monitor/services/logclassify"
)

// snapshotFeeds serves one server's collaborator data from captured files.
// Layout under dir:
//
//	runs_recent.json    richest runs page (tags and assets included)
//	runs_success.json   status-filtered pages, one per status
//	runs_failure.json
//	runs_started.json
//	runs_queued.json
//	catalog.yaml        source catalog document
//	tenants.yaml        tenant/activation document
//	logs.json           optional log bucket listing
//
// Every file is optional: a missing file surfaces as fs.ErrNotExist, which
// the monitor degrades to an empty result.
type snapshotFeeds struct {
	dir         string
	queueWindow time.Duration
}

func newSnapshotFeeds(dir string, queueWindow time.Duration) *snapshotFeeds {
	return &snapshotFeeds{dir: dir, queueWindow: queueWindow}
}

func (f *snapshotFeeds) RecentRuns(ctx context.Context) ([]runs.Run, error) {
	return f.readPage(ctx, "runs_recent.json")
}

func (f *snapshotFeeds) RunsByStatus(ctx context.Context, status runs.Status, _ time.Time) ([]runs.Run, error) {
	var name string
	switch status {
	case runs.StatusSuccess:
		name = "runs_success.json"
	case runs.StatusFailure:
		name = "runs_failure.json"
	case runs.StatusStarted:
		name = "runs_started.json"
	case runs.StatusQueued:
		name = "runs_queued.json"
	default:
		return nil, nil
	}
	return f.readPage(ctx, name)
}

func (f *snapshotFeeds) readPage(ctx context.Context, name string) ([]runs.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return nil, err
	}
	return runs.DecodePage(data), nil
}

func (f *snapshotFeeds) CatalogDocument(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(f.dir, "catalog.yaml"))
}

func (f *snapshotFeeds) TenantDocument(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(f.dir, "tenants.yaml"))
}

// QueueDepth counts queued runs created within the trailing queue window.
// Runs without a creation timestamp still count: absence of the field must
// not hide a backlog.
func (f *snapshotFeeds) QueueDepth(ctx context.Context) (int, error) {
	queued, err := f.readPage(ctx, "runs_queued.json")
	if err != nil {
		return 0, err
	}
	floor := float64(time.Now().Add(-f.queueWindow).Unix())
	depth := 0
	for i := range queued {
		if queued[i].CreationTime == nil || *queued[i].CreationTime >= floor {
			depth++
		}
	}
	return depth, nil
}

func (f *snapshotFeeds) ListLogs(ctx context.Context) ([]logclassify.LogObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(f.dir, "logs.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var objects []logclassify.LogObject
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}
