// Package monitor orchestrates one analysis pass per server: registry
// extraction, the overlapping run queries, normalization, per-source
// aggregation and alert evaluation.
//
// The core computation is synchronous and free of shared mutable state.
// Known-source lookup state is scoped to a single pass and a single server;
// nothing leaks between servers or invocations, which is what makes the
// concurrent multi-server fan-out safe.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/rudderlabs/rudder-go-kit/stats"

	"github.com/earthcube/ingest-monitor/runs"
	"github.com/earthcube/ingest-monitor/services/logclassify"
	"github.com/earthcube/ingest-monitor/services/queuealert"
	"github.com/earthcube/ingest-monitor/services/registry"
	"github.com/earthcube/ingest-monitor/services/srcstats"
)

// RunsFeed is the job-execution query collaborator. RecentRuns returns the
// richest page (tags and assets included); RunsByStatus returns one
// status-filtered page with a creation-time lower bound.
type RunsFeed interface {
	RecentRuns(ctx context.Context) ([]runs.Run, error)
	RunsByStatus(ctx context.Context, status runs.Status, createdAfter time.Time) ([]runs.Run, error)
}

// RegistryFeed supplies the raw source catalog and tenant/activation
// documents.
type RegistryFeed interface {
	CatalogDocument(ctx context.Context) ([]byte, error)
	TenantDocument(ctx context.Context) ([]byte, error)
}

// QueueFeed reports the number of jobs currently queued within the trailing
// hour.
type QueueFeed interface {
	QueueDepth(ctx context.Context) (int, error)
}

// LogFeed lists the log bucket. Optional; a nil LogFeed skips log
// classification.
type LogFeed interface {
	ListLogs(ctx context.Context) ([]logclassify.LogObject, error)
}

// Feeds bundles the external collaborators of one server. Every feed is a
// read-only data contract; transport, credentials and retry policy live with
// the implementations, outside this core.
type Feeds struct {
	Runs     RunsFeed
	Registry RegistryFeed
	Queue    QueueFeed
	Logs     LogFeed
}

// ServerReport is the complete outcome of one analysis pass for one server.
// Reports are built fresh per pass and never persisted.
type ServerReport struct {
	ReportID    string    `json:"reportId"`
	Server      string    `json:"server"`
	Window      Window    `json:"window"`
	GeneratedAt time.Time `json:"generatedAt"`

	KnownSources []string                         `json:"knownSources,omitempty"`
	Stats        map[string]*srcstats.SourceStats `json:"stats"`
	Summary      srcstats.ServerSummary           `json:"summary"`

	Alert        queuealert.State               `json:"alert"`
	FailureLevel queuealert.FailureLevel        `json:"failureLevel"`
	Logs         []logclassify.ClassifiedObject `json:"logs,omitempty"`
}

// Monitor runs analysis passes. It holds no per-server state: the same
// Monitor may analyze any number of servers, sequentially or concurrently.
type Monitor struct {
	log          logger.Logger
	statsFactory stats.Stats
	registry     *registry.Adapter
	alerts       *queuealert.Evaluator

	window Window

	recordsSeen stats.Measurement
	queryErrors stats.Measurement
}

// New creates a monitor. The analysis window defaults to last week.
func New(conf *config.Config, log logger.Logger, statsFactory stats.Stats) *Monitor {
	m := &Monitor{
		log:          log.Child("monitor"),
		statsFactory: statsFactory,
		registry:     registry.New(log, statsFactory),
		alerts:       queuealert.New(conf, log),
		window:       Window(conf.GetString("Monitor.window", string(WindowLastWeek))),
		recordsSeen: statsFactory.NewTaggedStat(
			"monitor_records_processed", stats.CountType, stats.Tags{"component": "monitor"},
		),
		queryErrors: statsFactory.NewTaggedStat(
			"monitor_query_errors", stats.CountType, stats.Tags{"component": "monitor"},
		),
	}
	if !m.window.Valid() {
		m.log.Warnf("unknown analysis window %q, using %s", m.window, WindowLastWeek)
		m.window = WindowLastWeek
	}
	return m
}

// statusBatchOrder is the fixed query order of the status-filtered pages.
// Together with the all-runs page it determines which duplicate survives the
// merge (see runs.BatchSet).
var statusBatchOrder = []runs.Status{
	runs.StatusSuccess,
	runs.StatusFailure,
	runs.StatusStarted,
	runs.StatusQueued,
}

// AnalyzeServer runs one pass for one server. It always returns a usable
// report: every feed failure is recovered locally as an empty page or
// document, logged and counted, so partial upstream outages degrade the
// answer instead of aborting it.
func (m *Monitor) AnalyzeServer(ctx context.Context, server string, feeds Feeds) *ServerReport {
	now := time.Now()
	cutoff := m.window.CutoffUTC(now)
	report := &ServerReport{
		ReportID:    uuid.NewString(),
		Server:      server,
		Window:      m.window,
		GeneratedAt: now.UTC(),
	}

	catalog, tenants := m.extractRegistry(ctx, server, feeds.Registry)
	report.KnownSources = registry.KnownSources(catalog, tenants)

	merged := m.fetchRuns(ctx, server, feeds.Runs, cutoff)
	m.recordsSeen.Count(len(merged))

	report.Stats = srcstats.Aggregate(server, merged, report.KnownSources)
	report.Summary = srcstats.Summarize(report.Stats)
	report.FailureLevel = m.alerts.EvaluateFailures(report.Summary.FailedJobs)

	queued := m.queueDepth(ctx, server, feeds.Queue)
	report.Alert = m.alerts.Evaluate(queued, registry.ActiveSourceCount(catalog, tenants))

	report.Logs = m.classifyLogs(ctx, server, feeds.Logs, report.KnownSources, cutoff)
	return report
}

// AnalyzeServers fans one pass per server out concurrently. Passes are pure
// functions of their inputs, so no coordination beyond the final collect is
// needed.
func (m *Monitor) AnalyzeServers(ctx context.Context, servers map[string]Feeds) map[string]*ServerReport {
	var (
		mu      sync.Mutex
		reports = make(map[string]*ServerReport, len(servers))
	)
	g, gctx := errgroup.WithContext(ctx)
	for server, feeds := range servers {
		server, feeds := server, feeds
		g.Go(func() error {
			report := m.AnalyzeServer(gctx, server, feeds)
			mu.Lock()
			reports[server] = report
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // passes never fail, they degrade
	return reports
}

func (m *Monitor) extractRegistry(ctx context.Context, server string, feed RegistryFeed) ([]registry.CatalogSource, []registry.TenantSource) {
	if feed == nil {
		return nil, nil
	}
	var catalog []registry.CatalogSource
	if doc, err := feed.CatalogDocument(ctx); err != nil {
		m.softFail(server, "source catalog", err)
	} else {
		catalog = m.registry.ExtractCatalogSources(doc)
	}
	var tenants []registry.TenantSource
	if doc, err := feed.TenantDocument(ctx); err != nil {
		m.softFail(server, "tenant document", err)
	} else {
		tenants = m.registry.ExtractTenantSources(doc)
	}
	return catalog, tenants
}

func (m *Monitor) fetchRuns(ctx context.Context, server string, feed RunsFeed, cutoff time.Time) []runs.Run {
	if feed == nil {
		return nil
	}
	batches := runs.BatchSet{}
	var err error
	if batches.All, err = feed.RecentRuns(ctx); err != nil {
		m.softFail(server, "recent runs", err)
	}
	for _, status := range statusBatchOrder {
		page, err := feed.RunsByStatus(ctx, status, cutoff)
		if err != nil {
			m.softFail(server, string(status)+" runs", err)
			continue
		}
		switch status {
		case runs.StatusSuccess:
			batches.Succeeded = page
		case runs.StatusFailure:
			batches.Failed = page
		case runs.StatusStarted:
			batches.Started = page
		case runs.StatusQueued:
			batches.Queued = page
		}
	}
	return batches.Merge()
}

func (m *Monitor) queueDepth(ctx context.Context, server string, feed QueueFeed) int {
	if feed == nil {
		return 0
	}
	depth, err := feed.QueueDepth(ctx)
	if err != nil {
		m.softFail(server, "queue depth", err)
		return 0
	}
	return max(depth, 0)
}

func (m *Monitor) classifyLogs(ctx context.Context, server string, feed LogFeed, knownSources []string, cutoff time.Time) []logclassify.ClassifiedObject {
	if feed == nil {
		return nil
	}
	objects, err := feed.ListLogs(ctx)
	if err != nil {
		m.softFail(server, "log listing", err)
		return nil
	}
	return logclassify.ClassifyObjects(objects, knownSources, cutoff)
}

func (m *Monitor) softFail(server, query string, err error) {
	m.log.Warnw("collaborator query degraded to empty result",
		"server", server,
		"query", query,
		"error", err.Error(),
	)
	m.queryErrors.Increment()
}
