package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/rudderlabs/rudder-go-kit/stats"
	svcMetric "github.com/rudderlabs/rudder-go-kit/stats/metric"

	"github.com/earthcube/ingest-monitor/monitor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ReleaseInfo holds the release information
type ReleaseInfo struct {
	Version   string
	Commit    string
	BuildDate string
	BuiltBy   string
}

// Runner is responsible for running one analysis pass
type Runner struct {
	releaseInfo ReleaseInfo
	logger      logger.Logger
}

// New creates and initializes a new Runner
func New(releaseInfo ReleaseInfo) *Runner {
	return &Runner{
		releaseInfo: releaseInfo,
		logger:      logger.NewLogger().Child("runner"),
	}
}

// Run analyzes every configured server once, writes the reports and returns
// the exit code. Degraded upstream data still produces a report; only an
// unusable invocation returns non-zero.
func (r *Runner) Run(ctx context.Context, _ []string) int {
	path, err := config.Default.ConfigFileUsed()
	if err != nil {
		r.logger.Warnf("Config: Failed to parse config file from path %q, using default values: %v", path, err)
	} else {
		r.logger.Infof("Config: Using config file: %s", path)
	}

	stats.Default = stats.NewStats(config.Default, logger.Default, svcMetric.Instance,
		stats.WithServiceName("ingest-monitor"),
		stats.WithServiceVersion(r.releaseInfo.Version),
	)
	if err := stats.Default.Start(ctx, stats.DefaultGoRoutineFactory); err != nil {
		r.logger.Errorf("Failed to start stats: %v", err)
		return 1
	}
	defer stats.Default.Stop()

	servers := config.GetStringSlice("Monitor.servers", nil)
	if len(servers) == 0 {
		r.logger.Error("no servers configured under Monitor.servers")
		return 1
	}
	snapshotRoot := config.GetString("Monitor.snapshotDir", "snapshots")
	queueWindow := config.GetDuration("Monitor.queueWindowInMin", 60, time.Minute)

	feeds := make(map[string]monitor.Feeds, len(servers))
	for _, server := range servers {
		snapshot := newSnapshotFeeds(filepath.Join(snapshotRoot, server), queueWindow)
		feeds[server] = monitor.Feeds{
			Runs:     snapshot,
			Registry: snapshot,
			Queue:    snapshot,
			Logs:     snapshot,
		}
	}

	m := monitor.New(config.Default, r.logger, stats.Default)
	reports := m.AnalyzeServers(ctx, feeds)

	if err := r.writeReports(reports); err != nil {
		r.logger.Errorf("writing reports: %v", err)
		return 1
	}
	for server, report := range reports {
		r.logger.Infow("server analyzed",
			"server", server,
			"sources", report.Summary.Sources,
			"totalJobs", report.Summary.TotalJobs,
			"failureLevel", string(report.FailureLevel),
			"queueAlert", report.Alert.HasAlert,
		)
	}
	return 0
}

func (r *Runner) writeReports(reports map[string]*monitor.ServerReport) error {
	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')

	path := config.GetString("Monitor.reportPath", "")
	if path == "" {
		_, err := fmt.Fprint(os.Stdout, string(out))
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
