package srcstats

import "sort"

// TopSource is one entry of a server's success-rate leaderboard.
type TopSource struct {
	Source      string  `json:"source"`
	SuccessRate float64 `json:"successRate"`
	TotalJobs   int     `json:"totalJobs"`
}

// ServerSummary rolls the per-source statistics of one server up into a
// single overview: population counts, job totals per bucket and the top
// performing sources.
type ServerSummary struct {
	Sources       int `json:"sources"`
	ActiveSources int `json:"activeSources"`

	TotalJobs   int `json:"totalJobs"`
	SuccessJobs int `json:"successJobs"`
	FailedJobs  int `json:"failedJobs"`
	RunningJobs int `json:"runningJobs"`
	QueuedJobs  int `json:"queuedJobs"`

	SuccessRate float64 `json:"successRate"`

	// TopSources ranks the up to three busiest-performing sources by success
	// rate, ties broken by total jobs then name.
	TopSources []TopSource `json:"topSources,omitempty"`
}

const topSourceCount = 3

// Summarize builds a server overview from per-source statistics. A source is
// active when at least one job was attributed to it in the window.
func Summarize(bySource map[string]*SourceStats) ServerSummary {
	summary := ServerSummary{Sources: len(bySource)}

	var ranked []TopSource
	for _, stats := range bySource {
		summary.TotalJobs += stats.TotalJobs
		summary.SuccessJobs += stats.SuccessJobs
		summary.FailedJobs += stats.FailedJobs
		summary.RunningJobs += stats.RunningJobs
		summary.QueuedJobs += stats.QueuedJobs
		if stats.TotalJobs > 0 {
			summary.ActiveSources++
			ranked = append(ranked, TopSource{
				Source:      stats.Source,
				SuccessRate: stats.SuccessRate,
				TotalJobs:   stats.TotalJobs,
			})
		}
	}
	if summary.TotalJobs > 0 {
		summary.SuccessRate = float64(summary.SuccessJobs) / float64(summary.TotalJobs) * 100
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].SuccessRate != ranked[j].SuccessRate {
			return ranked[i].SuccessRate > ranked[j].SuccessRate
		}
		if ranked[i].TotalJobs != ranked[j].TotalJobs {
			return ranked[i].TotalJobs > ranked[j].TotalJobs
		}
		return ranked[i].Source < ranked[j].Source
	})
	if len(ranked) > topSourceCount {
		ranked = ranked[:topSourceCount]
	}
	summary.TopSources = ranked
	return summary
}
