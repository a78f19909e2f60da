package runs

// BatchSet holds the record batches obtained from the overlapping queries one
// analysis pass issues: the unfiltered "all recent runs" page (the richest,
// carrying tags and assets) plus one page per status filter.
type BatchSet struct {
	All       []Run
	Succeeded []Run
	Failed    []Run
	Started   []Run
	Queued    []Run
}

// Merge flattens the set into a single deduplicated batch.
//
// Concatenation order is a documented contract, not an implementation detail:
// All, then Succeeded, Failed, Started, Queued. Deduplication keeps the first
// occurrence of each run identifier, so the richer all-runs record wins
// whenever it is present and otherwise the earliest status batch containing
// the run does. Changing the order silently changes which record survives.
func (b BatchSet) Merge() []Run {
	return MergeBatches(b.All, b.Succeeded, b.Failed, b.Started, b.Queued)
}

// MergeBatches concatenates the given batches in order and deduplicates by
// run identifier, first occurrence wins. Records without a run identifier are
// dropped.
func MergeBatches(batches ...[]Run) []Run {
	size := 0
	for _, batch := range batches {
		size += len(batch)
	}
	seen := make(map[string]struct{}, size)
	merged := make([]Run, 0, size)
	for _, batch := range batches {
		for _, run := range batch {
			if run.RunID == "" {
				continue
			}
			if _, ok := seen[run.RunID]; ok {
				continue
			}
			seen[run.RunID] = struct{}{}
			merged = append(merged, run)
		}
	}
	return merged
}
