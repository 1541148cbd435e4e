package tractdist

import (
	"log"
	"sync"
)

// ComputeDistancesParallel is ComputeDistances spread over Config.Workers
// goroutines. Each worker handles a contiguous range of TractRange entries
// and shares one read-only index. Tracts must own disjoint instance slots,
// as they do in any layout built from PointOffset, so no synchronization is
// needed for writes.
//
// The result is bitwise identical to ComputeDistances. A MaxInstanceCount
// budget depends on visiting order, so a bounded call, or Workers <= 1,
// falls back to the sequential engine.
func ComputeDistancesParallel(targets TargetInput, out []float32, s *Streamlines, cfg Config) (Stats, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return Stats{}, err
	}

	index := resolveTargets(targets, &cfg)
	n := s.NumTracts()
	numWorkers := min(cfg.Workers, n)

	if cfg.MaxInstanceCount > 0 && numWorkers > 1 {
		log.Printf("tractdist: MaxInstanceCount=%d is order-dependent; processing %d tracts sequentially", cfg.MaxInstanceCount, n)
		numWorkers = 1
	}
	if numWorkers <= 1 {
		return newEngine(index, out, s, cfg).run(0, n, cfg.budget()), nil
	}

	stats := make([]Stats, numWorkers)
	var wg sync.WaitGroup
	tractsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * tractsPerWorker
		end := start + tractsPerWorker
		if end > n {
			end = n
		}
		if start >= n {
			break
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			e := newEngine(index, out, s, cfg)
			stats[w] = e.run(start, end, cfg.budget())
		}(w, start, end)
	}

	wg.Wait()

	var total Stats
	for _, st := range stats {
		total.add(st)
	}
	return total, nil
}
