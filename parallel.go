package repsel

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ComputePairwiseDistancesParallel computes the full n×n distance matrix using
// multiple goroutines. numWorkers controls the degree of parallelism; if <= 1,
// it falls back to single-threaded ComputePairwiseDistances.
//
// The result is bitwise identical to ComputePairwiseDistances.
func ComputePairwiseDistancesParallel(m *FeatureMatrix, metric DistanceMetric, numWorkers int) []float64 {
	n := m.Rows()
	if numWorkers <= 1 || n <= 1 {
		return ComputePairwiseDistances(m, metric)
	}

	result := make([]float64, n*n)

	// Each worker owns a contiguous range of source rows and writes
	// dist(i,j) and dist(j,i) for j > i. Cells never overlap between workers.
	var wg sync.WaitGroup
	rowsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := min(startRow+rowsPerWorker, n)
		if startRow >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				for j := i + 1; j < n; j++ {
					d := metric.Distance(m.Row(i), m.Row(j))
					result[i*n+j] = d
					result[j*n+i] = d
				}
			}
		}(startRow, endRow)
	}

	wg.Wait()
	return result
}

// newPairDistancer returns a precomputed distance matrix when n <= limit and
// an on-demand distancer otherwise.
func newPairDistancer(m *FeatureMatrix, metric DistanceMetric, limit, workers int) pairDistancer {
	if m.Rows() <= limit {
		return &pairwiseMatrix{d: ComputePairwiseDistancesParallel(m, metric, workers), n: m.Rows()}
	}
	return onTheFly{m: m, metric: metric}
}

// forEachTrial calls fn(i) for i in [0, n) on at most workers goroutines.
// The first error cancels the context handed to the remaining calls and is
// returned. Calls not yet started when the context is done are skipped.
func forEachTrial(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := 0; i < n; i++ {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
