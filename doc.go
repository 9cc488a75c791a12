// Package repsel reduces a population of candidate structures to a small,
// diverse set of representatives.
//
// Structures are encoded as rows of a [FeatureMatrix]. The selector searches
// a range of group counts K, clusters the matrix with k-means under several
// independent seeds per K, and scores every trial with a silhouette-based
// robustness score: the fraction of groups whose mean silhouette reaches the
// trial's overall silhouette. The K with the highest mean score wins (ties go
// to the larger K), and its best trial is handed to the picker, which keeps
// the member closest to each centroid plus a bounded random sample of the
// remaining members.
//
// Basic usage:
//
//	cfg := repsel.DefaultConfig()
//	cfg.KMin, cfg.KMax = 2, 20
//	out, err := repsel.Represent(ctx, features, cfg, repsel.LegacyBudget(3), 0)
//	// out.Indices are the selected rows of features
//
// The individual stages are exported as well:
//
//	res, err := repsel.Partition(features, 4, seed, 10)      // one trial
//	sel, err := repsel.SelectBestPartition(ctx, features, cfg) // model selection
//	idx, err := repsel.PickRepresentatives(features, sel.Best, budget, 0)
//
// Every random choice is driven by an explicit seed, so results replay
// exactly and do not depend on the number of workers.
package repsel
