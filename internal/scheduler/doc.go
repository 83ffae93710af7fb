// Package scheduler fans unification jobs out across a bounded worker pool
// and aggregates per-group results without aborting the batch on partial
// failure.
package scheduler
