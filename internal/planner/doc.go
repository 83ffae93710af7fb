// Package planner builds the two-phase unification plan: it groups
// discovered documents by feature key and produces a deterministic,
// operator-reviewable summary before any file is written.
package planner
