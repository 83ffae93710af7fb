// Command worktoolkit is the CLI entry point for the batch PDF utilities:
// feature-based unification, per-page splitting, term search, and run
// history.
package main
