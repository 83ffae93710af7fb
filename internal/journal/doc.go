// Package journal records completed unify runs in a local SQLite database
// so operators can review what was produced and when.
package journal
