// Package tasks implements the library task workflow: the status state
// machine, role-based visibility and transition gating, and SQLite-backed
// persistence.
//
// A task is created in Pendiente and moves exclusively through
// Store.ChangeStatus, which validates every requested edge against the
// transition table. Visibility is a read-time view: VisibleTasks filters a
// fetched list for the observing role without storing anything.
package tasks
