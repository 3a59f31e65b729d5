// Package sessionaudit persists an append-only history of terminal session
// transitions (finished, cancelled, failed) backed by SQLite.
//
// This is a historical event log, not live controller state: records are
// written only after a session has already been destroyed, so the
// controller's in-memory-only session model is untouched. The daemon writes
// to it from its client callback and cancel paths; the CLI's history command
// reads it.
package sessionaudit
