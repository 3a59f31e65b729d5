// Package daemon hosts a sessionctl.Controller as a long-lived service.
//
// It wires the configured transcoder backend (simulated or drapto), the
// static UID and resource policy adapters, the session history store, and
// the notification service together, enforces single-instance execution
// with a file lock, and exposes the operations the IPC layer forwards from
// the CLI: submit, cancel, status, top-UID and resource-availability
// updates, and history queries.
//
// Client callbacks arrive while the controller's lock is held, so the
// daemon's per-session callback only enqueues events; a dedicated worker
// goroutine performs the blocking work (history writes, push
// notifications, drained-queue detection).
package daemon
