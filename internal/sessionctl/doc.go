// Package sessionctl implements the priority-aware, UID-steered transcoding
// session controller: a single-node scheduler that accepts transcoding
// requests from many clients, orders them by the foreground/background state
// of the owning UID, and drives a Transcoder through a start/pause/resume/stop
// protocol so that at most one session runs at a time.
//
// The controller couples four asynchronous sources of truth - client
// submissions, UID policy pushes, resource policy pushes, and transcoder
// callbacks - into one consistent per-session state machine under a single
// mutex (Controller.mu). Every exported method acquires that mutex for its
// entire body; collaborators (Transcoder, ClientCallback) are invoked while
// it is held, so their methods must not block and must not re-enter the
// controller. See Controller's doc comment for the rationale.
package sessionctl
