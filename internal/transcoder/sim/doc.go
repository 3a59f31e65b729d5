// Package sim implements an in-memory simulated sessionctl.Transcoder.
//
// A single goroutine owns all simulated-run state and serializes event
// handling, so there is never a race between a Start/Pause/Resume/Stop
// call and the timer firing OnFinish. It tracks at most one running
// session at a time - the controller's own contract already guarantees it
// never asks a Transcoder to run two sessions at once.
package sim
