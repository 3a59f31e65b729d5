// Package drapto implements sessionctl.Transcoder against the real
// github.com/five82/drapto CLI, run as a child process per session.
//
// Unlike sim, a session here is a live OS process: Pause/Resume map onto
// SIGSTOP/SIGCONT against the child's process group (golang.org/x/sys/unix),
// and Stop kills the group outright. Progress is parsed off the child's
// stdout as newline-delimited JSON emitted by drapto's --progress-json
// mode.
package drapto
