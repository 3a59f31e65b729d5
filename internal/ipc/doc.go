// Package ipc exposes daemon control via JSON-RPC over a Unix domain
// socket.
//
// The CLI is the only intended client: submit, cancel, status, history,
// top-UID and resource pushes, and shutdown all travel through this
// surface. Requests and responses are plain JSON-serializable structs; the
// daemon side translates them onto internal/daemon's methods.
package ipc
