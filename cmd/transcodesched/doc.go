// Command transcodesched is the CLI and daemon entry point for the
// transcoding session controller.
//
// `transcodesched serve` runs the controller as a long-lived daemon; stop,
// submit, cancel, status, history, top-uids, resource, and test-notify talk
// to a running daemon over its Unix control socket. `transcodesched config`
// works on the local configuration without a daemon. `transcodesched demo`
// runs a self-contained controller with the simulated backend and narrates
// the scheduling decisions.
package main
