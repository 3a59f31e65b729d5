// Package static implements a configuration-driven sessionctl.UidPolicy.
//
// The real-world analogue of this collaborator is an OS activity monitor
// that reports which app UIDs are in the foreground. There is no portable
// source for that signal here, so the foreground set is seeded from config
// and updated explicitly through SetTopUids, which the daemon exposes over
// its control socket.
package static
