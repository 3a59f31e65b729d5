// Package static implements a single-flag sessionctl.ResourcePolicy.
//
// The real-world analogue is a codec-resource arbiter that reclaims scarce
// hardware and signals when it returns. Here the signal is a boolean toggled
// through the daemon's control socket or SIGUSR1; transitions push
// OnResourceLost/OnResourceAvailable to the attached controller.
package static
