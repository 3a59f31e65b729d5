package static

import (
	"log/slog"
	"sync"

	"transcodesched/internal/logging"
)

// Listener receives resource availability transitions. The daemon wires
// these to sessionctl.Controller's OnResourceAvailable/OnResourceLost.
type Listener interface {
	OnResourceAvailable()
	OnResourceLost()
}

// Policy is a single-flag stand-in for a codec-resource arbiter: one boolean
// "resource available" toggled by the daemon's control socket or by SIGUSR1.
//
// Policy implements sessionctl.ResourcePolicy.
type Policy struct {
	mu        sync.Mutex
	available bool
	monitored map[int32]struct{}
	listener  Listener
	logger    *slog.Logger
}

// New constructs a Policy with the given initial availability.
func New(initiallyAvailable bool, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Policy{
		available: initiallyAvailable,
		monitored: make(map[int32]struct{}),
		logger:    logging.NewComponentLogger(logger, "resourcepolicy"),
	}
}

// Attach installs the listener. No push happens here: availability is the
// assumed steady state, and a controller starts without the resource-lost
// flag set. If the policy was constructed unavailable, the first drive is
// blocked by an immediate OnResourceLost push instead.
func (p *Policy) Attach(l Listener) {
	p.mu.Lock()
	p.listener = l
	available := p.available
	p.mu.Unlock()

	if l != nil && !available {
		l.OnResourceLost()
	}
}

// RegisterMonitor implements sessionctl.ResourcePolicy. pid is an opaque
// caller handle; the static policy only records it for diagnostics.
func (p *Policy) RegisterMonitor(pid int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.monitored[pid] = struct{}{}
	p.logger.Debug("monitoring resource client", logging.Int32("pid", pid))
}

// Available reports the current availability flag.
func (p *Policy) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// SetAvailable transitions the availability flag, pushing to the listener
// only on an actual change: false->true fires OnResourceAvailable,
// true->false fires OnResourceLost.
func (p *Policy) SetAvailable(available bool) {
	p.mu.Lock()
	changed := p.available != available
	p.available = available
	l := p.listener
	p.mu.Unlock()

	if !changed || l == nil {
		return
	}
	if available {
		p.logger.Info("resource available")
		l.OnResourceAvailable()
	} else {
		p.logger.Info("resource lost")
		l.OnResourceLost()
	}
}

// Toggle flips availability and returns the new value.
func (p *Policy) Toggle() bool {
	p.mu.Lock()
	next := !p.available
	p.mu.Unlock()
	p.SetAvailable(next)
	return next
}
