package static

import (
	"log/slog"
	"sync"

	"transcodesched/internal/logging"
)

// Listener receives top-UID pushes. sessionctl.Controller satisfies this.
type Listener interface {
	OnTopUidsChanged(uids []int32)
}

// Policy is a configuration-driven UidPolicy: the foreground UID set comes
// from config seed state and from explicit SetTopUids calls (the CLI relays
// these over the daemon's control socket). It stands in for an OS activity
// monitor, which has no portable equivalent here.
//
// Policy implements sessionctl.UidPolicy.
type Policy struct {
	mu        sync.Mutex
	monitored map[int32]struct{}
	topUids   []int32
	listener  Listener
	logger    *slog.Logger
}

// New constructs a Policy seeded with foregroundUids. The seed is pushed to
// the listener on Attach.
func New(foregroundUids []int32, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Policy{
		monitored: make(map[int32]struct{}),
		topUids:   append([]int32(nil), foregroundUids...),
		logger:    logging.NewComponentLogger(logger, "uidpolicy"),
	}
}

// Attach installs the listener and pushes the seeded foreground set to it,
// so a controller constructed after the policy still observes the
// configured foreground UIDs.
func (p *Policy) Attach(l Listener) {
	p.mu.Lock()
	p.listener = l
	seed := append([]int32(nil), p.topUids...)
	p.mu.Unlock()

	if l != nil && len(seed) > 0 {
		l.OnTopUidsChanged(seed)
	}
}

// RegisterMonitor implements sessionctl.UidPolicy.
func (p *Policy) RegisterMonitor(uid int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.monitored[uid] = struct{}{}
	p.logger.Debug("monitoring uid", logging.Int32("uid", uid))
}

// UnregisterMonitor implements sessionctl.UidPolicy.
func (p *Policy) UnregisterMonitor(uid int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.monitored, uid)
	p.logger.Debug("stopped monitoring uid", logging.Int32("uid", uid))
}

// Monitored reports whether uid has been registered.
func (p *Policy) Monitored(uid int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.monitored[uid]
	return ok
}

// TopUids returns the last pushed foreground set.
func (p *Policy) TopUids() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int32(nil), p.topUids...)
}

// SetTopUids replaces the foreground UID set and pushes it to the listener.
func (p *Policy) SetTopUids(uids []int32) {
	p.mu.Lock()
	p.topUids = append([]int32(nil), uids...)
	l := p.listener
	p.mu.Unlock()

	p.logger.Info("top uids changed", logging.Int("count", len(uids)))
	if l != nil {
		l.OnTopUidsChanged(append([]int32(nil), uids...))
	}
}
