package sessionctl

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Controller is the session scheduler. It couples client submissions, UID
// policy pushes, resource policy pushes, and transcoder callbacks into one
// consistent state machine.
//
// Concurrency model: a single mutex (mu) guards every field and is held for
// the full body of every exported method, including the calls out to
// Transcoder and ClientCallback. An outbound-command queue drained on its
// own goroutine would avoid holding the lock across those calls without
// changing any externally visible behavior; we keep the simpler design and
// document the constraint on the collaborator interfaces instead (see
// Transcoder, ClientCallback): they must not block and must not call back
// into the Controller synchronously.
type Controller struct {
	mu sync.Mutex

	reg    *registry
	queues *uidQueueSet

	transcoder     Transcoder
	uidPolicy      UidPolicy
	resourcePolicy ResourcePolicy
	monitoredUids  map[int32]struct{}

	current      *Key
	resourceLost bool

	checkInvariants bool
	logger          *slog.Logger
}

// Option configures a Controller at construction time.
type Option func(*Controller)

// WithUidPolicy attaches the UID activity-monitor collaborator.
func WithUidPolicy(p UidPolicy) Option {
	return func(c *Controller) { c.uidPolicy = p }
}

// WithResourcePolicy attaches the codec-resource arbiter collaborator.
func WithResourcePolicy(p ResourcePolicy) Option {
	return func(c *Controller) { c.resourcePolicy = p }
}

// WithLogger attaches a structured logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInvariantChecks enables the debug-only state validation pass
// (validateState) after every mutating call. Panics on violation; meant
// for tests and diagnostic builds, not production serving.
func WithInvariantChecks(enabled bool) Option {
	return func(c *Controller) { c.checkInvariants = enabled }
}

// New constructs a Controller. transcoder must not be nil.
func New(transcoder Transcoder, opts ...Option) *Controller {
	if transcoder == nil {
		panic("sessionctl: transcoder must not be nil")
	}
	c := &Controller{
		reg:           newRegistry(),
		queues:        newUidQueueSet(),
		transcoder:    transcoder,
		monitoredUids: make(map[int32]struct{}),
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit accepts a new transcoding request. It fails with ErrAlreadyExists
// if (clientID, sessionID) is already present. On success it inserts the
// session into the registry, enqueues it under uid, registers uid for UID
// policy monitoring the first time it is seen, registers the session with
// the resource policy, and re-converges the driver.
func (c *Controller) Submit(clientID int64, sessionID int32, uid int32, request Request, callback ClientCallback) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key{ClientID: clientID, SessionID: sessionID}
	session := newSession(key, uid, request, callback)
	if err := c.reg.insert(session); err != nil {
		return err
	}

	if _, known := c.monitoredUids[uid]; !known && uid != OfflineUID {
		c.monitoredUids[uid] = struct{}{}
		if c.uidPolicy != nil {
			c.uidPolicy.RegisterMonitor(uid)
		}
	}
	// ResourcePolicy registration happens once per live session, at
	// submission time; clientID stands in for the pid handle the resource
	// arbiter expects (the controller treats it as an opaque identifier).
	if c.resourcePolicy != nil {
		c.resourcePolicy.RegisterMonitor(int32(clientID))
	}

	c.queues.enqueue(uid, key)
	c.logger.Debug("session submitted", "key", key.String(), "uid", uid)

	c.drive()
	c.validateState()
	return nil
}

// Cancel removes a session. If it is the currently running/driven session,
// Stop is issued and current is cleared. Cancellation is fire-and-forget: no
// client callback is synthesized (the client asked for this), and any later
// transcoder callback for this key is silently dropped since the key is no
// longer in the registry.
func (c *Controller) Cancel(clientID int64, sessionID int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key{ClientID: clientID, SessionID: sessionID}
	if _, err := c.reg.get(key); err != nil {
		return err
	}
	c.cancelKey(key)
	c.drive()
	c.validateState()
	return nil
}

// CancelClient removes every session belonging to clientID. Callers use it
// when a client disconnects and all of its outstanding work must go; it
// never fails, even if clientID owns no sessions.
func (c *Controller) CancelClient(clientID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []Key
	for _, s := range c.reg.iter() {
		if s.Key.ClientID == clientID {
			keys = append(keys, s.Key)
		}
	}
	for _, key := range keys {
		c.cancelKey(key)
	}
	c.drive()
	c.validateState()
}

// cancelKey performs the stop/remove side-effects for one key. Caller must
// hold mu and must call drive() afterward.
func (c *Controller) cancelKey(key Key) {
	session, err := c.reg.get(key)
	if err != nil {
		return
	}
	if c.current != nil && *c.current == key {
		c.transcoder.Stop(key)
		c.current = nil
	}
	c.removeFromQueue(session.UID, key)
	_, _ = c.reg.remove(key)
	c.logger.Debug("session cancelled", "key", key.String())
}

// removeFromQueue drops key from uid's queue. When that was the uid's last
// queued session the uid is no longer schedulable, so monitoring stops:
// the uid policy is told to unregister and the uid is forgotten, to be
// re-registered if a later Submit brings it back. The offline pseudo-UID
// is never registered, so it is never unregistered either. Caller must
// hold mu.
func (c *Controller) removeFromQueue(uid int32, key Key) {
	c.queues.remove(uid, key)
	if uid == OfflineUID || c.queues.hasUid(uid) {
		return
	}
	if _, known := c.monitoredUids[uid]; known {
		delete(c.monitoredUids, uid)
		if c.uidPolicy != nil {
			c.uidPolicy.UnregisterMonitor(uid)
		}
	}
}

// GetSession returns a read-only snapshot of request for dumpers and
// clients.
func (c *Controller) GetSession(clientID int64, sessionID int32) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key{ClientID: clientID, SessionID: sessionID}
	s, err := c.reg.get(key)
	if err != nil {
		return nil, err
	}
	return s.Request, nil
}

// SessionSnapshot is one session's observable state at snapshot time.
type SessionSnapshot struct {
	Key          Key
	UID          int32
	State        State
	LastProgress int32
}

// Snapshot is a consistent copy of the controller's observable state: the
// UID ordering front-to-back, every queued session in queue-walk order,
// the controller's current pointer, and the resource-lost flag.
type Snapshot struct {
	UIDOrder     []int32
	Sessions     []SessionSnapshot
	Current      *Key
	ResourceLost bool
}

// Snapshot copies the controller's observable state under the lock. Sessions
// are listed walking the UID ordering front to back, each queue head to
// tail - the same order the selector would consider them.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		UIDOrder:     c.queues.uidOrder(),
		ResourceLost: c.resourceLost,
	}
	if c.current != nil {
		key := *c.current
		snap.Current = &key
	}
	for _, uid := range snap.UIDOrder {
		for _, key := range c.queues.keysFor(uid) {
			s, err := c.reg.get(key)
			if err != nil {
				continue
			}
			snap.Sessions = append(snap.Sessions, SessionSnapshot{
				Key:          s.Key,
				UID:          s.UID,
				State:        s.State,
				LastProgress: s.LastProgress,
			})
		}
	}
	return snap
}

// Dump renders a human-readable snapshot of every UID queue (ordering
// order), each queued session's key, state, and last progress. Diagnostic
// only; no stability guarantee on the format.
func (c *Controller) Dump(w io.Writer) {
	snap := c.Snapshot()
	byUID := make(map[int32][]SessionSnapshot, len(snap.UIDOrder))
	for _, s := range snap.Sessions {
		byUID[s.UID] = append(byUID[s.UID], s)
	}
	for _, uid := range snap.UIDOrder {
		label := fmt.Sprintf("%d", uid)
		if uid == OfflineUID {
			label = "offline"
		}
		fmt.Fprintf(w, "uid %s:\n", label)
		for _, s := range byUID[uid] {
			fmt.Fprintf(w, "  %s state=%s progress=%d\n", s.Key.String(), s.State, s.LastProgress)
		}
	}
}
