package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"transcodesched/internal/config"
	"transcodesched/internal/logging"
	"transcodesched/internal/notifications"
	resourcestatic "transcodesched/internal/resourcepolicy/static"
	"transcodesched/internal/sessionaudit"
	"transcodesched/internal/sessionctl"
	"transcodesched/internal/svcctx"
	"transcodesched/internal/transcoder/drapto"
	"transcodesched/internal/transcoder/sim"
	uidstatic "transcodesched/internal/uidpolicy/static"
)

// SubmitSpec carries the per-session job parameters a client supplies.
// Which fields matter depends on the configured backend: the simulated
// backend reads ProcessingSeconds, the drapto backend reads InputPath,
// OutputDir, and Preset.
type SubmitSpec struct {
	ClientID          int64
	SessionID         int32
	UID               int32
	InputPath         string
	OutputDir         string
	Preset            string
	ProcessingSeconds int
}

// Status represents daemon runtime information.
type Status struct {
	Running           bool
	PID               int
	Backend           string
	LockPath          string
	SocketPath        string
	AuditDBPath       string
	StartedAt         time.Time
	ResourceAvailable bool
	TopUids           []int32
	Controller        sessionctl.Snapshot
}

// Daemon coordinates the controller, its collaborators, and single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
	audit    *sessionaudit.Store

	controller *sessionctl.Controller
	uidPolicy  *uidstatic.Policy
	resPolicy  *resourcestatic.Policy
	backend    string

	lock       *flock.Flock
	running    atomic.Bool
	started    time.Time
	handled    atomic.Int64
	events     chan sessionEvent
	quit       chan struct{}
	workerDone chan struct{}
}

// New constructs a daemon with initialized dependencies. The controller and
// the chosen transcoder backend are built here so every collaborator shares
// the daemon's logger and configuration.
func New(cfg *config.Config, logger *slog.Logger, notifier notifications.Service, audit *sessionaudit.Store) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		notifier: notifier,
		audit:    audit,
		backend:  cfg.Transcoder.Backend,
		lock:       flock.New(cfg.Paths.LockPath),
		events:     make(chan sessionEvent, 256),
		quit:       make(chan struct{}),
		workerDone: make(chan struct{}),
	}

	d.uidPolicy = uidstatic.New(cfg.UIDPolicy.ForegroundUIDs, logger)
	d.resPolicy = resourcestatic.New(cfg.ResourcePolicy.InitiallyAvailable, logger)

	opts := []sessionctl.Option{
		sessionctl.WithLogger(logging.NewComponentLogger(logger, "sessionctl")),
		sessionctl.WithUidPolicy(d.uidPolicy),
		sessionctl.WithResourcePolicy(d.resPolicy),
	}

	switch cfg.Transcoder.Backend {
	case "drapto":
		t := drapto.New(cfg.Transcoder.DraptoBinary, nil, logging.NewComponentLogger(logger, "drapto"))
		d.controller = sessionctl.New(t, opts...)
		t.SetSink(d.controller)
	default:
		t := sim.New(nil, logging.NewComponentLogger(logger, "sim"))
		d.controller = sessionctl.New(t, opts...)
		t.SetSink(d.controller)
	}

	d.uidPolicy.Attach(d.controller)
	d.resPolicy.Attach(resourceListener{d.controller})
	return d, nil
}

// resourceListener adapts the controller's resource entry points to the
// static resource policy's Listener shape.
type resourceListener struct {
	ctl *sessionctl.Controller
}

func (r resourceListener) OnResourceAvailable() { r.ctl.OnResourceAvailable() }
func (r resourceListener) OnResourceLost()      { r.ctl.OnResourceLost() }

// Start acquires the daemon lock and begins processing.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another transcodesched daemon instance is already running")
	}

	d.started = time.Now()
	go d.eventWorker()

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("backend", d.backend),
		logging.String("lock", d.cfg.Paths.LockPath))
	if err := d.notifier.NotifyDaemonStarted(ctx, d.backend); err != nil {
		d.logger.Warn("failed to send start notification", logging.Error(err))
	}
	return nil
}

// Stop stops processing and releases the daemon lock.
func (d *Daemon) Stop(reason string) {
	if !d.running.Load() {
		return
	}
	d.running.Store(false)

	close(d.quit)
	<-d.workerDone

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.logger.Info("daemon stopped", logging.String("reason", reason))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.notifier.NotifyDaemonStopping(ctx, reason); err != nil {
		d.logger.Warn("failed to send stop notification", logging.Error(err))
	}
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop("daemon closed")
	if d.audit != nil {
		return d.audit.Close()
	}
	return nil
}

// Running reports whether the daemon has been started and not yet stopped.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Submit accepts a new session. The spec is translated into the configured
// backend's request shape before it reaches the controller.
func (d *Daemon) Submit(ctx context.Context, spec SubmitSpec) error {
	if !d.running.Load() {
		return errors.New("daemon not running")
	}

	requestID := uuid.NewString()
	key := sessionctl.Key{ClientID: spec.ClientID, SessionID: spec.SessionID}
	ctx = svcctx.WithRequestID(ctx, requestID)
	ctx = svcctx.WithSessionKey(ctx, key.String())
	ctx = svcctx.WithUID(ctx, spec.UID)
	log := logging.WithContext(ctx, d.logger)

	request, err := d.buildRequest(spec)
	if err != nil {
		log.Warn("rejecting submit", logging.Error(err))
		return err
	}

	callback := newSessionCallback(d, key, spec.UID)
	if err := d.controller.Submit(spec.ClientID, spec.SessionID, spec.UID, request, callback); err != nil {
		log.Warn("submit failed", logging.Error(err))
		return err
	}
	log.Info("session submitted", logging.Int32("uid", spec.UID))
	return nil
}

func (d *Daemon) buildRequest(spec SubmitSpec) (sessionctl.Request, error) {
	switch d.backend {
	case "drapto":
		if spec.InputPath == "" || spec.OutputDir == "" {
			return nil, errors.New("drapto backend requires input path and output directory")
		}
		return drapto.Request{
			InputPath:     spec.InputPath,
			OutputDir:     spec.OutputDir,
			PresetProfile: spec.Preset,
		}, nil
	default:
		seconds := spec.ProcessingSeconds
		if seconds <= 0 {
			seconds = d.cfg.Transcoder.DefaultProcessingSeconds
		}
		return sim.Request{ProcessingTime: time.Duration(seconds) * time.Second}, nil
	}
}

// Cancel removes one session and records the cancellation in history.
func (d *Daemon) Cancel(ctx context.Context, clientID int64, sessionID int32) error {
	key := sessionctl.Key{ClientID: clientID, SessionID: sessionID}

	var uid int32 = sessionctl.OfflineUID
	var progress int32
	for _, s := range d.controller.Snapshot().Sessions {
		if s.Key == key {
			uid = s.UID
			progress = s.LastProgress
			break
		}
	}

	if err := d.controller.Cancel(clientID, sessionID); err != nil {
		return err
	}
	d.logger.Info("session cancelled", logging.String(logging.FieldSessionKey, key.String()))
	d.recordHistory(ctx, sessionaudit.Record{
		Key:           key,
		UID:           uid,
		Outcome:       sessionaudit.OutcomeCancelled,
		FinalProgress: progress,
	})
	return nil
}

// CancelClient removes every session belonging to clientID, recording each
// in history. Returns how many sessions were removed.
func (d *Daemon) CancelClient(ctx context.Context, clientID int64) int {
	var owned []sessionctl.SessionSnapshot
	for _, s := range d.controller.Snapshot().Sessions {
		if s.Key.ClientID == clientID {
			owned = append(owned, s)
		}
	}

	d.controller.CancelClient(clientID)
	d.logger.Info("client sessions cancelled",
		logging.Int64("client_id", clientID),
		logging.Int("count", len(owned)))
	for _, s := range owned {
		d.recordHistory(ctx, sessionaudit.Record{
			Key:           s.Key,
			UID:           s.UID,
			Outcome:       sessionaudit.OutcomeCancelled,
			FinalProgress: s.LastProgress,
		})
	}
	return len(owned)
}

// SetTopUids relays a foreground-set change to the UID policy.
func (d *Daemon) SetTopUids(uids []int32) {
	d.uidPolicy.SetTopUids(uids)
}

// SetResourceAvailable relays a resource availability change.
func (d *Daemon) SetResourceAvailable(available bool) {
	d.resPolicy.SetAvailable(available)
}

// ToggleResource flips resource availability and returns the new value.
// Wired to SIGUSR1 by the serve command.
func (d *Daemon) ToggleResource() bool {
	return d.resPolicy.Toggle()
}

// Status reports daemon runtime information including a controller
// snapshot.
func (d *Daemon) Status() Status {
	return Status{
		Running:           d.running.Load(),
		PID:               os.Getpid(),
		Backend:           d.backend,
		LockPath:          d.cfg.Paths.LockPath,
		SocketPath:        d.cfg.Paths.ControlSocket,
		AuditDBPath:       d.cfg.Paths.AuditDBPath,
		StartedAt:         d.started,
		ResourceAvailable: d.resPolicy.Available(),
		TopUids:           d.uidPolicy.TopUids(),
		Controller:        d.controller.Snapshot(),
	}
}

// History returns the most recent terminal transitions, newest first.
func (d *Daemon) History(ctx context.Context, limit int) ([]sessionaudit.Record, error) {
	if d.audit == nil {
		return nil, nil
	}
	return d.audit.List(ctx, limit)
}

// TestNotification sends a test push through the notification service.
func (d *Daemon) TestNotification(ctx context.Context) error {
	return d.notifier.TestNotification(ctx)
}

func (d *Daemon) recordHistory(ctx context.Context, record sessionaudit.Record) {
	if d.audit == nil {
		return
	}
	if _, err := d.audit.Append(ctx, record); err != nil {
		d.logger.Warn("failed to record session history",
			logging.String(logging.FieldSessionKey, record.Key.String()),
			logging.Error(err))
	}
}
