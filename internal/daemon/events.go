package daemon

import (
	"context"
	"sync"
	"time"

	"transcodesched/internal/logging"
	"transcodesched/internal/sessionaudit"
	"transcodesched/internal/sessionctl"
)

type sessionEventKind int

const (
	eventFinished sessionEventKind = iota
	eventFailed
)

type sessionEvent struct {
	kind     sessionEventKind
	key      sessionctl.Key
	uid      int32
	code     sessionctl.TranscoderErrorCode
	progress int32
}

// sessionCallback is the ClientCallback the daemon attaches to every
// IPC-submitted session. It is invoked while the controller's lock is held,
// so every method only records state or enqueues an event for the daemon's
// worker; it never re-enters the controller and never blocks.
type sessionCallback struct {
	d   *Daemon
	key sessionctl.Key
	uid int32

	mu           sync.Mutex
	lastProgress int32
}

func newSessionCallback(d *Daemon, key sessionctl.Key, uid int32) *sessionCallback {
	return &sessionCallback{d: d, key: key, uid: uid}
}

func (c *sessionCallback) info(msg string) {
	c.d.logger.Info(msg, logging.Args(
		logging.String(logging.FieldSessionKey, c.key.String()),
		logging.Int32(logging.FieldUID, c.uid),
	)...)
}

func (c *sessionCallback) OnTranscodingStarted(sessionID int32) {
	c.info("transcoding started")
}

func (c *sessionCallback) OnTranscodingPaused(sessionID int32) {
	c.info("transcoding paused")
}

func (c *sessionCallback) OnTranscodingResumed(sessionID int32) {
	c.info("transcoding resumed")
}

func (c *sessionCallback) OnResumePending(sessionID int32) {
	c.info("resume pending, resource lost")
}

func (c *sessionCallback) OnProgressUpdate(sessionID int32, progress int32) {
	c.mu.Lock()
	c.lastProgress = progress
	c.mu.Unlock()
}

func (c *sessionCallback) OnTranscodingFinished(sessionID int32) {
	c.d.enqueueEvent(sessionEvent{
		kind:     eventFinished,
		key:      c.key,
		uid:      c.uid,
		progress: 100,
	})
}

func (c *sessionCallback) OnTranscodingFailed(sessionID int32, code sessionctl.TranscoderErrorCode) {
	c.mu.Lock()
	progress := c.lastProgress
	c.mu.Unlock()
	c.d.enqueueEvent(sessionEvent{
		kind:     eventFailed,
		key:      c.key,
		uid:      c.uid,
		code:     code,
		progress: progress,
	})
}

// enqueueEvent hands an event to the worker without blocking. The buffer is
// generous; if it ever fills, dropping the event costs a history row and a
// notification, never controller correctness.
func (d *Daemon) enqueueEvent(ev sessionEvent) {
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("event buffer full, dropping session event",
			logging.String(logging.FieldSessionKey, ev.key.String()))
	}
}

// eventWorker drains session events off the controller's callback path and
// performs the blocking work: history writes, failure notifications, and
// drained-queue detection.
func (d *Daemon) eventWorker() {
	defer close(d.workerDone)
	for {
		select {
		case ev := <-d.events:
			d.handleEvent(ev)
		case <-d.quit:
			for {
				select {
				case ev := <-d.events:
					d.handleEvent(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Daemon) handleEvent(ev sessionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch ev.kind {
	case eventFinished:
		d.handled.Add(1)
		d.logger.Info("session finished",
			logging.String(logging.FieldSessionKey, ev.key.String()),
			logging.Int32(logging.FieldUID, ev.uid))
		d.recordHistory(ctx, sessionaudit.Record{
			Key:           ev.key,
			UID:           ev.uid,
			Outcome:       sessionaudit.OutcomeFinished,
			FinalProgress: ev.progress,
		})
	case eventFailed:
		d.handled.Add(1)
		d.logger.Warn("session failed",
			logging.String(logging.FieldSessionKey, ev.key.String()),
			logging.Int32(logging.FieldUID, ev.uid),
			logging.String("code", ev.code.String()))
		d.recordHistory(ctx, sessionaudit.Record{
			Key:           ev.key,
			UID:           ev.uid,
			Outcome:       sessionaudit.OutcomeFailed,
			ErrorCode:     ev.code,
			FinalProgress: ev.progress,
		})
		if d.cfg.Notifications.SessionFailed {
			if err := d.notifier.NotifySessionFailed(ctx, ev.key.String(), int32(ev.code)); err != nil {
				d.logger.Warn("failed to send failure notification", logging.Error(err))
			}
		}
	}

	d.maybeNotifyDrained(ctx)
}

func (d *Daemon) maybeNotifyDrained(ctx context.Context) {
	if !d.cfg.Notifications.QueueDrained {
		return
	}
	snap := d.controller.Snapshot()
	if len(snap.Sessions) != 0 {
		return
	}
	handled := d.handled.Swap(0)
	if handled == 0 {
		return
	}
	if err := d.notifier.NotifyQueueDrained(ctx, int(handled), time.Since(d.started)); err != nil {
		d.logger.Warn("failed to send drained notification", logging.Error(err))
	}
}
