package sim

import (
	"log/slog"
	"sync"
	"time"

	"transcodesched/internal/sessionctl"
)

// DefaultProcessingTime is used when a submitted Request does not specify
// its own ProcessingTime, or specifies a non-positive one.
const DefaultProcessingTime = 30 * time.Second

// EventSink receives the Transcoder's acknowledgments. sessionctl.Controller
// satisfies this; callers wire it in with SetSink once the controller
// exists, since the controller itself needs a Transcoder to be constructed.
type EventSink interface {
	OnStarted(key sessionctl.Key)
	OnPaused(key sessionctl.Key)
	OnResumed(key sessionctl.Key)
	OnFinish(key sessionctl.Key)
	OnProgressUpdate(key sessionctl.Key, progress int32)
}

// Request is the sim backend's own request shape. It is carried inside the
// opaque sessionctl.Request blob; when a submitted request is not a
// Request value (or has a non-positive ProcessingTime), DefaultProcessingTime
// is used instead.
type Request struct {
	ProcessingTime time.Duration
}

type eventType int

const (
	evStart eventType = iota
	evPause
	evResume
	evStop
)

func (e eventType) String() string {
	switch e {
	case evStart:
		return "Start"
	case evPause:
		return "Pause"
	case evResume:
		return "Resume"
	case evStop:
		return "Stop"
	default:
		return "(unknown)"
	}
}

type event struct {
	kind    eventType
	key     sessionctl.Key
	request sessionctl.Request
}

// Transcoder is an in-memory sessionctl.Transcoder that pretends to run a
// session for a configurable duration before reporting OnFinish.
type Transcoder struct {
	mu     sync.Mutex
	sink   EventSink
	logger *slog.Logger

	events chan event
}

// New constructs a Transcoder and starts its event loop goroutine. sink may
// be nil and supplied later with SetSink.
func New(sink EventSink, logger *slog.Logger) *Transcoder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &Transcoder{
		sink:   sink,
		logger: logger,
		events: make(chan event, 8),
	}
	go t.loop()
	return t
}

// SetSink installs the event sink. Safe to call concurrently with the event
// loop; typically called once, immediately after the owning controller is
// constructed.
func (t *Transcoder) SetSink(sink EventSink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}

func (t *Transcoder) currentSink() EventSink {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sink
}

// Start implements sessionctl.Transcoder.
func (t *Transcoder) Start(key sessionctl.Key, request sessionctl.Request, _ sessionctl.ClientCallback) {
	t.events <- event{kind: evStart, key: key, request: request}
}

// Pause implements sessionctl.Transcoder.
func (t *Transcoder) Pause(key sessionctl.Key) {
	t.events <- event{kind: evPause, key: key}
}

// Resume implements sessionctl.Transcoder.
func (t *Transcoder) Resume(key sessionctl.Key, request sessionctl.Request) {
	t.events <- event{kind: evResume, key: key, request: request}
}

// Stop implements sessionctl.Transcoder.
func (t *Transcoder) Stop(key sessionctl.Key) {
	t.events <- event{kind: evStop, key: key}
}

func processingTime(request sessionctl.Request) time.Duration {
	if r, ok := request.(Request); ok && r.ProcessingTime > 0 {
		return r.ProcessingTime
	}
	return DefaultProcessingTime
}

// loop owns all simulated-run state: whether a session is running, which
// one, and how much of its processing time remains. Only this goroutine
// touches that state, so Start/Pause/Resume/Stop calls (which arrive as
// channel sends from arbitrary goroutines) and the finish timer never race.
func (t *Transcoder) loop() {
	var running bool
	var current sessionctl.Key
	var remaining time.Duration
	var lastResume time.Time

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	progress := time.NewTicker(time.Second)
	defer progress.Stop()

	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				return
			}
			t.handle(ev, &running, &current, &remaining, &lastResume, timer)

		case <-timer.C:
			if !running {
				continue
			}
			running = false
			finished := current
			t.logger.Debug("sim transcoder finished", "session", finished.String())
			if sink := t.currentSink(); sink != nil {
				sink.OnFinish(finished)
			}

		case <-progress.C:
			if !running {
				continue
			}
			elapsed := time.Since(lastResume)
			pct := progressPercent(remaining, elapsed)
			if sink := t.currentSink(); sink != nil {
				sink.OnProgressUpdate(current, pct)
			}
		}
	}
}

func progressPercent(remaining, elapsed time.Duration) int32 {
	total := remaining
	if total <= 0 {
		return 100
	}
	pct := int32(float64(elapsed) / float64(total) * 100)
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

func (t *Transcoder) handle(ev event, running *bool, current *sessionctl.Key, remaining *time.Duration, lastResume *time.Time, timer *time.Timer) {
	switch ev.kind {
	case evStart:
		if *running {
			t.logger.Warn("sim transcoder discarding bad event", "session", ev.key.String(), "event", ev.kind.String())
			return
		}
		*running = true
		*current = ev.key
		*remaining = processingTime(ev.request)
		*lastResume = time.Now()
		resetTimer(timer, *remaining)
		if sink := t.currentSink(); sink != nil {
			sink.OnStarted(ev.key)
		}
	case evResume:
		if *running {
			t.logger.Warn("sim transcoder discarding bad event", "session", ev.key.String(), "event", ev.kind.String())
			return
		}
		*running = true
		*current = ev.key
		*lastResume = time.Now()
		resetTimer(timer, *remaining)
		if sink := t.currentSink(); sink != nil {
			sink.OnResumed(ev.key)
		}
	case evPause:
		if !*running || *current != ev.key {
			t.logger.Warn("sim transcoder discarding bad event", "session", ev.key.String(), "event", ev.kind.String())
			return
		}
		*running = false
		*remaining -= time.Since(*lastResume)
		stopTimer(timer)
		if sink := t.currentSink(); sink != nil {
			sink.OnPaused(ev.key)
		}
	case evStop:
		if *running && *current == ev.key {
			*running = false
			stopTimer(timer)
		}
	}
}

func resetTimer(timer *time.Timer, d time.Duration) {
	if d <= 0 {
		d = time.Nanosecond
	}
	timer.Reset(d)
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
