package drapto

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"transcodesched/internal/sessionctl"
)

var commandContext = exec.CommandContext

// EventSink receives the Transcoder's acknowledgments. sessionctl.Controller
// satisfies this; wire it in with SetSink once the controller exists.
type EventSink interface {
	OnStarted(key sessionctl.Key)
	OnPaused(key sessionctl.Key)
	OnResumed(key sessionctl.Key)
	OnFinish(key sessionctl.Key)
	OnError(key sessionctl.Key, code sessionctl.TranscoderErrorCode)
	OnProgressUpdate(key sessionctl.Key, progress int32)
}

// Request is the drapto backend's own request shape, carried inside the
// opaque sessionctl.Request blob.
type Request struct {
	InputPath     string
	OutputDir     string
	PresetProfile string
}

type progressLine struct {
	Percent float64 `json:"percent"`
	Stage   string  `json:"stage"`
	Message string  `json:"message"`
}

type process struct {
	cmd     *exec.Cmd
	stopped bool
}

// Transcoder drives the drapto CLI as a child process per session. At most
// one process is expected to be running at a time, matching the
// controller's contract, but the map is keyed by session so a lingering
// Stop/Pause for a session that already finished is a harmless no-op.
type Transcoder struct {
	mu     sync.Mutex
	binary string
	sink   EventSink
	logger *slog.Logger
	procs  map[sessionctl.Key]*process
}

// New constructs a Transcoder that runs binary (e.g. "drapto", or a full
// path) for every session. sink may be nil and supplied later with SetSink.
func New(binary string, sink EventSink, logger *slog.Logger) *Transcoder {
	if strings.TrimSpace(binary) == "" {
		binary = "drapto"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transcoder{
		binary: binary,
		sink:   sink,
		logger: logger,
		procs:  make(map[sessionctl.Key]*process),
	}
}

// SetSink installs the event sink.
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

// Start implements sessionctl.Transcoder. It launches the child process
// asynchronously; OnStarted fires once the process is actually running, not
// when Start returns, since Transcoder methods must not block.
func (t *Transcoder) Start(key sessionctl.Key, request sessionctl.Request, _ sessionctl.ClientCallback) {
	go t.start(key, request)
}

func (t *Transcoder) start(key sessionctl.Key, request sessionctl.Request) {
	req, ok := request.(Request)
	if !ok || strings.TrimSpace(req.InputPath) == "" || strings.TrimSpace(req.OutputDir) == "" {
		t.logger.Warn("drapto transcoder rejecting malformed request", "session", key.String())
		if sink := t.currentSink(); sink != nil {
			sink.OnError(key, sessionctl.ErrorMalformedRequest)
		}
		return
	}

	args := []string{"encode", "--input", req.InputPath, "--output", req.OutputDir, "--progress-json"}
	if preset := strings.TrimSpace(req.PresetProfile); preset != "" {
		args = append(args, "--drapto-preset", preset)
	}

	cmd := commandContext(context.Background(), t.binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.logger.Error("drapto transcoder failed to open stdout pipe", "session", key.String(), "error", err)
		if sink := t.currentSink(); sink != nil {
			sink.OnError(key, sessionctl.ErrorFailedProcess)
		}
		return
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		t.logger.Error("drapto transcoder failed to start", "session", key.String(), "error", err)
		if sink := t.currentSink(); sink != nil {
			sink.OnError(key, sessionctl.ErrorFailedProcess)
		}
		return
	}

	p := &process{cmd: cmd}
	t.mu.Lock()
	t.procs[key] = p
	t.mu.Unlock()

	if sink := t.currentSink(); sink != nil {
		sink.OnStarted(key)
	}

	go t.readProgress(key, stdout)
	go t.wait(key, p)
}

func (t *Transcoder) wait(key sessionctl.Key, p *process) {
	err := p.cmd.Wait()

	t.mu.Lock()
	stopped := p.stopped
	delete(t.procs, key)
	t.mu.Unlock()

	if stopped {
		return
	}
	sink := t.currentSink()
	if sink == nil {
		return
	}
	if err != nil {
		t.logger.Warn("drapto process exited with error", "session", key.String(), "error", err)
		sink.OnError(key, sessionctl.ErrorFailedProcess)
		return
	}
	sink.OnFinish(key)
}

func (t *Transcoder) readProgress(key sessionctl.Key, stdout interface{ Read([]byte) (int, error) }) {
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		var line progressLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		sink := t.currentSink()
		if sink == nil {
			continue
		}
		pct := int32(line.Percent)
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		sink.OnProgressUpdate(key, pct)
	}
}

// Pause implements sessionctl.Transcoder by sending SIGSTOP to the child's
// process group.
func (t *Transcoder) Pause(key sessionctl.Key) {
	p := t.lookup(key)
	if p == nil {
		return
	}
	if err := t.signalGroup(p, unix.SIGSTOP); err != nil {
		t.logger.Warn("drapto transcoder failed to pause", "session", key.String(), "error", err)
		return
	}
	if sink := t.currentSink(); sink != nil {
		sink.OnPaused(key)
	}
}

// Resume implements sessionctl.Transcoder by sending SIGCONT to the child's
// process group. The request parameter is unused: drapto's own process
// already has the original encode parameters.
func (t *Transcoder) Resume(key sessionctl.Key, _ sessionctl.Request) {
	p := t.lookup(key)
	if p == nil {
		return
	}
	if err := t.signalGroup(p, unix.SIGCONT); err != nil {
		t.logger.Warn("drapto transcoder failed to resume", "session", key.String(), "error", err)
		return
	}
	if sink := t.currentSink(); sink != nil {
		sink.OnResumed(key)
	}
}

// Stop implements sessionctl.Transcoder by killing the child's process
// group. No OnFinish/OnError fires for a deliberate Stop.
func (t *Transcoder) Stop(key sessionctl.Key) {
	p := t.lookup(key)
	if p == nil {
		return
	}
	t.mu.Lock()
	p.stopped = true
	t.mu.Unlock()

	if err := t.signalGroup(p, unix.SIGKILL); err != nil {
		t.logger.Warn("drapto transcoder failed to stop", "session", key.String(), "error", err)
	}
}

func (t *Transcoder) lookup(key sessionctl.Key) *process {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.procs[key]
}

func (t *Transcoder) signalGroup(p *process, sig unix.Signal) error {
	if p == nil || p.cmd.Process == nil {
		return errors.New("drapto transcoder: process not running")
	}
	return unix.Kill(-p.cmd.Process.Pid, sig)
}
