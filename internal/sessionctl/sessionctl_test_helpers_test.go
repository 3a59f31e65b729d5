package sessionctl_test

import (
	"fmt"
	"sync"

	"transcodesched/internal/sessionctl"
)

// call records one outbound Transcoder invocation.
type call struct {
	op  string // "start", "pause", "resume", "stop"
	key sessionctl.Key
}

func (c call) String() string {
	return fmt.Sprintf("%s(%s)", c.op, c.key.String())
}

// fakeTranscoder records every outbound call in order; it never acks on its
// own - tests drive acknowledgments explicitly by calling back into the
// Controller, the same way a real backend reports through the event sink.
type fakeTranscoder struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeTranscoder) Start(key sessionctl.Key, _ sessionctl.Request, _ sessionctl.ClientCallback) {
	f.record("start", key)
}

func (f *fakeTranscoder) Pause(key sessionctl.Key) {
	f.record("pause", key)
}

func (f *fakeTranscoder) Resume(key sessionctl.Key, _ sessionctl.Request) {
	f.record("resume", key)
}

func (f *fakeTranscoder) Stop(key sessionctl.Key) {
	f.record("stop", key)
}

func (f *fakeTranscoder) record(op string, key sessionctl.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: op, key: key})
}

func (f *fakeTranscoder) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}

func (f *fakeTranscoder) last() (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return call{}, false
	}
	return f.calls[len(f.calls)-1], true
}

func (f *fakeTranscoder) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// fakeClientCallback records every client-facing event delivered to one
// session.
type fakeClientCallback struct {
	mu           sync.Mutex
	events       []string
	lastProgress int32
	lastError    sessionctl.TranscoderErrorCode
}

func (f *fakeClientCallback) OnTranscodingStarted(sessionID int32) {
	f.record("started")
}

func (f *fakeClientCallback) OnTranscodingPaused(sessionID int32) {
	f.record("paused")
}

func (f *fakeClientCallback) OnTranscodingResumed(sessionID int32) {
	f.record("resumed")
}

func (f *fakeClientCallback) OnTranscodingFinished(sessionID int32) {
	f.record("finished")
}

func (f *fakeClientCallback) OnTranscodingFailed(sessionID int32, err sessionctl.TranscoderErrorCode) {
	f.mu.Lock()
	f.lastError = err
	f.mu.Unlock()
	f.record("failed")
}

func (f *fakeClientCallback) OnProgressUpdate(sessionID int32, progress int32) {
	f.mu.Lock()
	f.lastProgress = progress
	f.mu.Unlock()
	f.record("progress")
}

func (f *fakeClientCallback) OnResumePending(sessionID int32) {
	f.record("resume_pending")
}

func (f *fakeClientCallback) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeClientCallback) has(event string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e == event {
			return true
		}
	}
	return false
}

// fakeUidPolicy records register/unregister calls in order.
type fakeUidPolicy struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeUidPolicy) RegisterMonitor(uid int32) {
	f.record(fmt.Sprintf("register:%d", uid))
}

func (f *fakeUidPolicy) UnregisterMonitor(uid int32) {
	f.record(fmt.Sprintf("unregister:%d", uid))
}

func (f *fakeUidPolicy) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeUidPolicy) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func key(clientID int64, sessionID int32) sessionctl.Key {
	return sessionctl.Key{ClientID: clientID, SessionID: sessionID}
}
