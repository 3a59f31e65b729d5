package sessionctl_test

import (
	"reflect"
	"testing"

	"transcodesched/internal/sessionctl"
)

func newTestController(t *testing.T) (*sessionctl.Controller, *fakeTranscoder) {
	t.Helper()
	tc := &fakeTranscoder{}
	ctl := sessionctl.New(tc, sessionctl.WithInvariantChecks(true))
	return ctl, tc
}

func assertOps(t *testing.T, tc *fakeTranscoder, want ...string) {
	t.Helper()
	got := tc.ops()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("transcoder calls = %v, want %v", got, want)
	}
}

// S1 - Two sessions, same uid, FIFO.
func TestScenarioFIFOWithinUid(t *testing.T) {
	ctl, tc := newTestController(t)

	if err := ctl.Submit(1, 1, 100, "A", nil); err != nil {
		t.Fatalf("submit (1,1): %v", err)
	}
	assertOps(t, tc, "start({client:1, session:1})")
	ctl.OnStarted(key(1, 1))

	if err := ctl.Submit(1, 2, 100, "B", nil); err != nil {
		t.Fatalf("submit (1,2): %v", err)
	}
	assertOps(t, tc, "start({client:1, session:1})") // no new call

	ctl.OnFinish(key(1, 1))
	assertOps(t, tc, "start({client:1, session:1})", "start({client:1, session:2})")
}

// S2 - Foreground preempts background.
func TestScenarioForegroundPreemptsBackground(t *testing.T) {
	ctl, tc := newTestController(t)

	if err := ctl.Submit(1, 1, 100, "A", nil); err != nil {
		t.Fatalf("submit (1,1): %v", err)
	}
	ctl.OnStarted(key(1, 1))
	tc.reset()

	if err := ctl.Submit(2, 1, 200, "B", nil); err != nil {
		t.Fatalf("submit (2,1): %v", err)
	}
	assertOps(t, tc) // no preemption yet

	ctl.OnTopUidsChanged([]int32{200})
	assertOps(t, tc, "pause({client:1, session:1})", "start({client:2, session:1})")

	ctl.OnPaused(key(1, 1))
	ctl.OnStarted(key(2, 1))
}

// S3 - Resource lost / regained.
func TestScenarioResourceLostAndRegained(t *testing.T) {
	ctl, tc := newTestController(t)
	cb := &fakeClientCallback{}

	if err := ctl.Submit(1, 1, 100, "A", cb); err != nil {
		t.Fatalf("submit (1,1): %v", err)
	}
	ctl.OnStarted(key(1, 1))
	tc.reset()

	ctl.OnResourceLost()
	assertOps(t, tc, "pause({client:1, session:1})")
	if !cb.has("resume_pending") {
		t.Fatalf("expected OnResumePending, got events %v", cb.events)
	}
	tc.reset()

	if err := ctl.Submit(1, 2, 100, "B", nil); err != nil {
		t.Fatalf("submit (1,2): %v", err)
	}
	assertOps(t, tc) // blocked by resource-lost flag

	ctl.OnPaused(key(1, 1))
	ctl.OnResourceAvailable()
	assertOps(t, tc, "resume({client:1, session:1})")
}

// S4 - Cancel running.
func TestScenarioCancelRunning(t *testing.T) {
	ctl, tc := newTestController(t)

	if err := ctl.Submit(1, 1, 100, "A", nil); err != nil {
		t.Fatalf("submit (1,1): %v", err)
	}
	ctl.OnStarted(key(1, 1))
	tc.reset()

	if err := ctl.Cancel(1, 1); err != nil {
		t.Fatalf("cancel (1,1): %v", err)
	}
	assertOps(t, tc, "stop({client:1, session:1})")

	// A late onFinish for the cancelled key is silently dropped: no panic,
	// no new transcoder calls, no change in observable state.
	ctl.OnFinish(key(1, 1))
	assertOps(t, tc, "stop({client:1, session:1})")

	if _, err := ctl.GetSession(1, 1); err != sessionctl.ErrNotFound {
		t.Fatalf("expected ErrNotFound after cancel, got %v", err)
	}
}

// S5 - Top-UID flicker is absorbed.
func TestScenarioTopUidFlickerAbsorbed(t *testing.T) {
	ctl, tc := newTestController(t)

	if err := ctl.Submit(1, 1, 100, "A", nil); err != nil {
		t.Fatalf("submit (1,1): %v", err)
	}
	ctl.OnStarted(key(1, 1))
	tc.reset()

	ctl.OnTopUidsChanged([]int32{200, 100})
	assertOps(t, tc) // no churn: preserve_top keeps (1,1)@100 running
}

// S6 - Error path.
func TestScenarioErrorPath(t *testing.T) {
	ctl, tc := newTestController(t)
	cb := &fakeClientCallback{}

	if err := ctl.Submit(1, 1, 100, "A", cb); err != nil {
		t.Fatalf("submit (1,1): %v", err)
	}
	ctl.OnStarted(key(1, 1))
	tc.reset()

	ctl.OnError(key(1, 1), sessionctl.ErrorFailedProcess)
	if !cb.has("failed") {
		t.Fatalf("expected client to be notified of failure, got events %v", cb.events)
	}
	if cb.lastError != sessionctl.ErrorFailedProcess {
		t.Fatalf("lastError = %v, want ErrorFailedProcess", cb.lastError)
	}
	if _, err := ctl.GetSession(1, 1); err != sessionctl.ErrNotFound {
		t.Fatalf("expected session removed after error, got %v", err)
	}
}

// Submit duplicate key fails without side effects.
func TestSubmitDuplicateKeyFails(t *testing.T) {
	ctl, tc := newTestController(t)
	if err := ctl.Submit(1, 1, 100, "A", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	tc.reset()
	if err := ctl.Submit(1, 1, 999, "B", nil); err != sessionctl.ErrAlreadyExists {
		t.Fatalf("duplicate submit err = %v, want ErrAlreadyExists", err)
	}
	assertOps(t, tc) // no new transcoder calls from the rejected submit
}

// Cancel of unknown key fails and is a no-op.
func TestCancelUnknownKeyFails(t *testing.T) {
	ctl, tc := newTestController(t)
	if err := ctl.Cancel(9, 9); err != sessionctl.ErrNotFound {
		t.Fatalf("cancel unknown err = %v, want ErrNotFound", err)
	}
	assertOps(t, tc)
}

// Round-trip law: submit then cancel returns to the pre-submit observable
// state (paired start/stop, nothing left running).
func TestSubmitCancelRoundTrip(t *testing.T) {
	ctl, tc := newTestController(t)

	if err := ctl.Submit(1, 1, 100, "A", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	ctl.OnStarted(key(1, 1))

	if err := ctl.Cancel(1, 1); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	assertOps(t, tc, "start({client:1, session:1})", "stop({client:1, session:1})")
	if _, err := ctl.GetSession(1, 1); err != sessionctl.ErrNotFound {
		t.Fatalf("session should be gone after cancel, got %v", err)
	}
}

// CancelClient removes every session owned by a client id in one call.
func TestCancelClientWildcard(t *testing.T) {
	ctl, tc := newTestController(t)

	for i := int32(1); i <= 3; i++ {
		if err := ctl.Submit(7, i, 100, i, nil); err != nil {
			t.Fatalf("submit (7,%d): %v", i, err)
		}
	}
	ctl.OnStarted(key(7, 1))
	tc.reset()

	ctl.CancelClient(7)

	for i := int32(1); i <= 3; i++ {
		if _, err := ctl.GetSession(7, i); err != sessionctl.ErrNotFound {
			t.Fatalf("session (7,%d) should be gone, got %v", i, err)
		}
	}
	if last, ok := tc.last(); !ok || last.op != "stop" {
		t.Fatalf("expected the running session to receive stop, last call = %+v ok=%v", last, ok)
	}
}

// Wildcard cancel on a client with no sessions never fails.
func TestCancelClientWildcardNoSessions(t *testing.T) {
	ctl, _ := newTestController(t)
	ctl.CancelClient(42) // must not panic
}

// A uid is monitored while it has queued sessions and unregistered the
// moment its last session leaves, whether by cancel or by finish; a later
// submit for the same uid registers it again.
func TestUidMonitoringFollowsQueueLifetime(t *testing.T) {
	tc := &fakeTranscoder{}
	up := &fakeUidPolicy{}
	ctl := sessionctl.New(tc,
		sessionctl.WithInvariantChecks(true),
		sessionctl.WithUidPolicy(up))

	if err := ctl.Submit(1, 1, 100, "A", nil); err != nil {
		t.Fatalf("submit (1,1): %v", err)
	}
	if err := ctl.Submit(1, 2, 100, "B", nil); err != nil {
		t.Fatalf("submit (1,2): %v", err)
	}
	if got, want := up.ops(), []string{"register:100"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("uid policy calls = %v, want %v", got, want)
	}

	// First removal leaves (1,2) queued; monitoring must survive it.
	if err := ctl.Cancel(1, 1); err != nil {
		t.Fatalf("cancel (1,1): %v", err)
	}
	if got, want := up.ops(), []string{"register:100"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("uid policy calls after partial drain = %v, want %v", got, want)
	}

	// Finishing the last session drains the queue and stops monitoring.
	ctl.OnStarted(key(1, 2))
	ctl.OnFinish(key(1, 2))
	if got, want := up.ops(), []string{"register:100", "unregister:100"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("uid policy calls after full drain = %v, want %v", got, want)
	}

	// The uid was forgotten, so a fresh submit registers it again.
	if err := ctl.Submit(2, 1, 100, "C", nil); err != nil {
		t.Fatalf("submit (2,1): %v", err)
	}
	if got, want := up.ops(), []string{"register:100", "unregister:100", "register:100"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("uid policy calls after resubmit = %v, want %v", got, want)
	}
}

// Offline sessions never touch the uid policy: the offline pseudo-UID is
// neither registered at submit nor unregistered when its queue drains.
func TestOfflineUidNeverMonitored(t *testing.T) {
	tc := &fakeTranscoder{}
	up := &fakeUidPolicy{}
	ctl := sessionctl.New(tc,
		sessionctl.WithInvariantChecks(true),
		sessionctl.WithUidPolicy(up))

	if err := ctl.Submit(1, 1, sessionctl.OfflineUID, "A", nil); err != nil {
		t.Fatalf("submit offline: %v", err)
	}
	if err := ctl.Cancel(1, 1); err != nil {
		t.Fatalf("cancel offline: %v", err)
	}
	if got := up.ops(); len(got) != 0 {
		t.Fatalf("expected no uid policy calls for offline sessions, got %v", got)
	}
}

// Unknown UID in submit: enqueued under the supplied UID and monitored,
// never silently rerouted to the offline queue.
func TestSubmitUnknownUidIsMonitoredNotOffline(t *testing.T) {
	ctl, tc := newTestController(t)

	if err := ctl.Submit(1, 1, 555, "A", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// A session under an unknown-but-real uid is scheduled, not parked in
	// the offline queue: the driver should have started it immediately.
	assertOps(t, tc, "start({client:1, session:1})")
}
