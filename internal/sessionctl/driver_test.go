package sessionctl

import "testing"

// driveTranscoder is a package-local double, used to whitebox-test drive()
// without the Controller's public Submit/Cancel surface getting in the way.
type driveTranscoder struct {
	calls []string
}

func (d *driveTranscoder) Start(key Key, _ Request, _ ClientCallback) {
	d.calls = append(d.calls, "start:"+key.String())
}

func (d *driveTranscoder) Pause(key Key) {
	d.calls = append(d.calls, "pause:"+key.String())
}

func (d *driveTranscoder) Resume(key Key, _ Request) {
	d.calls = append(d.calls, "resume:"+key.String())
}

func (d *driveTranscoder) Stop(key Key) {
	d.calls = append(d.calls, "stop:"+key.String())
}

func TestDriveNoopWhenBothNil(t *testing.T) {
	tc := &driveTranscoder{}
	c := New(tc)
	c.drive()
	if len(tc.calls) != 0 {
		t.Fatalf("expected no calls, got %v", tc.calls)
	}
}

func TestDriveResumesCurrentWhenReselectedWhilePaused(t *testing.T) {
	tc := &driveTranscoder{}
	c := New(tc)
	k := Key{ClientID: 1, SessionID: 1}

	if err := c.Submit(1, 1, 100, nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	c.OnStarted(k)
	// Pause it out from under a foreground preemption, then let it become
	// top again without anything else changing.
	s, err := c.reg.get(k)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	s.State = Paused
	tc.calls = nil

	c.drive() // current == target == k, target.State == Paused
	want := []string{"resume:" + k.String()}
	if len(tc.calls) != 1 || tc.calls[0] != want[0] {
		t.Fatalf("calls = %v, want %v", tc.calls, want)
	}
}

func TestDriveResourceLostBlocksConvergence(t *testing.T) {
	tc := &driveTranscoder{}
	c := New(tc)
	if err := c.Submit(1, 1, 100, nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	tc.calls = nil
	c.resourceLost = true
	c.current = nil

	c.drive()
	if len(tc.calls) != 0 {
		t.Fatalf("expected drive to no-op while resource lost, got %v", tc.calls)
	}
}

func TestDriveOrderingPauseBeforeStart(t *testing.T) {
	tc := &driveTranscoder{}
	c := New(tc)

	if err := c.Submit(1, 1, 100, nil, nil); err != nil {
		t.Fatalf("submit (1,1): %v", err)
	}
	c.OnStarted(Key{ClientID: 1, SessionID: 1})
	if err := c.Submit(2, 1, 200, nil, nil); err != nil {
		t.Fatalf("submit (2,1): %v", err)
	}
	tc.calls = nil

	c.OnTopUidsChanged([]int32{200})

	want := []string{"pause:" + (Key{ClientID: 1, SessionID: 1}).String(), "start:" + (Key{ClientID: 2, SessionID: 1}).String()}
	if len(tc.calls) != 2 || tc.calls[0] != want[0] || tc.calls[1] != want[1] {
		t.Fatalf("calls = %v, want pause before start: %v", tc.calls, want)
	}
}
