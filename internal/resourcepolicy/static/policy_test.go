package static

import "testing"

type recordingListener struct {
	available int
	lost      int
}

func (r *recordingListener) OnResourceAvailable() { r.available++ }
func (r *recordingListener) OnResourceLost()      { r.lost++ }

func TestAttachPushesLostWhenConstructedUnavailable(t *testing.T) {
	p := New(false, nil)
	l := &recordingListener{}
	p.Attach(l)

	if l.lost != 1 || l.available != 0 {
		t.Fatalf("expected one lost push, got lost=%d available=%d", l.lost, l.available)
	}
}

func TestAttachSilentWhenConstructedAvailable(t *testing.T) {
	p := New(true, nil)
	l := &recordingListener{}
	p.Attach(l)

	if l.lost != 0 || l.available != 0 {
		t.Fatalf("expected no pushes, got lost=%d available=%d", l.lost, l.available)
	}
}

func TestSetAvailablePushesOnlyOnTransition(t *testing.T) {
	p := New(true, nil)
	l := &recordingListener{}
	p.Attach(l)

	p.SetAvailable(true) // no change
	if l.lost != 0 || l.available != 0 {
		t.Fatalf("expected no push on no-op set, got lost=%d available=%d", l.lost, l.available)
	}

	p.SetAvailable(false)
	if l.lost != 1 {
		t.Fatalf("expected lost push, got %d", l.lost)
	}

	p.SetAvailable(true)
	if l.available != 1 {
		t.Fatalf("expected available push, got %d", l.available)
	}
}

func TestToggleFlipsAndReports(t *testing.T) {
	p := New(true, nil)
	l := &recordingListener{}
	p.Attach(l)

	if got := p.Toggle(); got {
		t.Fatal("expected toggle to report false")
	}
	if p.Available() {
		t.Fatal("expected policy to be unavailable after toggle")
	}
	if got := p.Toggle(); !got {
		t.Fatal("expected toggle to report true")
	}
	if l.lost != 1 || l.available != 1 {
		t.Fatalf("expected one push each way, got lost=%d available=%d", l.lost, l.available)
	}
}
