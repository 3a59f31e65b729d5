package sessionctl

import (
	"reflect"
	"testing"
)

func TestUidQueueSetOfflineAlwaysPresent(t *testing.T) {
	q := newUidQueueSet()
	order := q.uidOrder()
	if !reflect.DeepEqual(order, []int32{OfflineUID}) {
		t.Fatalf("initial ordering = %v, want [offline]", order)
	}
}

func TestUidQueueSetEnqueueNewUidGoesBeforeOffline(t *testing.T) {
	q := newUidQueueSet()
	q.enqueue(100, Key{ClientID: 1, SessionID: 1})
	q.enqueue(200, Key{ClientID: 2, SessionID: 1})

	order := q.uidOrder()
	want := []int32{100, 200, OfflineUID}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("ordering = %v, want %v", order, want)
	}
}

func TestUidQueueSetFIFOWithinUid(t *testing.T) {
	q := newUidQueueSet()
	k1 := Key{ClientID: 1, SessionID: 1}
	k2 := Key{ClientID: 1, SessionID: 2}
	q.enqueue(100, k1)
	q.enqueue(100, k2)

	head, ok := q.headOfTopUid()
	if !ok || head != k1 {
		t.Fatalf("head = %v ok=%v, want %v", head, ok, k1)
	}

	q.remove(100, k1)
	head, ok = q.headOfTopUid()
	if !ok || head != k2 {
		t.Fatalf("head after remove = %v ok=%v, want %v", head, ok, k2)
	}
}

func TestUidQueueSetEmptyQueueRemovedFromOrdering(t *testing.T) {
	q := newUidQueueSet()
	k1 := Key{ClientID: 1, SessionID: 1}
	q.enqueue(100, k1)
	q.remove(100, k1)

	order := q.uidOrder()
	if !reflect.DeepEqual(order, []int32{OfflineUID}) {
		t.Fatalf("ordering after drain = %v, want [offline]", order)
	}
}

func TestUidQueueSetOfflineQueueNeverRemovedWhenEmpty(t *testing.T) {
	q := newUidQueueSet()
	k1 := Key{ClientID: 1, SessionID: 1}
	q.enqueue(OfflineUID, k1)
	q.remove(OfflineUID, k1)

	order := q.uidOrder()
	if !reflect.DeepEqual(order, []int32{OfflineUID}) {
		t.Fatalf("offline ordering after drain = %v, want [offline] to remain", order)
	}
	if _, ok := q.queues[OfflineUID]; !ok {
		t.Fatalf("offline queue must never be deleted")
	}
}

func TestUidQueueSetMoveUidsToTopUnknownUidsIgnored(t *testing.T) {
	q := newUidQueueSet()
	q.enqueue(100, Key{ClientID: 1, SessionID: 1})

	q.moveUidsToTop(map[int32]struct{}{999: {}}, false)

	order := q.uidOrder()
	want := []int32{100, OfflineUID}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("ordering = %v, want %v (unknown uid must be ignored)", order, want)
	}
}

func TestUidQueueSetMoveUidsToTopPreservesCurrentTop(t *testing.T) {
	q := newUidQueueSet()
	q.enqueue(100, Key{ClientID: 1, SessionID: 1})
	q.enqueue(200, Key{ClientID: 2, SessionID: 1})
	// order is now [100, 200, offline]; 100 is current top.

	q.moveUidsToTop(map[int32]struct{}{200: {}, 100: {}}, true)

	order := q.uidOrder()
	if order[0] != 100 {
		t.Fatalf("preserveCurrentTop=true: ordering = %v, want 100 to remain at head", order)
	}
	if order[len(order)-1] != OfflineUID {
		t.Fatalf("offline must stay at tail, got %v", order)
	}
}

func TestUidQueueSetMoveUidsToTopPreserveDoesNotPinTopOutsideSet(t *testing.T) {
	q := newUidQueueSet()
	q.enqueue(100, Key{ClientID: 1, SessionID: 1})
	q.enqueue(200, Key{ClientID: 2, SessionID: 1})
	q.enqueue(300, Key{ClientID: 3, SessionID: 1})
	// order is now [100, 200, 300, offline].

	q.moveUidsToTop(map[int32]struct{}{300: {}}, true)

	order := q.uidOrder()
	if order[0] != 300 {
		t.Fatalf("300 should move to head when it wasn't the prior top, got %v", order)
	}
}

func TestUidQueueSetMoveUidsToTopEmptySetNoop(t *testing.T) {
	q := newUidQueueSet()
	q.enqueue(100, Key{ClientID: 1, SessionID: 1})
	before := q.uidOrder()

	q.moveUidsToTop(map[int32]struct{}{}, true)

	after := q.uidOrder()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("empty uid set must not change ordering: before %v after %v", before, after)
	}
}
