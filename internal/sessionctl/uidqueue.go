package sessionctl

import "container/list"

// uidQueueSet is the UID-partitioned queue set (C2): one FIFO queue of
// session keys per UID, plus an ordering of UIDs from most-recently-top to
// least-recently-top. The offline pseudo-UID (OfflineUID) always has a
// queue, occupies a fixed position in the ordering (initially the tail), and
// is never removed or promoted.
//
// Not safe for concurrent use on its own - callers must hold Controller.mu.
type uidQueueSet struct {
	queues map[int32]*list.List // uid -> FIFO of Key
	order  *list.List           // uid ordering, front = most-recently-top
}

func newUidQueueSet() *uidQueueSet {
	q := &uidQueueSet{
		queues: make(map[int32]*list.List),
		order:  list.New(),
	}
	q.order.PushBack(OfflineUID)
	q.queues[OfflineUID] = list.New()
	return q
}

// enqueue appends key to uid's queue, creating the queue and inserting uid
// into the ordering (immediately ahead of the offline sentinel) if this is
// the first session seen for that uid.
func (q *uidQueueSet) enqueue(uid int32, key Key) {
	fifo, ok := q.queues[uid]
	if !ok {
		fifo = list.New()
		q.queues[uid] = fifo
		if uid != OfflineUID {
			q.order.InsertBefore(uid, q.offlineElement())
		}
	}
	fifo.PushBack(key)
}

// remove deletes key from uid's queue. If the queue becomes empty, the uid
// is dropped from the ordering unless it is the offline sentinel.
func (q *uidQueueSet) remove(uid int32, key Key) {
	fifo, ok := q.queues[uid]
	if !ok {
		return
	}
	for e := fifo.Front(); e != nil; e = e.Next() {
		if e.Value.(Key) == key {
			fifo.Remove(e)
			break
		}
	}
	if uid != OfflineUID && fifo.Len() == 0 {
		delete(q.queues, uid)
		if e := q.findUidElement(uid); e != nil {
			q.order.Remove(e)
		}
	}
}

// headOfTopUid returns the head of the first non-empty queue walking the
// ordering front to back.
func (q *uidQueueSet) headOfTopUid() (Key, bool) {
	for e := q.order.Front(); e != nil; e = e.Next() {
		uid := e.Value.(int32)
		fifo := q.queues[uid]
		if fifo != nil && fifo.Len() > 0 {
			return fifo.Front().Value.(Key), true
		}
	}
	return Key{}, false
}

// moveUidsToTop reorders the UID ordering so that every uid in uids that
// already has a queue is moved to the front of the ordering. The ordering is
// walked head to tail and each promoted uid is pushed to the front in turn,
// so promoted uids end up in the reverse of their previous relative order.
// Unknown uids (no queue yet) are ignored. Offline's position is
// always preserved. If preserveCurrentTop is true and the pre-call head
// uid is itself in uids, it stays at the head instead of being reshuffled
// with the rest - this absorbs a foreground flicker without letting a
// promoted set that excludes the head block preemption.
func (q *uidQueueSet) moveUidsToTop(uids map[int32]struct{}, preserveCurrentTop bool) {
	if len(uids) == 0 {
		return
	}
	front := q.order.Front()
	if front == nil {
		return
	}
	curTop := front.Value.(int32)
	pushCurTopToFront := false
	moved := 0

	e := q.order.Front()
	for e != nil {
		uid := e.Value.(int32)
		next := e.Next()
		if uid != OfflineUID {
			if _, want := uids[uid]; want {
				q.order.Remove(e)
				if uid == curTop && preserveCurrentTop {
					pushCurTopToFront = true
				} else {
					q.order.PushFront(uid)
				}
				moved++
				if moved == len(uids) {
					break
				}
			}
		}
		e = next
	}
	if pushCurTopToFront {
		q.order.PushFront(curTop)
	}
}

// hasUid reports whether uid still has a queue. After remove drains a
// non-offline uid this turns false; the controller uses that edge to stop
// monitoring the uid.
func (q *uidQueueSet) hasUid(uid int32) bool {
	_, ok := q.queues[uid]
	return ok
}

// uidOrder returns the current UID ordering front-to-back. Used by Dump.
func (q *uidQueueSet) uidOrder() []int32 {
	out := make([]int32, 0, q.order.Len())
	for e := q.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(int32))
	}
	return out
}

// keysFor returns uid's queue contents head-to-tail. Used by Dump.
func (q *uidQueueSet) keysFor(uid int32) []Key {
	fifo, ok := q.queues[uid]
	if !ok {
		return nil
	}
	out := make([]Key, 0, fifo.Len())
	for e := fifo.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Key))
	}
	return out
}

func (q *uidQueueSet) offlineElement() *list.Element {
	if e := q.findUidElement(OfflineUID); e != nil {
		return e
	}
	// Constructed in newUidQueueSet; absence would be a programming error.
	panic("sessionctl: offline uid missing from ordering")
}

func (q *uidQueueSet) findUidElement(uid int32) *list.Element {
	for e := q.order.Front(); e != nil; e = e.Next() {
		if e.Value.(int32) == uid {
			return e
		}
	}
	return nil
}
