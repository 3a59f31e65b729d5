package sessionctl

// selectNext returns the session that should be running next: the session
// at the head of the first non-empty queue when walking the UID ordering
// from head to tail. Total and pure with respect to (registry, uidQueueSet).
func selectNext(reg *registry, queues *uidQueueSet) *Session {
	key, ok := queues.headOfTopUid()
	if !ok {
		return nil
	}
	s, err := reg.get(key)
	if err != nil {
		// Queue membership invariant guarantees this doesn't happen; fail
		// soft rather than crash a selector that's supposed to be pure.
		return nil
	}
	return s
}
