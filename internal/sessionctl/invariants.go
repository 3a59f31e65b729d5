package sessionctl

import "fmt"

// validateState re-checks the controller's structural invariants after a
// mutating call. It is a debug aid, not a recovery path: a violation means
// the controller is in an undefined state, so it panics rather than
// returning an error. Gated by checkInvariants (see WithInvariantChecks)
// so production serving can skip the O(#sessions) re-walk it costs on
// every entry point. Caller must hold mu.
func (c *Controller) validateState() {
	if !c.checkInvariants {
		return
	}

	offlineQueue, hasOffline := c.queues.queues[OfflineUID]
	if !hasOffline || offlineQueue == nil {
		panic("sessionctl: offline queue missing")
	}

	order := c.queues.uidOrder()
	if len(order) != len(c.queues.queues) {
		panic(fmt.Sprintf("sessionctl: uid ordering size %d does not match queue map size %d", len(order), len(c.queues.queues)))
	}

	totalQueued := 0
	seenRunning := 0
	for _, uid := range order {
		keys := c.queues.keysFor(uid)
		totalQueued += len(keys)
		for i, key := range keys {
			s, err := c.reg.get(key)
			if err != nil {
				panic(fmt.Sprintf("sessionctl: queued key %s for uid %d not present in registry", key.String(), uid))
			}
			if s.UID != uid {
				panic(fmt.Sprintf("sessionctl: session %s uid %d does not match its queue's uid %d", key.String(), s.UID, uid))
			}
			if s.State == Running {
				seenRunning++
				if i != 0 {
					panic(fmt.Sprintf("sessionctl: running session %s is not at the head of its queue", key.String()))
				}
			}
		}
	}
	if totalQueued != c.reg.len() {
		panic(fmt.Sprintf("sessionctl: total queued sessions %d does not match registry size %d", totalQueued, c.reg.len()))
	}
	if seenRunning > 1 {
		panic(fmt.Sprintf("sessionctl: %d sessions in state Running, at most one is allowed", seenRunning))
	}
}
