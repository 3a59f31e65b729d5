package sessionctl

// This file implements the policy adapters (C6): thin translators from
// UidPolicy and ResourcePolicy pushes into operations on the UID queue set
// and the resource-lost flag.

// OnTopUidsChanged is the UidPolicy push entry point. It moves every known
// uid in uids to the front of the ordering. If a session is presently current
// and the uid currently at the head is itself in uids, that uid stays at the
// head; a head uid that is not in uids is displaced. This absorbs a
// transient top-UID flicker without pausing a session that's already
// running for that very UID (see scenario S5 in spec.md).
func (c *Controller) OnTopUidsChanged(uids []int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := make(map[int32]struct{}, len(uids))
	for _, uid := range uids {
		set[uid] = struct{}{}
	}
	c.queues.moveUidsToTop(set, c.current != nil)
	c.drive()
	c.validateState()
}

// OnResourceAvailable is the ResourcePolicy push entry point. It clears the
// resource-lost flag and re-invokes the driver; the controller never polls
// for resource availability, it only reacts to this push.
func (c *Controller) OnResourceAvailable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resourceLost = false
	c.drive()
	c.validateState()
}
