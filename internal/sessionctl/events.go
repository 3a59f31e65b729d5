package sessionctl

// This file implements the event sink (C5): the single entry point for
// every Transcoder callback. Each method looks the session up by key and
// applies the transition in spec's callback table. A callback for a key no
// longer in the registry, or one that doesn't match the precondition for
// its row, is spurious: it is logged and dropped, never causes a panic.

// OnStarted acknowledges a Start or Resume call. Valid from NotStarted or
// Paused; transitions the session to Running. No driver re-invocation - the
// driver already issued the Start that this acknowledges.
func (c *Controller) OnStarted(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.reg.get(key)
	if err != nil || (s.State != NotStarted && s.State != Paused) {
		c.logSpurious("onStarted", key, err)
		return
	}
	s.State = Running
	c.notifyClient(s, func(cb ClientCallback) { cb.OnTranscodingStarted(key.SessionID) })
	c.validateState()
}

// OnPaused acknowledges a Pause call. Valid from Running; transitions to
// Paused and re-invokes the driver, since pausing the previously-current
// session is often the first half of a convergence pass.
func (c *Controller) OnPaused(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.reg.get(key)
	if err != nil || s.State != Running {
		c.logSpurious("onPaused", key, err)
		return
	}
	s.State = Paused
	c.notifyClient(s, func(cb ClientCallback) { cb.OnTranscodingPaused(key.SessionID) })
	c.drive()
	c.validateState()
}

// OnResumed acknowledges a Resume call. Valid from Paused; transitions to
// Running.
func (c *Controller) OnResumed(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.reg.get(key)
	if err != nil || s.State != Paused {
		c.logSpurious("onResumed", key, err)
		return
	}
	s.State = Running
	c.notifyClient(s, func(cb ClientCallback) { cb.OnTranscodingResumed(key.SessionID) })
	c.validateState()
}

// OnFinish reports successful completion. The session is removed from its
// queue and the registry; if it was current, current is cleared. The client
// is notified exactly once, then the driver picks the next session.
func (c *Controller) OnFinish(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.reg.get(key)
	if err != nil {
		c.logSpurious("onFinish", key, err)
		return
	}
	c.destroySession(s)
	c.notifyClient(s, func(cb ClientCallback) { cb.OnTranscodingFinished(key.SessionID) })
	c.drive()
	c.validateState()
}

// OnError reports a transcoder-side failure. Destruction mirrors onFinish;
// the client is notified with the same error code exactly once.
func (c *Controller) OnError(key Key, code TranscoderErrorCode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.reg.get(key)
	if err != nil {
		c.logSpurious("onError", key, err)
		return
	}
	c.destroySession(s)
	c.notifyClient(s, func(cb ClientCallback) { cb.OnTranscodingFailed(key.SessionID, code) })
	c.drive()
	c.validateState()
}

// OnProgressUpdate forwards a progress sample to the client. progress can in
// principle arrive after OnFinish/OnError already destroyed the session; that
// update is dropped like any other spurious callback. Decreasing values are
// accepted and forwarded rather than suppressed - see DESIGN.md for the
// rationale (property 4 permits but does not require dropping them).
func (c *Controller) OnProgressUpdate(key Key, progress int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.reg.get(key)
	if err != nil {
		c.logSpurious("onProgressUpdate", key, err)
		return
	}
	s.LastProgress = progress
	c.notifyClient(s, func(cb ClientCallback) { cb.OnProgressUpdate(key.SessionID, progress) })
}

// OnResourceLost reports that the codec hardware has been reclaimed. The
// resource-lost flag blocks the driver (see drive) until OnResourceAvailable
// clears it. If a session is current, its client is told via OnResumePending,
// and the session is paused first if it is Running; the session stays on
// its queue so it resumes from the same position once the resource returns.
func (c *Controller) OnResourceLost() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resourceLost = true
	if c.current != nil {
		if s, err := c.reg.get(*c.current); err == nil {
			if s.State == Running {
				c.transcoder.Pause(s.Key)
			}
			c.notifyClient(s, func(cb ClientCallback) { cb.OnResumePending(s.Key.SessionID) })
		}
	}
	c.validateState()
}

// destroySession removes s from its queue and the registry, clearing
// current if s was current. Caller must hold mu and must call drive()
// afterward.
func (c *Controller) destroySession(s *Session) {
	if c.current != nil && *c.current == s.Key {
		c.current = nil
	}
	c.removeFromQueue(s.UID, s.Key)
	_, _ = c.reg.remove(s.Key)
}

func (c *Controller) logSpurious(callback string, key Key, lookupErr error) {
	if lookupErr != nil {
		c.logger.Warn("dropping spurious callback for unknown session", "callback", callback, "key", key.String())
		return
	}
	c.logger.Warn("dropping callback with inconsistent state", "callback", callback, "key", key.String())
}
