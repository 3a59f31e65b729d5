package sessionctl

// drive is the state-convergence engine (C4). It is invoked after every
// mutation of the registry, the UID queue set, or the resource-lost flag. It
// reads current (the session the controller believes the Transcoder is
// presently executing) and target = selectNext(), and issues the minimal
// sequence of Transcoder calls to converge one onto the other.
//
// Ordering guarantee: within a single call, Pause for a displaced session is
// always issued before Start/Resume for its replacement. The Transcoder may
// process them concurrently; current reflects the controller's intent, not
// acknowledged state - Running/Paused transitions on the session record
// itself only happen when the corresponding callback arrives (see events.go).
//
// Caller must hold mu.
func (c *Controller) drive() {
	if c.resourceLost {
		return
	}

	target := selectNext(c.reg, c.queues)

	var curSession *Session
	if c.current != nil {
		if s, err := c.reg.get(*c.current); err == nil {
			curSession = s
		}
	}

	if curSession != nil && target != nil && curSession.Key == target.Key {
		if target.State == Paused {
			c.logger.Debug("driver: resuming current", "key", target.Key.String())
			c.transcoder.Resume(target.Key, target.Request)
		}
		return
	}

	if curSession != nil && curSession.State == Running {
		c.logger.Debug("driver: pausing displaced session", "key", curSession.Key.String())
		c.transcoder.Pause(curSession.Key)
	}

	if target != nil {
		switch target.State {
		case NotStarted:
			c.logger.Debug("driver: starting target", "key", target.Key.String())
			c.transcoder.Start(target.Key, target.Request, target.Callback)
		case Paused:
			c.logger.Debug("driver: resuming target", "key", target.Key.String())
			c.transcoder.Resume(target.Key, target.Request)
		}
		key := target.Key
		c.current = &key
	} else {
		c.current = nil
	}
}
