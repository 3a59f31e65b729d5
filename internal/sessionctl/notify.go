package sessionctl

// notifyClient is the client notifier's (C7) single entry point: it fans
// session lifecycle changes out to the session's weak client callback,
// dropping the notification silently if the callback has expired (s.Callback
// is nil). Invoked while mu is held, per ClientCallback's contract: the
// callback must not block and must not re-enter Submit/Cancel/GetSession. If
// it needs to, it must defer the work to a goroutine of its own.
func (c *Controller) notifyClient(s *Session, deliver func(ClientCallback)) {
	if s == nil || s.Callback == nil {
		return
	}
	deliver(s.Callback)
}
