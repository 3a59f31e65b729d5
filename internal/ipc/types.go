package ipc

// SubmitRequest submits one transcoding session to the daemon.
type SubmitRequest struct {
	ClientID          int64  `json:"client_id"`
	SessionID         int32  `json:"session_id"`
	UID               int32  `json:"uid"`
	InputPath         string `json:"input_path,omitempty"`
	OutputDir         string `json:"output_dir,omitempty"`
	Preset            string `json:"preset,omitempty"`
	ProcessingSeconds int    `json:"processing_seconds,omitempty"`
}

// SubmitResponse reports submission outcome.
type SubmitResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// CancelRequest cancels one session by key.
type CancelRequest struct {
	ClientID  int64 `json:"client_id"`
	SessionID int32 `json:"session_id"`
}

// CancelResponse reports cancellation outcome.
type CancelResponse struct {
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message"`
}

// CancelClientRequest removes every session belonging to a client.
type CancelClientRequest struct {
	ClientID int64 `json:"client_id"`
}

// CancelClientResponse reports how many sessions were removed.
type CancelClientResponse struct {
	Removed int `json:"removed"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// SessionRef identifies a session in IPC payloads.
type SessionRef struct {
	ClientID  int64 `json:"client_id"`
	SessionID int32 `json:"session_id"`
}

// SessionInfo is one queued session's observable state.
type SessionInfo struct {
	ClientID  int64  `json:"client_id"`
	SessionID int32  `json:"session_id"`
	UID       int32  `json:"uid"`
	State     string `json:"state"`
	Progress  int32  `json:"progress"`
}

// StatusResponse represents daemon and controller status.
type StatusResponse struct {
	Running           bool          `json:"running"`
	PID               int           `json:"pid"`
	Backend           string        `json:"backend"`
	LockPath          string        `json:"lock_path"`
	SocketPath        string        `json:"socket_path"`
	AuditDBPath       string        `json:"audit_db_path"`
	StartedAt         string        `json:"started_at"`
	ResourceAvailable bool          `json:"resource_available"`
	ResourceLost      bool          `json:"resource_lost"`
	TopUids           []int32       `json:"top_uids"`
	UIDOrder          []int32       `json:"uid_order"`
	Current           *SessionRef   `json:"current,omitempty"`
	Sessions          []SessionInfo `json:"sessions"`
}

// TopUidsRequest replaces the foreground UID set.
type TopUidsRequest struct {
	UIDs []int32 `json:"uids"`
}

// TopUidsResponse acknowledges the foreground change.
type TopUidsResponse struct {
	Applied bool `json:"applied"`
}

// ResourceRequest sets resource availability.
type ResourceRequest struct {
	Available bool `json:"available"`
}

// ResourceResponse reports the resulting availability.
type ResourceResponse struct {
	Available bool `json:"available"`
}

// HistoryRequest fetches recent terminal transitions. Limit <= 0 returns
// everything.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryRecord is one terminal session transition.
type HistoryRecord struct {
	ClientID      int64  `json:"client_id"`
	SessionID     int32  `json:"session_id"`
	UID           int32  `json:"uid"`
	Outcome       string `json:"outcome"`
	ErrorCode     int32  `json:"error_code"`
	FinalProgress int32  `json:"final_progress"`
	RecordedAt    string `json:"recorded_at"`
}

// HistoryResponse contains history records, newest first.
type HistoryResponse struct {
	Records []HistoryRecord `json:"records"`
}

// ShutdownRequest asks the daemon to exit.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges the shutdown.
type ShutdownResponse struct {
	Stopping bool `json:"stopping"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
