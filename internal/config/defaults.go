package config

const (
	defaultLogDir            = "~/.local/share/transcodesched/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultControlSocket     = "~/.local/share/transcodesched/control.sock"
	defaultLockPath          = "~/.local/share/transcodesched/transcodesched.lock"
	defaultAuditDBPath       = "~/.local/share/transcodesched/audit.db"
	defaultBackend           = "sim"
	defaultDraptoBinary      = "drapto"
	defaultProcessingSeconds = 30
	defaultNotifyTimeout     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:        defaultLogDir,
			ControlSocket: defaultControlSocket,
			LockPath:      defaultLockPath,
			AuditDBPath:   defaultAuditDBPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Transcoder: Transcoder{
			Backend:                  defaultBackend,
			DraptoBinary:             defaultDraptoBinary,
			DefaultProcessingSeconds: defaultProcessingSeconds,
		},
		ResourcePolicy: ResourcePolicy{
			InitiallyAvailable: true,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeout,
			SessionFailed:         true,
			QueueDrained:          true,
		},
	}
}
