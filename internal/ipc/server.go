package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"transcodesched/internal/daemon"
	"transcodesched/internal/logging"
)

const serviceName = "Transcodesched"

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. shutdown is
// invoked (once, from a fresh goroutine) when a client requests daemon
// exit; it may be nil when shutdown over IPC is not supported.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger, shutdown func()) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx, shutdown: shutdown}
	if err := rpcServer.RegisterName(serviceName, srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon   *daemon.Daemon
	logger   *slog.Logger
	ctx      context.Context
	shutdown func()
	stopOnce sync.Once
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Submit(req SubmitRequest, resp *SubmitResponse) error {
	spec := daemon.SubmitSpec{
		ClientID:          req.ClientID,
		SessionID:         req.SessionID,
		UID:               req.UID,
		InputPath:         req.InputPath,
		OutputDir:         req.OutputDir,
		Preset:            req.Preset,
		ProcessingSeconds: req.ProcessingSeconds,
	}
	if err := s.daemon.Submit(s.ctx, spec); err != nil {
		resp.Accepted = false
		resp.Message = err.Error()
		return nil
	}
	resp.Accepted = true
	resp.Message = "session accepted"
	return nil
}

func (s *service) Cancel(req CancelRequest, resp *CancelResponse) error {
	if err := s.daemon.Cancel(s.ctx, req.ClientID, req.SessionID); err != nil {
		resp.Cancelled = false
		resp.Message = err.Error()
		return nil
	}
	resp.Cancelled = true
	resp.Message = "session cancelled"
	return nil
}

func (s *service) CancelClient(req CancelClientRequest, resp *CancelClientResponse) error {
	resp.Removed = s.daemon.CancelClient(s.ctx, req.ClientID)
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.Backend = status.Backend
	resp.LockPath = status.LockPath
	resp.SocketPath = status.SocketPath
	resp.AuditDBPath = status.AuditDBPath
	if !status.StartedAt.IsZero() {
		resp.StartedAt = status.StartedAt.UTC().Format(time.RFC3339)
	}
	resp.ResourceAvailable = status.ResourceAvailable
	resp.ResourceLost = status.Controller.ResourceLost
	resp.TopUids = status.TopUids
	resp.UIDOrder = status.Controller.UIDOrder
	if cur := status.Controller.Current; cur != nil {
		resp.Current = &SessionRef{ClientID: cur.ClientID, SessionID: cur.SessionID}
	}
	resp.Sessions = make([]SessionInfo, 0, len(status.Controller.Sessions))
	for _, session := range status.Controller.Sessions {
		resp.Sessions = append(resp.Sessions, SessionInfo{
			ClientID:  session.Key.ClientID,
			SessionID: session.Key.SessionID,
			UID:       session.UID,
			State:     session.State.String(),
			Progress:  session.LastProgress,
		})
	}
	return nil
}

func (s *service) SetTopUids(req TopUidsRequest, resp *TopUidsResponse) error {
	s.daemon.SetTopUids(req.UIDs)
	resp.Applied = true
	return nil
}

func (s *service) SetResource(req ResourceRequest, resp *ResourceResponse) error {
	s.daemon.SetResourceAvailable(req.Available)
	resp.Available = req.Available
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	records, err := s.daemon.History(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Records = make([]HistoryRecord, 0, len(records))
	for _, rec := range records {
		out := HistoryRecord{
			ClientID:      rec.Key.ClientID,
			SessionID:     rec.Key.SessionID,
			UID:           rec.UID,
			Outcome:       string(rec.Outcome),
			ErrorCode:     int32(rec.ErrorCode),
			FinalProgress: rec.FinalProgress,
		}
		if !rec.RecordedAt.IsZero() {
			out.RecordedAt = rec.RecordedAt.UTC().Format(time.RFC3339)
		}
		resp.Records = append(resp.Records, out)
	}
	return nil
}

func (s *service) Shutdown(_ ShutdownRequest, resp *ShutdownResponse) error {
	if s.shutdown == nil {
		resp.Stopping = false
		return errors.New("daemon does not support shutdown over IPC")
	}
	s.log().Info("shutdown requested over IPC")
	s.stopOnce.Do(func() { go s.shutdown() })
	resp.Stopping = true
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	if err := s.daemon.TestNotification(s.ctx); err != nil {
		resp.Sent = false
		resp.Message = err.Error()
		return nil
	}
	resp.Sent = true
	resp.Message = "notification sent"
	return nil
}
