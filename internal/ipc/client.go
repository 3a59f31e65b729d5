package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) call(method string, req, resp any) error {
	return c.client.Call(serviceName+"."+method, req, resp)
}

// Submit submits one session.
func (c *Client) Submit(req SubmitRequest) (*SubmitResponse, error) {
	var resp SubmitResponse
	if err := c.call("Submit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel cancels one session by key.
func (c *Client) Cancel(req CancelRequest) (*CancelResponse, error) {
	var resp CancelResponse
	if err := c.call("Cancel", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelClient removes every session belonging to a client id.
func (c *Client) CancelClient(clientID int64) (*CancelClientResponse, error) {
	var resp CancelClientResponse
	if err := c.call("CancelClient", CancelClientRequest{ClientID: clientID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetTopUids replaces the foreground UID set.
func (c *Client) SetTopUids(uids []int32) (*TopUidsResponse, error) {
	var resp TopUidsResponse
	if err := c.call("SetTopUids", TopUidsRequest{UIDs: uids}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetResource sets resource availability.
func (c *Client) SetResource(available bool) (*ResourceResponse, error) {
	var resp ResourceResponse
	if err := c.call("SetResource", ResourceRequest{Available: available}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History fetches recent terminal transitions.
func (c *Client) History(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.call("History", HistoryRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown() (*ShutdownResponse, error) {
	var resp ShutdownResponse
	if err := c.call("Shutdown", ShutdownRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.call("TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
