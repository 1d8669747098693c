package sqlclient

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuannm99/csvsql/internal/sql/executor"
	"github.com/tuannm99/csvsql/server/csvsqlwire"
)

// ServerError is an error the server reported for a request. Kind is the
// engine error kind, e.g. SYNTAX or EXEC.
type ServerError struct {
	Kind    string
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// Client is a synchronous client for one server session.
// It locks send/recv so you can call Exec concurrently but they'll serialize.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
	id   atomic.Uint64

	// Optional per-request timeout (0 = no timeout).
	rwTimeout time.Duration
}

func Dial(addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: c}, nil
}

func DialContext(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: c}, nil
}

// SetRWTimeout sets a per-Exec read/write deadline.
// Useful to avoid hanging forever if server dies.
func (c *Client) SetRWTimeout(d time.Duration) {
	if c == nil {
		return
	}
	c.rwTimeout = d
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Exec(sql string) (*executor.Result, error) {
	return c.ExecContext(context.Background(), sql)
}

func (c *Client) ExecContext(ctx context.Context, sql string) (*executor.Result, error) {
	resp, err := c.roundTrip(ctx, csvsqlwire.ExecuteRequest{Op: csvsqlwire.OpExec, SQL: sql})
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Explain returns the compiled program listing for sql without running it.
func (c *Client) Explain(ctx context.Context, sql string) (string, error) {
	resp, err := c.roundTrip(ctx, csvsqlwire.ExecuteRequest{Op: csvsqlwire.OpExplain, SQL: sql})
	if err != nil {
		return "", err
	}
	return resp.Plan, nil
}

// Tables lists the tables of the server's database.
func (c *Client) Tables(ctx context.Context) ([]string, error) {
	resp, err := c.roundTrip(ctx, csvsqlwire.ExecuteRequest{Op: csvsqlwire.OpTables})
	if err != nil {
		return nil, err
	}
	return resp.Tables, nil
}

func (c *Client) roundTrip(ctx context.Context, req csvsqlwire.ExecuteRequest) (*csvsqlwire.ExecuteResponse, error) {
	if c == nil || c.conn == nil {
		return nil, fmt.Errorf("sqlclient: nil client")
	}

	req.ID = c.id.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.applyDeadline(ctx); err != nil {
		return nil, err
	}
	// an idle connection must not expire
	defer func() { _ = c.conn.SetDeadline(time.Time{}) }()

	if err := csvsqlwire.WriteFrame(c.conn, req); err != nil {
		return nil, err
	}

	var resp csvsqlwire.ExecuteResponse
	if err := csvsqlwire.ReadFrame(c.conn, &resp); err != nil {
		return nil, err
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("sqlclient: response id mismatch: got=%d want=%d", resp.ID, req.ID)
	}
	if resp.Error != "" {
		return nil, &ServerError{Kind: resp.Kind, Message: resp.Error}
	}
	return &resp, nil
}

// applyDeadline prefers the context deadline over rwTimeout.
func (c *Client) applyDeadline(ctx context.Context) error {
	if dl, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(dl)
	}
	if c.rwTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.rwTimeout))
	}
	return nil
}
