package mllp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"
)

const defaultClientTimeout = 30 * time.Second

// Client sends HL7 messages to an MLLP endpoint and returns the raw ACK.
// One connection is opened per send, matching the usual interface-engine
// client behavior.
type Client struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
}

func NewClient(addr string, timeout time.Duration) (*Client, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("invalid mllp address %q: %w", addr, err)
	}
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	return &Client{addr: addr, timeout: timeout}, nil
}

// Send frames and writes the message, then blocks until the ACK arrives or
// the timeout / context expires.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(dialCtx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("failed to connect to mllp endpoint %s: %w", c.addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("failed to set connection deadline: %w", err)
	}

	if err := WriteFrame(conn, []byte(message)); err != nil {
		return "", err
	}

	ack, err := ReadFrame(bufio.NewReader(conn))
	if err != nil {
		return "", fmt.Errorf("failed to read ack: %w", err)
	}

	return string(ack), nil
}
