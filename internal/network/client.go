// Package network talks to a remote prediction server.
package network

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net"
	"sync"
	"time"

	"github.com/Faultbox/voxelslice/internal/network/packets"
	"github.com/Faultbox/voxelslice/internal/predict"
)

// ErrNotConnected is returned when a request is made before Connect.
var ErrNotConnected = errors.New("not connected")

// Client is a Predictor backed by a prediction server over TCP.
// Requests are serialized; one slice is in flight at a time.
type Client struct {
	conn      net.Conn
	mu        sync.Mutex
	connected bool
	addr      string

	// Timeout bounds a single request when the context has no deadline.
	Timeout time.Duration
}

// New creates a new network client.
func New() *Client {
	return &Client{Timeout: 30 * time.Second}
}

// Connect connects to a prediction server.
func (c *Client) Connect(ctx context.Context, addr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return fmt.Errorf("already connected to %s", c.addr)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}

	c.attach(conn, addr)
	return nil
}

// attach adopts an established connection. Callers hold c.mu.
func (c *Client) attach(conn net.Conn, addr string) {
	c.conn = conn
	c.addr = addr
	c.connected = true
}

// Disconnect closes the connection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

// IsConnected returns connection status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Addr returns the server address of the current connection.
func (c *Client) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// Predict sends img to the server and waits for the transformed image.
// Transport errors drop the connection; the caller must reconnect.
func (c *Client) Predict(ctx context.Context, img image.Image) (image.Image, error) {
	req, err := packets.NewImagePacket(packets.CP_PREDICT_REQ, img)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, ErrNotConnected
	}

	deadline, ok := ctx.Deadline()
	if !ok && c.Timeout > 0 {
		deadline = time.Now().Add(c.Timeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if err := packets.Write(c.conn, req); err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("sending request: %w", err)
	}

	resp, err := packets.Read(c.conn)
	if err != nil {
		c.closeLocked()
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch resp.PacketID {
	case packets.PC_PREDICT_ACK:
		return resp.Image()
	case packets.PC_PREDICT_ERROR:
		return nil, fmt.Errorf("%w: server: %s", predict.ErrPredictionFailed, resp.Body)
	default:
		c.closeLocked()
		return nil, fmt.Errorf("%w: 0x%04x", packets.ErrUnknownPacketID, resp.PacketID)
	}
}
