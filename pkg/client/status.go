package client

import (
	"context"
	"errors"
	"time"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/packet"
	"github.com/minelink/minelink/pkg/proto/state"
)

// StatusResult is the outcome of a server list ping.
type StatusResult struct {
	// The status JSON as sent by the server.
	JSON string
	// Round-trip time of the ping that followed the status exchange.
	Latency time.Duration
}

// Status performs a server list ping: handshake with the Status intent,
// request/response, then a ping/pong pair for the latency measurement.
// The connection is closed when Status returns.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	result := &StatusResult{}
	var pingStart time.Time
	done := false

	c.Once(&packet.StatusResponse{}, func(p proto.Packet) {
		result.JSON = p.(*packet.StatusResponse).Status
		pingStart = time.Now()
		_ = c.Emit(&packet.StatusPing{Payload: pingStart.UnixMilli()})
	})
	c.Once(&packet.StatusPing{}, func(proto.Packet) {
		result.Latency = time.Since(pingStart)
		done = true
		_ = c.conn.Close()
	})

	err := c.conn.Send(&packet.Handshake{
		ProtocolVersion: proto.Protocol,
		ServerAddress:   c.host,
		Port:            c.port,
		NextStatus:      packet.StatusHandshakeIntent,
	}, func() {
		c.conn.SetState(state.Status)
	})
	if err != nil {
		return nil, err
	}
	if err = c.conn.Send(&packet.StatusRequest{}, nil); err != nil {
		return nil, err
	}

	if err = c.conn.Run(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !done {
		return nil, errors.New("connection closed before the status exchange completed")
	}
	return result, nil
}
