// Package client implements the protocol engine client: a connection
// driven through the Handshake, Login, Configuration and Play phases with
// a packet-type keyed handler registry on the receive side.
package client

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/minelink/minelink/pkg/config"
	"github.com/minelink/minelink/pkg/mcnet"
	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/packet"
	configpacket "github.com/minelink/minelink/pkg/proto/packet/config"
	"github.com/minelink/minelink/pkg/proto/state"
	"github.com/minelink/minelink/pkg/proto/util"
	"github.com/minelink/minelink/pkg/util/uuid"
)

// Client is a protocol engine client on one connection.
//
// Handlers registered before Login or Status see every packet of the
// session; the default handlers driving the state machine are registered
// at construction and user handlers are additive.
type Client struct {
	log      logr.Logger
	cfg      config.Config
	conn     *mcnet.Conn
	handlers *handlerRegistry

	host string
	port int

	playerID uuid.UUID
}

// Connect opens a TCP connection to the configured address and returns a
// client in the Handshake phase with the default handlers registered.
func Connect(ctx context.Context, cfg config.Config, log logr.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	host, portStr, err := net.SplitHostPort(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", cfg.Address, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	conn, err := mcnet.Dial(ctx, cfg.Address, log)
	if err != nil {
		return nil, err
	}

	c := &Client{
		log:      log.WithName("client"),
		cfg:      cfg,
		conn:     conn,
		handlers: newHandlerRegistry(log.WithName("handlers")),
		host:     host,
		port:     port,
		playerID: uuid.OfflinePlayerUUID(cfg.Name),
	}
	conn.SetHandler(c.dispatch)
	c.registerDefaultHandlers()
	return c, nil
}

// PlayerID returns the offline-mode UUID derived from the player name.
func (c *Client) PlayerID() uuid.UUID { return c.playerID }

// Conn exposes the underlying connection.
func (c *Client) Conn() *mcnet.Conn { return c.conn }

// Close closes the connection. It does not wait for the workers; Login or
// Status returns once both have stopped.
func (c *Client) Close() error { return c.conn.Close() }

// On registers fn for every arrival of prototype's packet type.
func (c *Client) On(prototype proto.Packet, fn HandlerFunc) {
	c.handlers.register(prototype, Unlimited, fn)
}

// OnTimes registers fn for at most times arrivals of prototype's packet type.
func (c *Client) OnTimes(prototype proto.Packet, times int, fn HandlerFunc) {
	c.handlers.register(prototype, times, fn)
}

// Once registers fn for a single arrival of prototype's packet type.
func (c *Client) Once(prototype proto.Packet, fn HandlerFunc) {
	c.handlers.register(prototype, 1, fn)
}

// OnUnknown registers fn for packets without a schema in the current phase.
func (c *Client) OnUnknown(fn func(p *proto.UnknownPacket)) {
	c.handlers.register(&proto.UnknownPacket{}, Unlimited, func(p proto.Packet) {
		fn(p.(*proto.UnknownPacket))
	})
}

// Emit enqueues the packet on the send queue. The optional onSent callback
// runs after the bytes were handed to the socket and before the next queue
// entry is consumed; it must not block.
func (c *Client) Emit(p proto.Packet, onSent ...func()) error {
	var cb func()
	if len(onSent) > 0 {
		cb = onSent[0]
	}
	c.log.V(1).Info("C -> S", "packet", fmt.Sprintf("%T", p))
	return c.conn.Send(p, cb)
}

// dispatch routes a received packet to the registered handlers. A payload
// without a schema, and a payload whose typed decode failed, reach the
// unknown-packet handlers instead.
func (c *Client) dispatch(pc *proto.PacketContext) {
	if !pc.KnownPacket() {
		data := pc.Payload
		if skip := util.VarIntLen(int(pc.PacketID)); skip <= len(data) {
			data = data[skip:]
		}
		c.log.V(1).Info("C <- S", "packet", "unknown", "id", pc.PacketID, "bytes", len(data))
		c.handlers.fire(&proto.UnknownPacket{ID: pc.PacketID, Data: data})
		return
	}
	c.log.V(1).Info("C <- S", "packet", fmt.Sprintf("%T", pc.Packet), "id", pc.PacketID)
	c.handlers.fire(pc.Packet)
}

// registerDefaultHandlers installs the automatic responses that drive the
// connection through login, configuration and play.
func (c *Client) registerDefaultHandlers() {
	c.On(&packet.SetCompression{}, func(p proto.Packet) {
		threshold := p.(*packet.SetCompression).Threshold
		if err := c.conn.SetCompressionThreshold(threshold, c.cfg.CompressionLevel); err != nil {
			c.log.Error(err, "error enabling compression", "threshold", threshold)
			_ = c.conn.Close()
		}
	})

	c.On(&packet.LoginSuccess{}, func(p proto.Packet) {
		s := p.(*packet.LoginSuccess)
		c.log.Info("login successful", "username", s.Username, "uuid", s.PlayerID)
		_ = c.Emit(&packet.LoginAcknowledged{}, func() {
			c.conn.SetState(state.Config)
		})
	})

	c.On(&configpacket.FinishConfiguration{}, func(proto.Packet) {
		_ = c.Emit(&configpacket.FinishConfiguration{}, func() {
			c.conn.SetState(state.Play)
		})
		c.log.Info("configuration finished, entering play")
	})

	c.On(&configpacket.KeepAlive{}, func(p proto.Packet) {
		_ = c.Emit(&configpacket.KeepAlive{KeepAliveID: p.(*configpacket.KeepAlive).KeepAliveID})
	})

	c.On(&configpacket.Ping{}, func(p proto.Packet) {
		_ = c.Emit(&configpacket.Pong{ID: p.(*configpacket.Ping).ID})
	})

	c.On(&packet.KeepAlive{}, func(p proto.Packet) {
		_ = c.Emit(&packet.KeepAlive{KeepAliveID: p.(*packet.KeepAlive).KeepAliveID})
	})

	c.On(&packet.SyncPlayerPosition{}, func(p proto.Packet) {
		_ = c.Emit(&packet.TeleportConfirm{TeleportID: p.(*packet.SyncPlayerPosition).TeleportID})
	})

	c.On(&packet.LoginPluginRequest{}, func(p proto.Packet) {
		// Custom login channels are not understood.
		_ = c.Emit(&packet.LoginPluginResponse{
			MessageID:  p.(*packet.LoginPluginRequest).MessageID,
			Successful: false,
		})
	})

	c.On(&packet.EncryptionRequest{}, func(proto.Packet) {
		c.log.Info("server requires encryption (online mode), disconnecting")
		_ = c.conn.Close()
	})

	c.On(&packet.LoginDisconnect{}, func(p proto.Packet) {
		c.log.Info("disconnected during login", "reason", p.(*packet.LoginDisconnect).Reason)
		_ = c.conn.Close()
	})
	c.On(&configpacket.Disconnect{}, func(p proto.Packet) {
		c.log.Info("disconnected during configuration", "reason", p.(*configpacket.Disconnect).Reason)
		_ = c.conn.Close()
	})
	c.On(&packet.Disconnect{}, func(p proto.Packet) {
		c.log.Info("disconnected", "reason", p.(*packet.Disconnect).Reason)
		_ = c.conn.Close()
	})
}

// Login performs the handshake and login start script, then runs the
// connection workers until the connection closes. The phase switch to
// Login is published by the handshake's completion callback, before any
// later queue entry is encoded.
func (c *Client) Login(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	err := c.conn.Send(&packet.Handshake{
		ProtocolVersion: proto.Protocol,
		ServerAddress:   c.host,
		Port:            c.port,
		NextStatus:      packet.LoginHandshakeIntent,
	}, func() {
		c.conn.SetState(state.Login)
	})
	if err != nil {
		return err
	}
	err = c.conn.Send(&packet.LoginStart{
		Name:     c.cfg.Name,
		PlayerID: c.playerID,
	}, nil)
	if err != nil {
		return err
	}
	return c.conn.Run()
}
