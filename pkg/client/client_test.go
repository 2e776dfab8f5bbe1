package client

import (
	"compress/zlib"
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minelink/minelink/pkg/config"
	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/codec"
	"github.com/minelink/minelink/pkg/proto/packet"
	configpacket "github.com/minelink/minelink/pkg/proto/packet/config"
	"github.com/minelink/minelink/pkg/proto/state"
	"github.com/minelink/minelink/pkg/proto/util"
	"github.com/minelink/minelink/pkg/util/uuid"
)

// fakeServer accepts a single client connection and speaks the
// protocol with mirrored directions.
type fakeServer struct {
	t   *testing.T
	ln  net.Listener
	c   net.Conn
	dec *codec.Decoder
	enc *codec.Encoder
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	return &fakeServer{t: t, ln: ln}
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }

func (s *fakeServer) accept() {
	c, err := s.ln.Accept()
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = c.Close() })
	s.c = c
	s.dec = codec.NewDecoder(c, proto.ServerBound, logr.Discard())
	s.enc = codec.NewEncoder(c, proto.ClientBound, logr.Discard())
}

func (s *fakeServer) setState(reg *state.Registry) {
	s.dec.SetState(reg)
	s.enc.SetState(reg)
}

func (s *fakeServer) read() proto.Packet {
	pc, err := s.dec.Decode()
	require.NoError(s.t, err)
	require.True(s.t, pc.KnownPacket(), "server got unknown packet id %s", pc.PacketID)
	return pc.Packet
}

func (s *fakeServer) write(p proto.Packet) {
	_, err := s.enc.WritePacket(p)
	require.NoError(s.t, err)
}

func testConfig(addr string) config.Config {
	cfg := config.DefaultConfig
	cfg.Address = addr
	cfg.Name = "edocsitahw"
	return cfg
}

func TestLoginFlow(t *testing.T) {
	srv := newFakeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := Connect(ctx, testConfig(srv.addr()), logr.Discard())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	unknown := make(chan *proto.UnknownPacket, 1)
	c.OnUnknown(func(p *proto.UnknownPacket) { unknown <- p })
	joined := make(chan *packet.JoinGame, 1)
	c.Once(&packet.JoinGame{}, func(p proto.Packet) { joined <- p.(*packet.JoinGame) })

	done := make(chan error, 1)
	go func() { done <- c.Login(ctx) }()

	srv.accept()

	// Handshake with the login intent.
	hs := srv.read().(*packet.Handshake)
	assert.Equal(t, proto.Protocol, hs.ProtocolVersion)
	assert.Equal(t, packet.LoginHandshakeIntent, hs.NextStatus)
	srv.setState(state.Login)

	// LoginStart carries the name and the derived offline UUID.
	ls := srv.read().(*packet.LoginStart)
	assert.Equal(t, "edocsitahw", ls.Name)
	assert.Equal(t, uuid.OfflinePlayerUUID("edocsitahw"), ls.PlayerID)

	// Compression negotiation: every following frame uses the
	// compressed shape.
	srv.write(&packet.SetCompression{Threshold: 256})
	require.NoError(t, srv.enc.SetCompression(256, zlib.DefaultCompression))
	srv.dec.SetCompressionThreshold(256)

	// Login success is acknowledged and the connection
	// moves into the configuration phase.
	srv.write(&packet.LoginSuccess{PlayerID: ls.PlayerID, Username: ls.Name})
	_ = srv.read().(*packet.LoginAcknowledged)
	srv.setState(state.Config)

	// Configuration keep alive is echoed.
	srv.write(&configpacket.KeepAlive{KeepAliveID: 7})
	ka := srv.read().(*configpacket.KeepAlive)
	assert.Equal(t, int64(7), ka.KeepAliveID)

	// Finishing configuration is acknowledged and the
	// connection moves into the play phase.
	srv.write(&configpacket.FinishConfiguration{})
	_ = srv.read().(*configpacket.FinishConfiguration)
	srv.setState(state.Play)

	// The play login packet reaches the user handler.
	srv.write(&packet.JoinGame{
		EntityID:       1,
		DimensionNames: []util.Identifier{"minecraft:overworld"},
		MaxPlayers:     20,
		DimensionName:  "minecraft:overworld",
	})
	select {
	case jg := <-joined:
		assert.Equal(t, int32(1), jg.EntityID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the join game handler")
	}

	// Play keep alive is echoed with the identical id.
	srv.write(&packet.KeepAlive{KeepAliveID: 0x123456789ABCDEF0})
	pka := srv.read().(*packet.KeepAlive)
	assert.Equal(t, int64(0x123456789ABCDEF0), pka.KeepAliveID)

	// A teleport is confirmed with the received id.
	srv.write(&packet.SyncPlayerPosition{X: 1, Y: 2, Z: 3, TeleportID: 42})
	tc := srv.read().(*packet.TeleportConfirm)
	assert.Equal(t, 42, tc.TeleportID)

	// An unknown packet id reaches the unknown handler
	// and the receive worker continues.
	_, err = srv.enc.Write(append([]byte{0xFE, 0x01}, []byte("opaque")...))
	require.NoError(t, err)
	select {
	case up := <-unknown:
		assert.Equal(t, proto.PacketID(0xFE), up.ID)
		assert.Equal(t, []byte("opaque"), up.Data)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the unknown packet handler")
	}

	// A disconnect stops the workers; Login returns cleanly.
	srv.write(&packet.Disconnect{Reason: `{"text":"bye"}`})
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Login to return")
	}
}

func TestLoginPluginRequestAnswered(t *testing.T) {
	srv := newFakeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := Connect(ctx, testConfig(srv.addr()), logr.Discard())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	done := make(chan error, 1)
	go func() { done <- c.Login(ctx) }()

	srv.accept()
	_ = srv.read().(*packet.Handshake)
	srv.setState(state.Login)
	_ = srv.read().(*packet.LoginStart)

	srv.write(&packet.LoginPluginRequest{MessageID: 9, Channel: "velocity:player_info", Data: []byte{1}})
	resp := srv.read().(*packet.LoginPluginResponse)
	assert.Equal(t, 9, resp.MessageID)
	assert.False(t, resp.Successful)

	srv.write(&packet.LoginDisconnect{Reason: `{"text":"done"}`})
	assert.NoError(t, <-done)
}

func TestEncryptionRequestDisconnects(t *testing.T) {
	srv := newFakeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := Connect(ctx, testConfig(srv.addr()), logr.Discard())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	done := make(chan error, 1)
	go func() { done <- c.Login(ctx) }()

	srv.accept()
	_ = srv.read().(*packet.Handshake)
	srv.setState(state.Login)
	_ = srv.read().(*packet.LoginStart)

	srv.write(&packet.EncryptionRequest{
		ServerID:    "",
		PublicKey:   []byte("not a real key"),
		VerifyToken: []byte("token"),
	})

	select {
	case err := <-done:
		assert.NoError(t, err, "an unsupported encryption request is a deliberate close")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Login to return")
	}
}

func TestStatusFlow(t *testing.T) {
	srv := newFakeServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := Connect(ctx, testConfig(srv.addr()), logr.Discard())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	type statusOut struct {
		result *StatusResult
		err    error
	}
	done := make(chan statusOut, 1)
	go func() {
		r, err := c.Status(ctx)
		done <- statusOut{r, err}
	}()

	srv.accept()
	hs := srv.read().(*packet.Handshake)
	assert.Equal(t, packet.StatusHandshakeIntent, hs.NextStatus)
	srv.setState(state.Status)

	_ = srv.read().(*packet.StatusRequest)
	srv.write(&packet.StatusResponse{Status: `{"version":{"protocol":765}}`})

	ping := srv.read().(*packet.StatusPing)
	srv.write(&packet.StatusPing{Payload: ping.Payload})

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, `{"version":{"protocol":765}}`, out.result.JSON)
		assert.GreaterOrEqual(t, out.result.Latency, time.Duration(0))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Status to return")
	}
}
