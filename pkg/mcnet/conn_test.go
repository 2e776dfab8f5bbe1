package mcnet

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/codec"
	"github.com/minelink/minelink/pkg/proto/packet"
	"github.com/minelink/minelink/pkg/proto/state"
)

// testPeer is the far end of a Conn under test, speaking
// the protocol with mirrored directions.
type testPeer struct {
	c   net.Conn
	dec *codec.Decoder
	enc *codec.Encoder
}

func newTestPeer(c net.Conn) *testPeer {
	return &testPeer{
		c:   c,
		dec: codec.NewDecoder(c, proto.ServerBound, logr.Discard()),
		enc: codec.NewEncoder(c, proto.ClientBound, logr.Discard()),
	}
}

func connPair(t *testing.T) (*Conn, *testPeer) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	conn, err := Dial(context.Background(), ln.Addr().String(), logr.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	select {
	case c := <-accepted:
		t.Cleanup(func() { _ = c.Close() })
		return conn, newTestPeer(c)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for accept")
		return nil, nil
	}
}

func TestSendOrderingAndCompletionPublishesState(t *testing.T) {
	conn, peer := connPair(t)

	received := make(chan *proto.PacketContext, 8)
	conn.SetHandler(func(pc *proto.PacketContext) { received <- pc })

	// The completion callback of the first entry must run before the
	// second entry is encoded; the status request below only encodes
	// against the Status registry.
	require.NoError(t, conn.Send(&packet.Handshake{
		ProtocolVersion: proto.Protocol,
		ServerAddress:   "localhost",
		Port:            25565,
		NextStatus:      packet.StatusHandshakeIntent,
	}, func() { conn.SetState(state.Status) }))
	require.NoError(t, conn.Send(&packet.StatusRequest{}, nil))

	done := make(chan error, 1)
	go func() { done <- conn.Run() }()

	pc, err := peer.dec.Decode()
	require.NoError(t, err)
	require.IsType(t, &packet.Handshake{}, pc.Packet)
	peer.dec.SetState(state.Status)
	peer.enc.SetState(state.Status)

	pc, err = peer.dec.Decode()
	require.NoError(t, err)
	assert.IsType(t, &packet.StatusRequest{}, pc.Packet)

	require.NoError(t, conn.Close())
	assert.NoError(t, <-done)
}

func TestReceiveDispatch(t *testing.T) {
	conn, peer := connPair(t)
	conn.SetState(state.Status)
	peer.enc.SetState(state.Status)

	received := make(chan *proto.PacketContext, 1)
	conn.SetHandler(func(pc *proto.PacketContext) { received <- pc })

	done := make(chan error, 1)
	go func() { done <- conn.Run() }()

	_, err := peer.enc.WritePacket(&packet.StatusResponse{Status: `{"motd":"hi"}`})
	require.NoError(t, err)

	select {
	case pc := <-received:
		require.True(t, pc.KnownPacket())
		assert.Equal(t, `{"motd":"hi"}`, pc.Packet.(*packet.StatusResponse).Status)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for dispatch")
	}

	require.NoError(t, conn.Close())
	assert.NoError(t, <-done)
}

func TestHandlerPanicKeepsReceiveWorkerAlive(t *testing.T) {
	conn, peer := connPair(t)
	conn.SetState(state.Status)
	peer.enc.SetState(state.Status)

	received := make(chan struct{}, 2)
	first := true
	conn.SetHandler(func(*proto.PacketContext) {
		received <- struct{}{}
		if first {
			first = false
			panic("handler failure")
		}
	})

	done := make(chan error, 1)
	go func() { done <- conn.Run() }()

	_, err := peer.enc.WritePacket(&packet.StatusPing{Payload: 1})
	require.NoError(t, err)
	_, err = peer.enc.WritePacket(&packet.StatusPing{Payload: 2})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(5 * time.Second):
			t.Fatal("receive worker died after handler panic")
		}
	}

	require.NoError(t, conn.Close())
	assert.NoError(t, <-done)
}

func TestSendAfterCloseFails(t *testing.T) {
	conn, _ := connPair(t)
	require.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.Send(&packet.StatusRequest{}, nil), ErrClosedConn)
	assert.ErrorIs(t, conn.Close(), ErrClosedConn)
}

func TestPeerCloseStopsWorkers(t *testing.T) {
	conn, peer := connPair(t)
	conn.SetHandler(func(*proto.PacketContext) {})

	done := make(chan error, 1)
	go func() { done <- conn.Run() }()

	require.NoError(t, peer.c.Close())

	select {
	case err := <-done:
		// An abrupt peer close surfaces as a read error.
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop after peer close")
	}
	assert.True(t, conn.Closed())
}
