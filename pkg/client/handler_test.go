package client

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/packet"
)

func TestHandlerTimes(t *testing.T) {
	h := newHandlerRegistry(logr.Discard())

	var unlimited, twice, once int
	h.register(&packet.KeepAlive{}, Unlimited, func(proto.Packet) { unlimited++ })
	h.register(&packet.KeepAlive{}, 2, func(proto.Packet) { twice++ })
	h.register(&packet.KeepAlive{}, 1, func(proto.Packet) { once++ })

	for i := 0; i < 5; i++ {
		h.fire(&packet.KeepAlive{KeepAliveID: int64(i)})
	}

	assert.Equal(t, 5, unlimited)
	assert.Equal(t, 2, twice)
	assert.Equal(t, 1, once)
}

func TestHandlerInsertionOrder(t *testing.T) {
	h := newHandlerRegistry(logr.Discard())

	var order []int
	for i := 0; i < 4; i++ {
		i := i
		h.register(&packet.Disconnect{}, Unlimited, func(proto.Packet) { order = append(order, i) })
	}

	h.fire(&packet.Disconnect{})
	h.fire(&packet.Disconnect{})
	assert.Equal(t, []int{0, 1, 2, 3, 0, 1, 2, 3}, order)
}

func TestHandlerZeroTimesNeverRegistered(t *testing.T) {
	h := newHandlerRegistry(logr.Discard())
	called := false
	h.register(&packet.KeepAlive{}, 0, func(proto.Packet) { called = true })
	h.fire(&packet.KeepAlive{})
	assert.False(t, called)
}

func TestHandlerPanicRecovered(t *testing.T) {
	h := newHandlerRegistry(logr.Discard())

	var after int
	h.register(&packet.KeepAlive{}, Unlimited, func(proto.Packet) { panic("boom") })
	h.register(&packet.KeepAlive{}, Unlimited, func(proto.Packet) { after++ })

	assert.NotPanics(t, func() { h.fire(&packet.KeepAlive{}) })
	assert.Equal(t, 1, after, "handlers after a panicking one must still run")
}

func TestHandlerTypesAreIndependent(t *testing.T) {
	h := newHandlerRegistry(logr.Discard())

	var keepAlives, disconnects int
	h.register(&packet.KeepAlive{}, Unlimited, func(proto.Packet) { keepAlives++ })
	h.register(&packet.Disconnect{}, Unlimited, func(proto.Packet) { disconnects++ })

	h.fire(&packet.KeepAlive{})
	h.fire(&packet.KeepAlive{})
	h.fire(&packet.Disconnect{})

	assert.Equal(t, 2, keepAlives)
	assert.Equal(t, 1, disconnects)
}

func TestHandlerRegisteredFromHandler(t *testing.T) {
	h := newHandlerRegistry(logr.Discard())

	var nested int
	h.register(&packet.KeepAlive{}, 1, func(proto.Packet) {
		h.register(&packet.KeepAlive{}, Unlimited, func(proto.Packet) { nested++ })
	})

	h.fire(&packet.KeepAlive{}) // registers the nested handler, does not fire it
	assert.Equal(t, 0, nested)
	h.fire(&packet.KeepAlive{})
	assert.Equal(t, 1, nested)
}

func TestHandlerPacketValue(t *testing.T) {
	h := newHandlerRegistry(logr.Discard())

	var got int64
	h.register(&packet.KeepAlive{}, 1, func(p proto.Packet) {
		got = p.(*packet.KeepAlive).KeepAliveID
	})
	h.fire(&packet.KeepAlive{KeepAliveID: 0x123456789ABCDEF0})
	assert.Equal(t, int64(0x123456789ABCDEF0), got)
}
