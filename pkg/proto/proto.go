package proto

import (
	"errors"
	"fmt"
	"io"
	"reflect"
)

// ErrDecoderLeftBytes indicates a packet was known and successfully decoded by its registered
// decoder, but the decoder has not read all the packet's bytes.
//
// Several registered schemas deliberately omit trailing fields the engine has no use for
// (e.g. the properties array of LoginSuccess). The frame decoder in pkg/proto/codec does not
// return this error: it logs the trailing bytes and keeps the decoded packet.
var ErrDecoderLeftBytes = errors.New("decoder did not read all bytes of packet")

// PacketDecoder decodes packets from an underlying
// source and returns them with additional context.
type PacketDecoder interface {
	Decode() (*PacketContext, error)
}

// PacketEncoder encodes packets to an underlying
// destination using the additional context.
type PacketEncoder interface {
	Encode(*PacketContext) error
}

// Packet represents a packet type of the Java edition wire protocol.
//
// Encode and Decode must read/write the packet's fields in exact wire order.
// Fields whose length or presence depends on an earlier field of the same
// packet resolve that dependency by decoding the earlier field first.
type Packet interface {
	// Encode encodes the packet data into the writer.
	Encode(c *PacketContext, wr io.Writer) error
	// Decode expected data from a reader into the packet.
	Decode(c *PacketContext, rd io.Reader) (err error)
}

// PacketContext carries context information for a
// received packet or a packet that is about to be sent.
type PacketContext struct {
	Direction Direction // The direction the packet is bound to.
	PacketID  PacketID  // The ID of the packet, always set.

	// The decoded packet found by PacketID in the connection's current phase
	// registry. Nil if the PacketID is unknown in that registry or the typed
	// decode failed, in which case KnownPacket is false.
	Packet Packet

	// The uncompressed form of packet id + data.
	// It contains the actual received payload
	// (maybe longer than what the Packet's Decode read).
	Payload []byte // Empty when encoding.

	// BytesRead is the total number of frame bytes consumed
	// from the wire before decompression.
	BytesRead int
}

// KnownPacket indicates whether the PacketID is known
// in the connection's current phase registry.
func (c *PacketContext) KnownPacket() bool {
	return c != nil && c.Packet != nil
}

// String implements fmt.Stringer.
func (c *PacketContext) String() string {
	return fmt.Sprintf("PacketContext:direction=%s,known=%t,id=%s,type=%s,payloadlen=%d",
		c.Direction, c.KnownPacket(), c.PacketID, reflect.TypeOf(c.Packet), len(c.Payload))
}

// PacketID identifies a packet within a direction and connection phase.
type PacketID int

// String implements fmt.Stringer.
func (id PacketID) String() string {
	return fmt.Sprintf("%#x", int(id))
}

// Direction is the direction a packet is bound to.
//   - Receiving a packet from a server is ClientBound.
//   - Sending a packet to a server is ServerBound.
type Direction uint8

// Available packet bound directions.
const (
	ClientBound Direction = iota // A packet bound to the client.
	ServerBound                  // A packet bound to the server.
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case ServerBound:
		return "ServerBound"
	case ClientBound:
		return "ClientBound"
	}
	return "UnknownBound"
}

// Protocol is the protocol version number spoken on the wire.
// The engine speaks exactly one: 765 (Minecraft 1.20.4).
const Protocol = 765

// UnknownPacket is the fallback value for a payload whose id has no schema
// in the current phase registry, or whose typed decode failed. It carries
// the packet id and the raw payload bytes after the id.
//
// Unknown packets cannot be encoded.
type UnknownPacket struct {
	ID   PacketID
	Data []byte
}

var _ Packet = (*UnknownPacket)(nil)

func (u *UnknownPacket) Encode(_ *PacketContext, _ io.Writer) error {
	return fmt.Errorf("unknown packet %s cannot be encoded", u.ID)
}

func (u *UnknownPacket) Decode(c *PacketContext, rd io.Reader) (err error) {
	u.ID = c.PacketID
	u.Data, err = io.ReadAll(rd)
	return
}

// PacketType is the non-pointer reflect.Type of a packet.
// Use TypeOf helper function for convenience.
type PacketType reflect.Type

// TypeOf returns the non-pointer type of p.
func TypeOf(p Packet) PacketType {
	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
