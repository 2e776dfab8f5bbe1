// Package config contains the packets of the Configuration phase
// introduced with 1.20.2, which runs between Login and Play.
package config

import (
	"io"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/util"
)

// FinishConfiguration ends the configuration phase. Sent by the server,
// acknowledged by the client with the serverbound packet of the same
// shape, after which the connection is in the Play phase.
type FinishConfiguration struct{}

func (FinishConfiguration) Encode(_ *proto.PacketContext, _ io.Writer) error {
	return nil // has no data
}

func (FinishConfiguration) Decode(_ *proto.PacketContext, _ io.Reader) error {
	return nil // has no data
}

// KeepAlive is the configuration-phase keep alive,
// echoed back with the same id.
type KeepAlive struct {
	KeepAliveID int64
}

func (k *KeepAlive) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteInt64(wr, k.KeepAliveID)
}

func (k *KeepAlive) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	k.KeepAliveID, err = util.ReadInt64(rd)
	return
}

// Ping is answered with a Pong carrying the same id.
type Ping struct {
	ID int32
}

func (p *Ping) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteInt32(wr, p.ID)
}

func (p *Ping) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	p.ID, err = util.ReadInt32(rd)
	return
}

// Pong answers a Ping.
type Pong struct {
	ID int32
}

func (p *Pong) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteInt32(wr, p.ID)
}

func (p *Pong) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	p.ID, err = util.ReadInt32(rd)
	return
}

// Disconnect kicks the client during configuration with a JSON chat reason.
type Disconnect struct {
	Reason string
}

func (d *Disconnect) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteString(wr, d.Reason)
}

func (d *Disconnect) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	d.Reason, err = util.ReadString(rd)
	return
}

// PluginMessage carries a custom payload on a named channel.
// The data blob is the remainder of the packet.
type PluginMessage struct {
	Channel util.Identifier
	Data    []byte
}

func (p *PluginMessage) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteIdentifier(wr, p.Channel)
	if err != nil {
		return err
	}
	return util.WriteRawBytes(wr, p.Data)
}

func (p *PluginMessage) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	p.Channel, err = util.ReadIdentifier(rd)
	if err != nil {
		return err
	}
	p.Data, err = util.ReadRawBytes(rd)
	return
}

// RegistryData transfers the server's registry set. The payload is NBT,
// which the engine does not decode; it is kept as the raw remainder.
type RegistryData struct {
	Data []byte
}

func (r *RegistryData) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteRawBytes(wr, r.Data)
}

func (r *RegistryData) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	r.Data, err = util.ReadRawBytes(rd)
	return
}

var (
	_ proto.Packet = (*FinishConfiguration)(nil)
	_ proto.Packet = (*KeepAlive)(nil)
	_ proto.Packet = (*Ping)(nil)
	_ proto.Packet = (*Pong)(nil)
	_ proto.Packet = (*Disconnect)(nil)
	_ proto.Packet = (*PluginMessage)(nil)
	_ proto.Packet = (*RegistryData)(nil)
)
