package packet

import (
	"io"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/util"
)

// Handshake states the client may request to continue in.
const (
	StatusHandshakeIntent = 1
	LoginHandshakeIntent  = 2
)

// Handshake is the first packet of every connection and selects
// the next phase (Status or Login).
type Handshake struct {
	ProtocolVersion int
	ServerAddress   string
	Port            int
	NextStatus      int
}

func (h *Handshake) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteVarInt(wr, h.ProtocolVersion)
	if err != nil {
		return err
	}
	err = util.WriteString(wr, h.ServerAddress)
	if err != nil {
		return err
	}
	err = util.WriteUint16(wr, uint16(h.Port))
	if err != nil {
		return err
	}
	return util.WriteVarInt(wr, h.NextStatus)
}

func (h *Handshake) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	h.ProtocolVersion, err = util.ReadVarInt(rd)
	if err != nil {
		return err
	}
	h.ServerAddress, err = util.ReadString(rd)
	if err != nil {
		return err
	}
	port, err := util.ReadUint16(rd)
	if err != nil {
		return err
	}
	h.Port = int(port)
	h.NextStatus, err = util.ReadVarInt(rd)
	return err
}

var _ proto.Packet = (*Handshake)(nil)
