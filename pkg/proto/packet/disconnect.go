package packet

import (
	"io"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/util"
)

// Disconnect kicks the client during play with a JSON chat reason.
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

var _ proto.Packet = (*Disconnect)(nil)
