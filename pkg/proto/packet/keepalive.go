package packet

import (
	"io"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/util"
)

// KeepAlive must be echoed back with the same id
// or the server times the connection out.
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

var _ proto.Packet = (*KeepAlive)(nil)
