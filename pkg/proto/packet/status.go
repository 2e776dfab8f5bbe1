package packet

import (
	"io"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/util"
)

type (
	// StatusRequest asks the server for its status JSON.
	StatusRequest struct{}
	// StatusResponse carries the server list status JSON.
	StatusResponse struct {
		Status string
	}
	// StatusPing is echoed back by the server for latency measurement.
	StatusPing struct {
		Payload int64
	}
)

func (s *StatusPing) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteInt64(wr, s.Payload)
}

func (s *StatusPing) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	s.Payload, err = util.ReadInt64(rd)
	return
}

func (s *StatusResponse) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteString(wr, s.Status)
}

func (s *StatusResponse) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	s.Status, err = util.ReadString(rd)
	return
}

func (StatusRequest) Encode(_ *proto.PacketContext, _ io.Writer) error {
	return nil // has no data
}

func (StatusRequest) Decode(_ *proto.PacketContext, _ io.Reader) error {
	return nil // has no data
}

var (
	_ proto.Packet = (*StatusRequest)(nil)
	_ proto.Packet = (*StatusResponse)(nil)
	_ proto.Packet = (*StatusPing)(nil)
)
