package packet

import (
	"errors"
	"io"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/util"
	"github.com/minelink/minelink/pkg/util/uuid"
)

const maxUsernameLen = 16

// LoginStart begins the login flow, carrying the player
// name and the client-chosen UUID.
type LoginStart struct {
	Name     string
	PlayerID uuid.UUID
}

func (l *LoginStart) Encode(_ *proto.PacketContext, wr io.Writer) error {
	if l.Name == "" {
		return errors.New("username not specified")
	}
	err := util.WriteString(wr, l.Name)
	if err != nil {
		return err
	}
	return util.WriteUUID(wr, l.PlayerID)
}

func (l *LoginStart) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	l.Name, err = util.ReadStringMax(rd, maxUsernameLen)
	if err != nil {
		return err
	}
	l.PlayerID, err = util.ReadUUID(rd)
	return
}

// LoginSuccess completes the login flow. The full wire form also carries a
// properties array the engine has no use for; the decoder tolerates it as
// trailing bytes.
type LoginSuccess struct {
	PlayerID uuid.UUID
	Username string
}

func (l *LoginSuccess) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteUUID(wr, l.PlayerID)
	if err != nil {
		return err
	}
	return util.WriteString(wr, l.Username)
}

func (l *LoginSuccess) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	l.PlayerID, err = util.ReadUUID(rd)
	if err != nil {
		return err
	}
	l.Username, err = util.ReadStringMax(rd, maxUsernameLen)
	return
}

// LoginAcknowledged confirms a LoginSuccess and moves
// the connection into the Config phase.
type LoginAcknowledged struct{}

func (LoginAcknowledged) Encode(_ *proto.PacketContext, _ io.Writer) error {
	return nil // has no data
}

func (LoginAcknowledged) Decode(_ *proto.PacketContext, _ io.Reader) error {
	return nil // has no data
}

// LoginDisconnect kicks the client during login with a JSON chat reason.
type LoginDisconnect struct {
	Reason string
}

func (d *LoginDisconnect) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteString(wr, d.Reason)
}

func (d *LoginDisconnect) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	d.Reason, err = util.ReadString(rd)
	return
}

// SetCompression announces the compression threshold every
// following frame of the connection uses.
type SetCompression struct {
	Threshold int
}

func (s *SetCompression) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteVarInt(wr, s.Threshold)
}

func (s *SetCompression) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	s.Threshold, err = util.ReadVarInt(rd)
	return
}

// EncryptionRequest starts the encryption handshake of an online-mode
// server. The engine decodes it but does not perform the key exchange.
type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
}

func (e *EncryptionRequest) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteString(wr, e.ServerID)
	if err != nil {
		return err
	}
	err = util.WriteBytes(wr, e.PublicKey)
	if err != nil {
		return err
	}
	return util.WriteBytes(wr, e.VerifyToken)
}

func (e *EncryptionRequest) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	e.ServerID, err = util.ReadStringMax(rd, 20)
	if err != nil {
		return err
	}
	e.PublicKey, err = util.ReadBytesLen(rd, 1024)
	if err != nil {
		return err
	}
	e.VerifyToken, err = util.ReadBytesLen(rd, 128)
	return
}

// EncryptionResponse answers an EncryptionRequest.
type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func (e *EncryptionResponse) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteBytes(wr, e.SharedSecret)
	if err != nil {
		return err
	}
	return util.WriteBytes(wr, e.VerifyToken)
}

func (e *EncryptionResponse) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	e.SharedSecret, err = util.ReadBytesLen(rd, 128)
	if err != nil {
		return err
	}
	e.VerifyToken, err = util.ReadBytesLen(rd, 128)
	return
}

// LoginPluginRequest lets the server negotiate custom login flows over a
// named channel. The data blob is the remainder of the packet.
type LoginPluginRequest struct {
	MessageID int
	Channel   util.Identifier
	Data      []byte
}

func (l *LoginPluginRequest) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteVarInt(wr, l.MessageID)
	if err != nil {
		return err
	}
	err = util.WriteIdentifier(wr, l.Channel)
	if err != nil {
		return err
	}
	return util.WriteRawBytes(wr, l.Data)
}

func (l *LoginPluginRequest) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	l.MessageID, err = util.ReadVarInt(rd)
	if err != nil {
		return err
	}
	l.Channel, err = util.ReadIdentifier(rd)
	if err != nil {
		return err
	}
	l.Data, err = util.ReadRawBytes(rd)
	return
}

// LoginPluginResponse answers a LoginPluginRequest. Successful false with
// empty data means the client does not understand the channel.
type LoginPluginResponse struct {
	MessageID  int
	Successful bool
	Data       []byte
}

func (l *LoginPluginResponse) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteVarInt(wr, l.MessageID)
	if err != nil {
		return err
	}
	err = util.WriteBool(wr, l.Successful)
	if err != nil {
		return err
	}
	return util.WriteRawBytes(wr, l.Data)
}

func (l *LoginPluginResponse) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	l.MessageID, err = util.ReadVarInt(rd)
	if err != nil {
		return err
	}
	l.Successful, err = util.ReadBool(rd)
	if err != nil {
		return err
	}
	l.Data, err = util.ReadRawBytes(rd)
	return
}

var (
	_ proto.Packet = (*LoginStart)(nil)
	_ proto.Packet = (*LoginSuccess)(nil)
	_ proto.Packet = (*LoginAcknowledged)(nil)
	_ proto.Packet = (*LoginDisconnect)(nil)
	_ proto.Packet = (*SetCompression)(nil)
	_ proto.Packet = (*EncryptionRequest)(nil)
	_ proto.Packet = (*EncryptionResponse)(nil)
	_ proto.Packet = (*LoginPluginRequest)(nil)
	_ proto.Packet = (*LoginPluginResponse)(nil)
)
