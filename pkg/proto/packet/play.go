package packet

import (
	"io"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/util"
	"github.com/minelink/minelink/pkg/util/uuid"
)

// SpawnEntity announces a new entity with its position,
// rotation and initial velocity.
type SpawnEntity struct {
	EntityID  int
	EntityUID uuid.UUID
	Type      int
	X, Y, Z   float64
	Pitch     util.Angle
	Yaw       util.Angle
	Data      int32
	VelocityX int16
	VelocityY int16
	VelocityZ int16
}

func (s *SpawnEntity) Encode(_ *proto.PacketContext, wr io.Writer) error {
	w := util.PanicWriter(wr)
	w.VarInt(s.EntityID)
	w.UUID(s.EntityUID)
	w.VarInt(s.Type)
	w.Float64(s.X)
	w.Float64(s.Y)
	w.Float64(s.Z)
	w.Angle(s.Pitch)
	w.Angle(s.Yaw)
	w.Int32(s.Data)
	w.Int16(s.VelocityX)
	w.Int16(s.VelocityY)
	w.Int16(s.VelocityZ)
	return nil
}

func (s *SpawnEntity) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	r := util.PanicReader(rd)
	r.VarInt(&s.EntityID)
	r.UUID(&s.EntityUID)
	r.VarInt(&s.Type)
	r.Float64(&s.X)
	r.Float64(&s.Y)
	r.Float64(&s.Z)
	r.Angle(&s.Pitch)
	r.Angle(&s.Yaw)
	r.Int32(&s.Data)
	r.Int16(&s.VelocityX)
	r.Int16(&s.VelocityY)
	r.Int16(&s.VelocityZ)
	return nil
}

// SpawnExperienceOrb announces an experience orb entity.
type SpawnExperienceOrb struct {
	EntityID int
	X, Y, Z  float64
	Count    int16
}

func (s *SpawnExperienceOrb) Encode(_ *proto.PacketContext, wr io.Writer) error {
	w := util.PanicWriter(wr)
	w.VarInt(s.EntityID)
	w.Float64(s.X)
	w.Float64(s.Y)
	w.Float64(s.Z)
	w.Int16(s.Count)
	return nil
}

func (s *SpawnExperienceOrb) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	r := util.PanicReader(rd)
	r.VarInt(&s.EntityID)
	r.Float64(&s.X)
	r.Float64(&s.Y)
	r.Float64(&s.Z)
	r.Int16(&s.Count)
	return nil
}

// ChangeDifficulty sets the world difficulty.
type ChangeDifficulty struct {
	Difficulty uint8
	Locked     bool
}

func (c *ChangeDifficulty) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteUint8(wr, c.Difficulty)
	if err != nil {
		return err
	}
	return util.WriteBool(wr, c.Locked)
}

func (c *ChangeDifficulty) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	c.Difficulty, err = util.ReadUint8(rd)
	if err != nil {
		return err
	}
	c.Locked, err = util.ReadBool(rd)
	return
}

// SyncPlayerPosition teleports the player; the client must confirm
// the contained teleport id.
type SyncPlayerPosition struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	Flags      int8
	TeleportID int
}

func (s *SyncPlayerPosition) Encode(_ *proto.PacketContext, wr io.Writer) error {
	w := util.PanicWriter(wr)
	w.Float64(s.X)
	w.Float64(s.Y)
	w.Float64(s.Z)
	w.Float32(s.Yaw)
	w.Float32(s.Pitch)
	w.Int8(s.Flags)
	w.VarInt(s.TeleportID)
	return nil
}

func (s *SyncPlayerPosition) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	r := util.PanicReader(rd)
	r.Float64(&s.X)
	r.Float64(&s.Y)
	r.Float64(&s.Z)
	r.Float32(&s.Yaw)
	r.Float32(&s.Pitch)
	r.Int8(&s.Flags)
	r.VarInt(&s.TeleportID)
	return nil
}

// TeleportConfirm acknowledges a SyncPlayerPosition teleport.
type TeleportConfirm struct {
	TeleportID int
}

func (t *TeleportConfirm) Encode(_ *proto.PacketContext, wr io.Writer) error {
	return util.WriteVarInt(wr, t.TeleportID)
}

func (t *TeleportConfirm) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	t.TeleportID, err = util.ReadVarInt(rd)
	return
}

// SetEntityVelocity updates an entity's velocity vector.
type SetEntityVelocity struct {
	EntityID  int
	VelocityX int16
	VelocityY int16
	VelocityZ int16
}

func (s *SetEntityVelocity) Encode(_ *proto.PacketContext, wr io.Writer) error {
	w := util.PanicWriter(wr)
	w.VarInt(s.EntityID)
	w.Int16(s.VelocityX)
	w.Int16(s.VelocityY)
	w.Int16(s.VelocityZ)
	return nil
}

func (s *SetEntityVelocity) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	r := util.PanicReader(rd)
	r.VarInt(&s.EntityID)
	r.Int16(&s.VelocityX)
	r.Int16(&s.VelocityY)
	r.Int16(&s.VelocityZ)
	return nil
}

// SetExperience updates the experience bar.
type SetExperience struct {
	ExperienceBar   float32
	Level           int
	TotalExperience int
}

func (s *SetExperience) Encode(_ *proto.PacketContext, wr io.Writer) error {
	w := util.PanicWriter(wr)
	w.Float32(s.ExperienceBar)
	w.VarInt(s.Level)
	w.VarInt(s.TotalExperience)
	return nil
}

func (s *SetExperience) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	r := util.PanicReader(rd)
	r.Float32(&s.ExperienceBar)
	r.VarInt(&s.Level)
	r.VarInt(&s.TotalExperience)
	return nil
}

// SetEntityMetadata carries an entity's metadata tuple stream. The stream
// mixes NBT and registry values the engine does not decode; it is kept as
// the raw remainder of the packet.
type SetEntityMetadata struct {
	EntityID int
	Metadata []byte
}

func (s *SetEntityMetadata) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteVarInt(wr, s.EntityID)
	if err != nil {
		return err
	}
	return util.WriteRawBytes(wr, s.Metadata)
}

func (s *SetEntityMetadata) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	s.EntityID, err = util.ReadVarInt(rd)
	if err != nil {
		return err
	}
	s.Metadata, err = util.ReadRawBytes(rd)
	return
}

// UpdateSectionBlocks updates multiple blocks of one chunk section. The
// block records are packed VarLongs counted by the preceding field.
type UpdateSectionBlocks struct {
	SectionPosition int64
	Blocks          []int64
}

func (u *UpdateSectionBlocks) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteInt64(wr, u.SectionPosition)
	if err != nil {
		return err
	}
	err = util.WriteVarInt(wr, len(u.Blocks))
	if err != nil {
		return err
	}
	return util.WriteVarLongArray(wr, u.Blocks)
}

func (u *UpdateSectionBlocks) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	u.SectionPosition, err = util.ReadInt64(rd)
	if err != nil {
		return err
	}
	count, err := util.ReadVarInt(rd)
	if err != nil {
		return err
	}
	u.Blocks, err = util.ReadVarLongArray(rd, count)
	return
}

// UpdateRecipes announces the recipe identifiers known to the server,
// counted by the preceding field.
type UpdateRecipes struct {
	Recipes []util.Identifier
}

func (u *UpdateRecipes) Encode(_ *proto.PacketContext, wr io.Writer) error {
	err := util.WriteVarInt(wr, len(u.Recipes))
	if err != nil {
		return err
	}
	return util.WriteIdentifiers(wr, u.Recipes)
}

func (u *UpdateRecipes) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	count, err := util.ReadVarInt(rd)
	if err != nil {
		return err
	}
	u.Recipes, err = util.ReadIdentifiers(rd, count)
	return
}

var (
	_ proto.Packet = (*SpawnEntity)(nil)
	_ proto.Packet = (*SpawnExperienceOrb)(nil)
	_ proto.Packet = (*ChangeDifficulty)(nil)
	_ proto.Packet = (*SyncPlayerPosition)(nil)
	_ proto.Packet = (*TeleportConfirm)(nil)
	_ proto.Packet = (*SetEntityVelocity)(nil)
	_ proto.Packet = (*SetExperience)(nil)
	_ proto.Packet = (*SetEntityMetadata)(nil)
	_ proto.Packet = (*UpdateSectionBlocks)(nil)
	_ proto.Packet = (*UpdateRecipes)(nil)
)
