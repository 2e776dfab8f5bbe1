package packet

import (
	"io"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/util"
)

// JoinGame is the play-phase login packet describing the world the player
// spawns into. The death location pair is only present on the wire when
// HasDeathLocation is set; both optional fields resolve their presence
// from that earlier field.
type JoinGame struct {
	EntityID            int32
	Hardcore            bool
	DimensionNames      []util.Identifier
	MaxPlayers          int
	ViewDistance        int
	SimulationDistance  int
	ReducedDebugInfo    bool
	EnableRespawnScreen bool
	DoLimitedCrafting   bool
	DimensionType       int
	DimensionName       util.Identifier
	HashedSeed          int64
	GameMode            uint8
	PreviousGameMode    int8
	Debug               bool
	Flat                bool
	HasDeathLocation    bool
	DeathDimensionName  util.Identifier // only when HasDeathLocation
	DeathLocation       util.Position   // only when HasDeathLocation
	PortalCooldown      int
	SeaLevel            int
	EnforcesSecureChat  bool
}

func (j *JoinGame) Encode(_ *proto.PacketContext, wr io.Writer) error {
	w := util.PanicWriter(wr)
	w.Int32(j.EntityID)
	w.Bool(j.Hardcore)
	w.IdentifierArray(j.DimensionNames)
	w.VarInt(j.MaxPlayers)
	w.VarInt(j.ViewDistance)
	w.VarInt(j.SimulationDistance)
	w.Bool(j.ReducedDebugInfo)
	w.Bool(j.EnableRespawnScreen)
	w.Bool(j.DoLimitedCrafting)
	w.VarInt(j.DimensionType)
	w.Identifier(j.DimensionName)
	w.Int64(j.HashedSeed)
	w.Uint8(j.GameMode)
	w.Int8(j.PreviousGameMode)
	w.Bool(j.Debug)
	w.Bool(j.Flat)
	w.Bool(j.HasDeathLocation)
	if j.HasDeathLocation {
		w.Identifier(j.DeathDimensionName)
		w.Position(j.DeathLocation)
	}
	w.VarInt(j.PortalCooldown)
	w.VarInt(j.SeaLevel)
	w.Bool(j.EnforcesSecureChat)
	return nil
}

func (j *JoinGame) Decode(_ *proto.PacketContext, rd io.Reader) (err error) {
	r := util.PanicReader(rd)
	r.Int32(&j.EntityID)
	r.Bool(&j.Hardcore)
	r.IdentifierArray(&j.DimensionNames)
	r.VarInt(&j.MaxPlayers)
	r.VarInt(&j.ViewDistance)
	r.VarInt(&j.SimulationDistance)
	r.Bool(&j.ReducedDebugInfo)
	r.Bool(&j.EnableRespawnScreen)
	r.Bool(&j.DoLimitedCrafting)
	r.VarInt(&j.DimensionType)
	r.Identifier(&j.DimensionName)
	r.Int64(&j.HashedSeed)
	r.Uint8(&j.GameMode)
	r.Int8(&j.PreviousGameMode)
	r.Bool(&j.Debug)
	r.Bool(&j.Flat)
	r.Bool(&j.HasDeathLocation)
	if j.HasDeathLocation {
		r.Identifier(&j.DeathDimensionName)
		r.Position(&j.DeathLocation)
	}
	r.VarInt(&j.PortalCooldown)
	r.VarInt(&j.SeaLevel)
	r.Bool(&j.EnforcesSecureChat)
	return nil
}

var _ proto.Packet = (*JoinGame)(nil)
