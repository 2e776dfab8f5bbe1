package state

import (
	p "github.com/minelink/minelink/pkg/proto/packet"
	"github.com/minelink/minelink/pkg/proto/packet/config"
)

// The registries storing the packets of each connection phase,
// protocol 765 (1.20.4).
var (
	Handshake = NewRegistry(HandshakeState)
	Status    = NewRegistry(StatusState)
	Login     = NewRegistry(LoginState)
	Config    = NewRegistry(ConfigState)
	Play      = NewRegistry(PlayState)
)

func init() {
	Handshake.ServerBound.Register(0x00, &p.Handshake{})

	Status.ServerBound.Register(0x00, &p.StatusRequest{})
	Status.ServerBound.Register(0x01, &p.StatusPing{})

	Status.ClientBound.Register(0x00, &p.StatusResponse{})
	Status.ClientBound.Register(0x01, &p.StatusPing{})

	Login.ServerBound.Register(0x00, &p.LoginStart{})
	Login.ServerBound.Register(0x01, &p.EncryptionResponse{})
	Login.ServerBound.Register(0x02, &p.LoginPluginResponse{})
	Login.ServerBound.Register(0x03, &p.LoginAcknowledged{})

	Login.ClientBound.Register(0x00, &p.LoginDisconnect{})
	Login.ClientBound.Register(0x01, &p.EncryptionRequest{})
	Login.ClientBound.Register(0x02, &p.LoginSuccess{})
	Login.ClientBound.Register(0x03, &p.SetCompression{})
	Login.ClientBound.Register(0x04, &p.LoginPluginRequest{})

	Config.ServerBound.Register(0x01, &config.PluginMessage{})
	Config.ServerBound.Register(0x02, &config.FinishConfiguration{})
	Config.ServerBound.Register(0x03, &config.KeepAlive{})
	Config.ServerBound.Register(0x04, &config.Pong{})

	Config.ClientBound.Register(0x00, &config.PluginMessage{})
	Config.ClientBound.Register(0x01, &config.Disconnect{})
	Config.ClientBound.Register(0x02, &config.FinishConfiguration{})
	Config.ClientBound.Register(0x03, &config.KeepAlive{})
	Config.ClientBound.Register(0x04, &config.Ping{})
	Config.ClientBound.Register(0x05, &config.RegistryData{})

	Play.ServerBound.Register(0x00, &p.TeleportConfirm{})
	Play.ServerBound.Register(0x10, &p.KeepAlive{})

	Play.ClientBound.Register(0x00, &p.SpawnEntity{})
	Play.ClientBound.Register(0x01, &p.SpawnExperienceOrb{})
	Play.ClientBound.Register(0x0B, &p.ChangeDifficulty{})
	Play.ClientBound.Register(0x1B, &p.Disconnect{})
	Play.ClientBound.Register(0x24, &p.KeepAlive{})
	Play.ClientBound.Register(0x29, &p.JoinGame{})
	Play.ClientBound.Register(0x3E, &p.SyncPlayerPosition{})
	Play.ClientBound.Register(0x47, &p.UpdateSectionBlocks{})
	Play.ClientBound.Register(0x58, &p.SetEntityVelocity{})
	Play.ClientBound.Register(0x5A, &p.SetExperience{})
	Play.ClientBound.Register(0x5D, &p.SetEntityMetadata{})
	Play.ClientBound.Register(0x73, &p.UpdateRecipes{})
}
