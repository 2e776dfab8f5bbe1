package state

import (
	"fmt"
	"reflect"

	"github.com/minelink/minelink/pkg/proto"
)

// State is a phase of the connection. Each phase namespaces
// its own packet ids per direction.
type State int

// The phases a connection moves through.
const (
	HandshakeState State = iota
	StatusState
	LoginState
	ConfigState
	PlayState
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case HandshakeState:
		return "Handshake"
	case StatusState:
		return "Status"
	case LoginState:
		return "Login"
	case ConfigState:
		return "Config"
	case PlayState:
		return "Play"
	}
	return "Unknown"
}

// Registry stores the server- and clientbound packets of one phase.
type Registry struct {
	State
	ServerBound *PacketRegistry
	ClientBound *PacketRegistry
}

func NewRegistry(state State) *Registry {
	return &Registry{
		State:       state,
		ServerBound: NewPacketRegistry(proto.ServerBound),
		ClientBound: NewPacketRegistry(proto.ClientBound),
	}
}

// Lookup returns the packet registry of the given direction.
func (r *Registry) Lookup(direction proto.Direction) *PacketRegistry {
	if direction == proto.ServerBound {
		return r.ServerBound
	}
	return r.ClientBound
}

// PacketRegistry maps packet ids to packet types and back
// for one direction of one phase.
type PacketRegistry struct {
	Direction   proto.Direction
	PacketIDs   map[proto.PacketID]proto.PacketType // Gets packet type by packet id.
	PacketTypes map[proto.PacketType]proto.PacketID // Gets packet id by packet type.
}

func NewPacketRegistry(direction proto.Direction) *PacketRegistry {
	return &PacketRegistry{
		Direction:   direction,
		PacketIDs:   map[proto.PacketID]proto.PacketType{},
		PacketTypes: map[proto.PacketType]proto.PacketID{},
	}
}

// Register maps the packet's type to the id. It panics when the id or the
// type is already taken in this registry; registration happens once at
// package init.
func (r *PacketRegistry) Register(id proto.PacketID, packetOf proto.Packet) {
	packetType := proto.TypeOf(packetOf)
	if _, ok := r.PacketIDs[id]; ok {
		panic(fmt.Sprintf("can not register packet type %T with id %s because "+
			"another packet is already registered with that id", packetOf, id))
	}
	if _, ok := r.PacketTypes[packetType]; ok {
		panic(fmt.Sprintf("%T is already registered", packetOf))
	}
	r.PacketIDs[id] = packetType
	r.PacketTypes[packetType] = id
}

// PacketID gets the packet id of the registered packet type.
func (r *PacketRegistry) PacketID(of proto.Packet) (id proto.PacketID, found bool) {
	id, found = r.PacketTypes[proto.TypeOf(of)]
	return
}

// CreatePacket returns a new zero valued instance of the type
// of the mapped packet id or nil if not found.
func (r *PacketRegistry) CreatePacket(id proto.PacketID) proto.Packet {
	packetType, ok := r.PacketIDs[id]
	if !ok {
		return nil
	}
	p, ok := reflect.New(packetType).Interface().(proto.Packet)
	if !ok {
		// Shall not happen since Register only accepts proto.Packet.
		return nil
	}
	return p
}
