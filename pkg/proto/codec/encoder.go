package codec

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sync"

	"github.com/go-logr/logr"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/state"
	"github.com/minelink/minelink/pkg/proto/util"
)

const (
	// VanillaMaximumUncompressedSize is the inflated size cap a vanilla
	// server enforces for a single packet (8 MiB).
	VanillaMaximumUncompressedSize = 8 * 1024 * 1024
	UncompressedCap                = VanillaMaximumUncompressedSize
)

// Encoder is a synchronized packet encoder writing frames to a stream.
type Encoder struct {
	direction proto.Direction
	log       logr.Logger

	mu          sync.Mutex // Protects following fields
	wr          io.Writer  // the underlying writer to write successfully encoded frames to
	registry    *state.Registry
	compression struct {
		enabled   bool
		threshold int
		writer    *zlib.Writer
	}
}

// NewEncoder returns a new packet encoder writing frames to w.
// The initial phase registry is Handshake.
func NewEncoder(w io.Writer, direction proto.Direction, log logr.Logger) *Encoder {
	return &Encoder{
		log:       log.WithName("encoder"),
		wr:        w,
		direction: direction,
		registry:  state.Handshake,
	}
}

// Direction returns the encoder's direction.
func (e *Encoder) Direction() proto.Direction {
	return e.direction
}

// SetState switches the phase registry packet ids are resolved against.
func (e *Encoder) SetState(registry *state.Registry) {
	e.mu.Lock()
	e.registry = registry
	e.mu.Unlock()
}

// SetCompression enables the compressed frame shape for threshold >= 0
// and disables it for negative values. Payloads of more than threshold
// bytes are deflated with the given zlib level.
func (e *Encoder) SetCompression(threshold, level int) (err error) {
	e.mu.Lock()
	e.compression.threshold = threshold
	e.compression.enabled = threshold >= 0
	if e.compression.enabled {
		e.compression.writer, err = zlib.NewWriterLevel(e.wr, level)
	}
	e.mu.Unlock()
	return
}

// WritePacket encodes the packet (id resolved in the current phase
// registry) and writes it as one frame to the underlying writer.
func (e *Encoder) WritePacket(packet proto.Packet) (n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	packetID, found := e.registry.Lookup(e.direction).PacketID(packet)
	if !found {
		return n, fmt.Errorf("packet id for type %T not registered in the %s %s registry",
			packet, e.direction, e.registry.State)
	}

	buf := new(bytes.Buffer)
	_ = util.WriteVarInt(buf, int(packetID))

	ctx := &proto.PacketContext{
		Direction: e.direction,
		PacketID:  packetID,
		Packet:    packet,
	}

	if err = util.RecoverFunc(func() error {
		return packet.Encode(ctx, buf)
	}); err != nil {
		return
	}

	if e.log.Enabled() { // check enabled for performance reason
		e.log.Info("encoded packet", "context", ctx.String(), "bytes", buf.Len())
	}

	return e.writeBuf(buf) // packet id + data
}

// Write encodes payload into a frame and writes it to the underlying
// writer. The payload must not already be compressed and must start with
// the packet's id VarInt followed by the packet's data.
func (e *Encoder) Write(payload []byte) (n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeBuf(bytes.NewBuffer(payload))
}

func (e *Encoder) writeBuf(payload *bytes.Buffer) (n int, err error) {
	if e.compression.enabled {
		return e.writeCompressed(payload)
	}
	n, err = util.WriteVarIntN(e.wr, payload.Len()) // frame length
	if err != nil {
		return n, err
	}
	m, err := payload.WriteTo(e.wr) // body
	return int(m) + n, err
}

func (e *Encoder) writeCompressed(payload *bytes.Buffer) (n int, err error) {
	uncompressedSize := payload.Len()
	if uncompressedSize <= e.compression.threshold {
		// At or below the threshold, the body ships uncompressed.
		n, err = util.WriteVarIntN(e.wr, uncompressedSize+1) // packet length
		if err != nil {
			return n, err
		}
		n2, err := util.WriteVarIntN(e.wr, 0) // indicate not compressed
		if err != nil {
			return n + n2, err
		}
		n3, err := payload.WriteTo(e.wr) // body
		return n + n2 + int(n3), err
	}
	// Above the threshold, compress packet id + data.
	compressed := new(bytes.Buffer)
	err = util.WriteVarInt(compressed, uncompressedSize) // data length
	if err != nil {
		return 0, err
	}
	if err = e.compress(payload.Bytes(), compressed); err != nil {
		return 0, err
	}
	n, err = util.WriteVarIntN(e.wr, compressed.Len()) // packet length
	if err != nil {
		return n, err
	}
	m, err := compressed.WriteTo(e.wr) // body
	return n + int(m), err
}

func (e *Encoder) compress(payload []byte, w io.Writer) (err error) {
	e.compression.writer.Reset(w)
	if _, err = e.compression.writer.Write(payload); err != nil {
		return err
	}
	return e.compression.writer.Close()
}

// SetWriter swaps the underlying writer.
func (e *Encoder) SetWriter(w io.Writer) {
	e.mu.Lock()
	e.wr = w
	e.mu.Unlock()
}

// Sync locks the encoder while running fn,
// making sure no write calls run during this call.
func (e *Encoder) Sync(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn()
}
