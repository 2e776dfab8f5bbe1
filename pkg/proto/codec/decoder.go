package codec

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/minelink/minelink/pkg/proto"
	"github.com/minelink/minelink/pkg/proto/state"
	"github.com/minelink/minelink/pkg/proto/util"
	"github.com/minelink/minelink/pkg/util/errs"
)

// MaxFrameLength caps the declared length of a single frame (2^21 bytes).
const MaxFrameLength = 1048576 * 2

// Decoder is a synchronized packet decoder reading frames from a stream.
//
// The underlying reader is wrapped so every read blocks until the requested
// bytes are available; a frame split across multiple TCP segments is
// reassembled transparently and a coalesced read cannot tear frames apart.
type Decoder struct {
	log       logr.Logger
	direction proto.Direction
	registry  atomic.Pointer[state.Registry] // swapped without waiting for a blocked read

	mu                   sync.Mutex // Protects following fields and is locked while reading a packet.
	rd                   io.Reader
	compression          bool
	compressionThreshold int
	zrd                  io.ReadCloser
}

var _ proto.PacketDecoder = (*Decoder)(nil)

// NewDecoder returns a new packet decoder reading frames from r.
// The initial phase registry is Handshake.
func NewDecoder(r io.Reader, direction proto.Direction, log logr.Logger) *Decoder {
	d := &Decoder{
		rd:        &fullReader{r}, // using the fullReader is essential here!
		direction: direction,
		log:       log.WithName("decoder"),
	}
	d.registry.Store(state.Handshake)
	return d
}

type fullReader struct{ io.Reader }

func (fr *fullReader) Read(p []byte) (int, error) { return io.ReadFull(fr.Reader, p) }

// SetState switches the phase registry packet ids are resolved against.
// It does not wait for a Decode blocked on the next frame; that frame is
// resolved against the new registry.
func (d *Decoder) SetState(registry *state.Registry) {
	d.registry.Store(registry)
}

// SetCompressionThreshold enables the compressed frame shape for
// threshold >= 0 and disables it for negative values.
func (d *Decoder) SetCompressionThreshold(threshold int) {
	d.mu.Lock()
	d.compressionThreshold = threshold
	d.compression = threshold >= 0
	d.mu.Unlock()
}

// Decode reads the next packet from the underlying reader.
// It blocks other calls to Decode until return.
func (d *Decoder) Decode() (ctx *proto.PacketContext, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readPacket()
}

func (d *Decoder) readPacket() (ctx *proto.PacketContext, err error) {
	var retries int
retry:
	payload, n, err := d.readPayload()
	if err != nil {
		if errs.IsSilent(err) {
			// The frame was fully consumed before its body failed to
			// parse; the stream boundary is intact and a malformed body
			// degrades to an unknown packet instead of ending the
			// connection.
			d.log.V(1).Info("error reading packet body, falling back to unknown packet", "error", err)
			return &proto.PacketContext{
				Direction: d.direction,
				PacketID:  -1,
				BytesRead: n,
			}, nil
		}
		return nil, err
	}
	if len(payload) == 0 {
		if retries > 10 {
			return nil, errors.New("got too many empty packets")
		}
		retries++
		// Got an empty packet, skip it.
		goto retry
	}
	ctx, err = d.decodePayload(payload)
	if err != nil {
		return nil, err
	}
	ctx.BytesRead = n
	return ctx, nil
}

// readPayload consumes one frame and returns the uncompressed
// packet id + data bytes. An empty payload should be skipped.
func (d *Decoder) readPayload() (payload []byte, n int, err error) {
	payload, n, err = readVarIntFrame(d.rd)
	if err != nil {
		return nil, n, fmt.Errorf("error reading packet frame: %w", err)
	}
	if len(payload) == 0 {
		return
	}
	if d.compression {
		// The frame payload is fully read at this point; every error below
		// is a malformed body, not a broken stream, and is marked silent
		// so readPacket degrades it to an unknown packet.
		buf := bytes.NewBuffer(payload)
		claimedUncompressedSize, _, err := util.ReadVarIntReturnN(buf)
		if err != nil {
			return nil, n, errs.WrapSilent(fmt.Errorf("error reading claimed uncompressed size varint: %w", err))
		}
		if claimedUncompressedSize <= 0 {
			// The body is not actually compressed, it was at or below the threshold.
			if actual := buf.Len(); actual > d.compressionThreshold {
				return nil, n, errs.NewSilentErr("actual uncompressed size %d is greater than threshold %d",
					actual, d.compressionThreshold)
			}
			return buf.Bytes(), n, nil
		}
		decompressed, err := d.decompress(claimedUncompressedSize, buf)
		return decompressed, n, err
	}
	return payload, n, nil
}

func readVarIntFrame(rd io.Reader) (payload []byte, n int, err error) {
	length, n, err := util.ReadVarIntReturnN(rd)
	if err != nil {
		return nil, n, fmt.Errorf("error reading frame length varint: %w", err)
	}
	if length == 0 {
		return // caller should skip over an empty frame
	}
	if length < 0 || length > MaxFrameLength {
		return nil, n, fmt.Errorf("received invalid packet length %d", length)
	}

	payload = make([]byte, length)
	m, err := rd.Read(payload)
	if err != nil {
		return nil, n, fmt.Errorf("error reading frame payload: %w", err)
	}
	return payload, n + m, nil
}

func (d *Decoder) decompress(claimedUncompressedSize int, rd io.Reader) (decompressed []byte, err error) {
	if claimedUncompressedSize <= d.compressionThreshold {
		return nil, errs.NewSilentErr("uncompressed size %d is not above set threshold %d",
			claimedUncompressedSize, d.compressionThreshold)
	}
	if claimedUncompressedSize > UncompressedCap {
		return nil, errs.NewSilentErr("uncompressed size %d exceeds hard cap of %d",
			claimedUncompressedSize, UncompressedCap)
	}

	if d.zrd == nil {
		d.zrd, err = zlib.NewReader(rd)
		if err != nil {
			return nil, errs.WrapSilent(fmt.Errorf("error creating zlib reader: %w", err))
		}
	} else {
		// Reuse the already allocated zlib reader.
		if err = d.zrd.(zlib.Resetter).Reset(rd, nil); err != nil {
			// A failed reset leaves the reader unusable; drop it so the
			// next compressed frame allocates a fresh one.
			d.zrd = nil
			return nil, errs.WrapSilent(fmt.Errorf("error resetting zlib reader: %w", err))
		}
	}

	decompressed = make([]byte, claimedUncompressedSize)
	_, err = io.ReadFull(d.zrd, decompressed)
	if err != nil {
		return nil, errs.WrapSilent(fmt.Errorf("error decompressing payload: %w", err))
	}
	if err = d.zrd.Close(); err != nil {
		return nil, errs.WrapSilent(fmt.Errorf("error closing zlib reader: %w", err))
	}
	return decompressed, nil
}

// decodePayload takes p as the packet's payload containing the packet id +
// data and returns the PacketContext result of the decoding.
//
// An id unknown in the current phase registry, a failing typed decode and
// trailing undecoded bytes all yield a context with Packet == nil or the
// partial state; none of them is a connection error.
func (d *Decoder) decodePayload(p []byte) (ctx *proto.PacketContext, err error) {
	ctx = &proto.PacketContext{
		Direction: d.direction,
		Payload:   p,
	}
	payload := bytes.NewReader(p)

	// Read the packet id.
	packetID, err := util.ReadVarInt(payload)
	if err != nil {
		// A body without a readable id degrades like any malformed body.
		d.log.V(1).Info("error reading packet id, falling back to unknown packet", "error", err)
		ctx.PacketID = -1
		return ctx, nil
	}
	ctx.PacketID = proto.PacketID(packetID)
	// Now the payload reader should only have the packet's actual data left.

	// Try to find and create the packet from the id.
	ctx.Packet = d.registry.Load().Lookup(d.direction).CreatePacket(ctx.PacketID)
	if ctx.Packet == nil {
		// The packet id has no schema in this phase registry.
		return ctx, nil
	}

	// The packet is known, decode the data into it.
	err = util.RecoverFunc(func() error {
		return ctx.Packet.Decode(ctx, payload)
	})
	if err != nil {
		// A malformed known packet degrades to an unknown packet.
		d.log.V(1).Info("error decoding packet, falling back to unknown packet",
			"id", ctx.PacketID, "type", fmt.Sprintf("%T", ctx.Packet),
			"read", len(ctx.Payload)-payload.Len(), "unread", payload.Len(), "error", err)
		ctx.Packet = nil
		return ctx, nil
	}

	if payload.Len() != 0 {
		// The schema is incomplete for this packet, trailing bytes are tolerated.
		d.log.V(1).Info("packet decoder did not read all of packet's data",
			"id", ctx.PacketID, "type", fmt.Sprintf("%T", ctx.Packet),
			"decodedBytes", len(ctx.Payload), "unreadBytes", payload.Len())
	}
	return ctx, nil
}
