package util

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/minelink/minelink/pkg/util/uuid"
)

func WriteString(wr io.Writer, val string) error {
	err := WriteVarInt(wr, len(val))
	if err != nil {
		return err
	}
	_, err = io.WriteString(wr, val)
	return err
}

func WriteVarInt(wr io.Writer, val int) (err error) {
	_, err = WriteVarIntN(wr, val)
	return
}

// WriteVarIntN is like WriteVarInt but also
// returns the number of bytes written.
func WriteVarIntN(wr io.Writer, val int) (n int, err error) {
	uval := uint32(val)
	for uval >= 0x80 {
		if err = WriteUint8(wr, byte(uval)|0x80); err != nil {
			return n, err
		}
		n++
		uval >>= 7
	}
	if err = WriteUint8(wr, byte(uval)); err != nil {
		return n, err
	}
	return n + 1, nil
}

func WriteVarLong(wr io.Writer, val int64) (err error) {
	uval := uint64(val)
	for uval >= 0x80 {
		if err = WriteUint8(wr, byte(uval)|0x80); err != nil {
			return
		}
		uval >>= 7
	}
	return WriteUint8(wr, byte(uval))
}

// VarIntLen returns the number of bytes WriteVarInt emits for val.
func VarIntLen(val int) (n int) {
	uval := uint32(val)
	for uval >= 0x80 {
		n++
		uval >>= 7
	}
	return n + 1
}

// WriteVarLongArray writes the elements without any count prefix;
// the count is carried by an earlier field of the same packet.
func WriteVarLongArray(wr io.Writer, a []int64) error {
	for _, v := range a {
		if err := WriteVarLong(wr, v); err != nil {
			return err
		}
	}
	return nil
}

func WriteBool(wr io.Writer, val bool) error {
	if val {
		return WriteUint8(wr, 1)
	}
	return WriteUint8(wr, 0)
}

func WriteInt8(wr io.Writer, val int8) error {
	return WriteUint8(wr, uint8(val))
}

func WriteUint8(wr io.Writer, val uint8) (err error) {
	var p [1]byte
	p[0] = val
	_, err = wr.Write(p[:1])
	return
}

func WriteByte(wr io.Writer, val byte) error {
	return WriteUint8(wr, val)
}

func WriteInt16(wr io.Writer, val int16) error {
	return WriteUint16(wr, uint16(val))
}

func WriteUint16(wr io.Writer, val uint16) (err error) {
	var p [2]byte
	binary.BigEndian.PutUint16(p[:2], val)
	_, err = wr.Write(p[:2])
	return
}

func WriteInt32(wr io.Writer, val int32) error {
	return WriteUint32(wr, uint32(val))
}

func WriteInt(wr io.Writer, val int) error {
	return WriteInt32(wr, int32(val))
}

func WriteUint32(wr io.Writer, val uint32) (err error) {
	var p [4]byte
	binary.BigEndian.PutUint32(p[:4], val)
	_, err = wr.Write(p[:4])
	return
}

func WriteInt64(wr io.Writer, val int64) error {
	return WriteUint64(wr, uint64(val))
}

func WriteUint64(wr io.Writer, val uint64) (err error) {
	var p [8]byte
	binary.BigEndian.PutUint64(p[:8], val)
	_, err = wr.Write(p[:8])
	return
}

func WriteFloat32(wr io.Writer, val float32) error {
	return WriteUint32(wr, math.Float32bits(val))
}

func WriteFloat64(wr io.Writer, val float64) error {
	return WriteUint64(wr, math.Float64bits(val))
}

// WriteBytes writes a VarInt length-prefixed byte array.
func WriteBytes(wr io.Writer, b []byte) error {
	err := WriteVarInt(wr, len(b))
	if err != nil {
		return err
	}
	_, err = wr.Write(b)
	return err
}

// WriteRawBytes writes b with no length prefix. Counterpart
// of ReadRawBytes for trailing opaque blobs.
func WriteRawBytes(wr io.Writer, b []byte) error {
	_, err := wr.Write(b)
	return err
}

// WriteUUID writes an UUID as an unsigned 128-bit integer
// (two big-endian unsigned 64-bit halves).
func WriteUUID(wr io.Writer, id uuid.UUID) error {
	err := WriteUint64(wr, binary.BigEndian.Uint64(id[:8]))
	if err != nil {
		return err
	}
	return WriteUint64(wr, binary.BigEndian.Uint64(id[8:]))
}
