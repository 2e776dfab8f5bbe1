package util

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/minelink/minelink/pkg/util/uuid"
)

// Errors returned when a variable-length integer
// exceeds its bit budget on the wire.
var (
	ErrVarIntTooBig  = errors.New("decode: VarInt is too big")
	ErrVarLongTooBig = errors.New("decode: VarLong is too big")
)

// DefaultMaxStringSize is the cap applied to length-prefixed
// strings when the caller gives no tighter bound.
const DefaultMaxStringSize = 1024 * 1024

func ReadString(rd io.Reader) (string, error) {
	return ReadStringMax(rd, DefaultMaxStringSize)
}

func ReadStringMax(rd io.Reader, max int) (string, error) {
	length, err := ReadVarInt(rd)
	if err != nil {
		return "", err
	}
	if length < 0 {
		return "", fmt.Errorf("decode: string length must not be negative (got %d)", length)
	}
	if length > max*4 { // *4 since an UTF-8 character has up to 4 bytes
		return "", fmt.Errorf("decode: bad string length (got %d, max. %d)", length, max)
	}
	str := make([]byte, length)
	_, err = io.ReadFull(rd, str)
	if err != nil {
		return "", err
	}
	return string(str), nil
}

// ReadBytes reads a VarInt length-prefixed byte array.
func ReadBytes(rd io.Reader) ([]byte, error) {
	return ReadBytesLen(rd, DefaultMaxStringSize)
}

func ReadBytesLen(rd io.Reader, maxLength int) (b []byte, err error) {
	length, err := ReadVarInt(rd)
	if err != nil {
		return
	}
	if length < 0 {
		err = fmt.Errorf("decode: bytes length is < 0: %d", length)
		return
	}
	if length > maxLength {
		err = fmt.Errorf("decode: bytes length %d is above given maximum: %d", length, maxLength)
		return
	}
	b = make([]byte, length)
	_, err = io.ReadFull(rd, b)
	return
}

// ReadRawBytes reads all remaining bytes of the payload. Used for fields
// whose length is the rest of the packet (trailing opaque blobs).
func ReadRawBytes(rd io.Reader) ([]byte, error) {
	return io.ReadAll(rd)
}

func ReadVarInt(rd io.Reader) (result int, err error) {
	result, _, err = ReadVarIntReturnN(rd)
	return
}

// ReadVarIntReturnN is like ReadVarInt but also
// returns the number of bytes consumed.
func ReadVarIntReturnN(rd io.Reader) (result, n int, err error) {
	var uresult uint32
	for i := 0; ; i++ {
		b, err := ReadUint8(rd)
		if err != nil {
			return 0, n, err
		}
		n++
		if i >= 5 {
			return 0, n, ErrVarIntTooBig
		}
		uresult |= uint32(b&0x7F) << uint32(7*i)
		if b&0x80 == 0 {
			break
		}
	}
	return int(int32(uresult)), n, nil
}

func ReadVarLong(rd io.Reader) (result int64, err error) {
	var uresult uint64
	for i := 0; ; i++ {
		b, err := ReadUint8(rd)
		if err != nil {
			return 0, err
		}
		if i >= 10 {
			return 0, ErrVarLongTooBig
		}
		uresult |= uint64(b&0x7F) << uint64(7*i)
		if b&0x80 == 0 {
			break
		}
	}
	return int64(uresult), nil
}

// ReadVarLongArray reads count VarLong values. The count
// comes from an earlier field of the same packet.
func ReadVarLongArray(rd io.Reader, count int) ([]int64, error) {
	if count < 0 {
		return nil, fmt.Errorf("decode: got negative-length VarLong array (%d)", count)
	}
	a := make([]int64, count)
	for i := 0; i < count; i++ {
		v, err := ReadVarLong(rd)
		if err != nil {
			return nil, err
		}
		a[i] = v
	}
	return a, nil
}

func ReadBool(rd io.Reader) (val bool, err error) {
	uval, err := ReadUint8(rd)
	if err != nil {
		return
	}
	val = uval != 0
	return
}

func ReadInt8(rd io.Reader) (val int8, err error) {
	uval, err := ReadUint8(rd)
	val = int8(uval)
	return val, err
}

func ReadUint8(rd io.Reader) (val uint8, err error) {
	if br, ok := rd.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var p [1]byte
	_, err = io.ReadFull(rd, p[:1])
	val = p[0]
	return
}

func ReadByte(rd io.Reader) (val byte, err error) {
	return ReadUint8(rd)
}

func ReadInt16(rd io.Reader) (val int16, err error) {
	uval, err := ReadUint16(rd)
	val = int16(uval)
	return val, err
}

func ReadUint16(rd io.Reader) (val uint16, err error) {
	var p [2]byte
	_, err = io.ReadFull(rd, p[:2])
	val = binary.BigEndian.Uint16(p[:2])
	return
}

func ReadInt32(rd io.Reader) (val int32, err error) {
	uval, err := ReadUint32(rd)
	val = int32(uval)
	return val, err
}

func ReadInt(rd io.Reader) (int, error) {
	i, err := ReadInt32(rd)
	return int(i), err
}

func ReadUint32(rd io.Reader) (val uint32, err error) {
	var p [4]byte
	_, err = io.ReadFull(rd, p[:4])
	val = binary.BigEndian.Uint32(p[:4])
	return
}

func ReadInt64(rd io.Reader) (val int64, err error) {
	uval, err := ReadUint64(rd)
	val = int64(uval)
	return val, err
}

func ReadUint64(rd io.Reader) (val uint64, err error) {
	var p [8]byte
	_, err = io.ReadFull(rd, p[:8])
	val = binary.BigEndian.Uint64(p[:8])
	return
}

func ReadFloat32(rd io.Reader) (val float32, err error) {
	ival, err := ReadUint32(rd)
	val = math.Float32frombits(ival)
	return val, err
}

func ReadFloat64(rd io.Reader) (val float64, err error) {
	ival, err := ReadUint64(rd)
	val = math.Float64frombits(ival)
	return val, err
}

// ReadUUID reads an UUID encoded as 16 raw bytes.
func ReadUUID(rd io.Reader) (id uuid.UUID, err error) {
	b := make([]byte, 16)
	_, err = io.ReadFull(rd, b)
	if err != nil {
		return
	}
	return uuid.FromBytes(b)
}
