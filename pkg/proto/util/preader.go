package util

import (
	"io"

	"github.com/minelink/minelink/pkg/util/uuid"
)

// PReader reads typed values and panics with the underlying error on
// failure. Counterpart of PWriter for packet decoders; the panic is
// recovered into an error by RecoverFunc at the codec boundary.
type PReader struct {
	r io.Reader
}

func PanicReader(r io.Reader) *PReader {
	return &PReader{r}
}

func pr[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func (r *PReader) VarInt(i *int) { *i = pr(ReadVarInt(r.r)) }

func (r *PReader) VarLong(i *int64) { *i = pr(ReadVarLong(r.r)) }

func (r *PReader) String(s *string) { *s = pr(ReadString(r.r)) }

func (r *PReader) StringMax(s *string, max int) { *s = pr(ReadStringMax(r.r, max)) }

func (r *PReader) Bool(b *bool) { *b = pr(ReadBool(r.r)) }

func (r *PReader) Uint8(i *uint8) { *i = pr(ReadUint8(r.r)) }

func (r *PReader) Int8(i *int8) { *i = pr(ReadInt8(r.r)) }

func (r *PReader) Int16(i *int16) { *i = pr(ReadInt16(r.r)) }

func (r *PReader) Int32(i *int32) { *i = pr(ReadInt32(r.r)) }

func (r *PReader) Int64(i *int64) { *i = pr(ReadInt64(r.r)) }

func (r *PReader) Float32(f *float32) { *f = pr(ReadFloat32(r.r)) }

func (r *PReader) Float64(f *float64) { *f = pr(ReadFloat64(r.r)) }

func (r *PReader) UUID(id *uuid.UUID) { *id = pr(ReadUUID(r.r)) }

func (r *PReader) Angle(a *Angle) { *a = pr(ReadAngle(r.r)) }

func (r *PReader) Position(p *Position) { *p = pr(ReadPosition(r.r)) }

func (r *PReader) Identifier(i *Identifier) { *i = pr(ReadIdentifier(r.r)) }

func (r *PReader) Bytes(b *[]byte) { *b = pr(ReadBytes(r.r)) }

func (r *PReader) RawBytes(b *[]byte) { *b = pr(ReadRawBytes(r.r)) }

func (r *PReader) IdentifierArray(a *[]Identifier) { *a = pr(ReadIdentifierArray(r.r)) }
