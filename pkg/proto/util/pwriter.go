package util

import (
	"io"

	"github.com/minelink/minelink/pkg/util/uuid"
)

// PWriter writes typed values and panics with the underlying error on
// failure. Packet encoders use it for long field sequences; the panic is
// recovered into an error by RecoverFunc at the codec boundary.
type PWriter struct {
	w io.Writer
}

func PanicWriter(w io.Writer) *PWriter {
	return &PWriter{w}
}

func pw(err error) {
	if err != nil {
		panic(err)
	}
}

func (w *PWriter) VarInt(i int) { pw(WriteVarInt(w.w, i)) }

func (w *PWriter) VarLong(i int64) { pw(WriteVarLong(w.w, i)) }

func (w *PWriter) String(s string) { pw(WriteString(w.w, s)) }

func (w *PWriter) Bool(b bool) { pw(WriteBool(w.w, b)) }

func (w *PWriter) Uint8(i uint8) { pw(WriteUint8(w.w, i)) }

func (w *PWriter) Int8(i int8) { pw(WriteInt8(w.w, i)) }

func (w *PWriter) Int16(i int16) { pw(WriteInt16(w.w, i)) }

func (w *PWriter) Int32(i int32) { pw(WriteInt32(w.w, i)) }

func (w *PWriter) Int64(i int64) { pw(WriteInt64(w.w, i)) }

func (w *PWriter) Float32(f float32) { pw(WriteFloat32(w.w, f)) }

func (w *PWriter) Float64(f float64) { pw(WriteFloat64(w.w, f)) }

func (w *PWriter) UUID(id uuid.UUID) { pw(WriteUUID(w.w, id)) }

func (w *PWriter) Angle(a Angle) { pw(WriteAngle(w.w, a)) }

func (w *PWriter) Position(p Position) { pw(WritePosition(w.w, p)) }

func (w *PWriter) Identifier(i Identifier) { pw(WriteIdentifier(w.w, i)) }

func (w *PWriter) Bytes(b []byte) { pw(WriteBytes(w.w, b)) }

func (w *PWriter) RawBytes(b []byte) { pw(WriteRawBytes(w.w, b)) }

func (w *PWriter) IdentifierArray(a []Identifier) { pw(WriteIdentifierArray(w.w, a)) }
