package util

import (
	"io"
	"math"
)

// Angle is a rotation stored as a single byte,
// counting steps of 1/256 of a full turn.
type Angle uint8

// AngleFromDegrees converts degrees to the closest wire angle.
// Negative inputs are normalized into [0, 360) first.
func AngleFromDegrees(deg float64) Angle {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return Angle(int(math.Round(deg*256/360)) % 256)
}

// Degrees converts the wire angle back to degrees in [0, 360).
func (a Angle) Degrees() float64 {
	return float64(a) * 360 / 256
}

func ReadAngle(rd io.Reader) (Angle, error) {
	b, err := ReadUint8(rd)
	return Angle(b), err
}

func WriteAngle(wr io.Writer, a Angle) error {
	return WriteUint8(wr, uint8(a))
}
