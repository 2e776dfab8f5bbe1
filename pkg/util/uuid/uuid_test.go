package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflinePlayerUUID(t *testing.T) {
	a := OfflinePlayerUUID("edocsitahw")
	b := OfflinePlayerUUID("edocsitahw")
	assert.Equal(t, a, b, "derivation must be deterministic")

	other := OfflinePlayerUUID("Notch")
	assert.NotEqual(t, a, other)

	// Version 3 and RFC 4122 variant bits.
	assert.Equal(t, byte(0x30), a[6]&0xF0, "version nibble must be 3")
	assert.Equal(t, byte(0x80), a[8]&0xC0, "variant bits must be 10")

	// Known value of the Notchian offline-mode scheme.
	assert.Equal(t, "b50ad385-829d-3141-a216-7e7d7539ba7f", OfflinePlayerUUID("Notch").String())
}

func TestParseRoundTrip(t *testing.T) {
	const s = "123e4567-e89b-12d3-a456-426614174000"
	id, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, s, id.String())
	assert.Equal(t, "123e4567e89b12d3a456426614174000", id.Undashed())

	back, err := FromBytes(id[:])
	require.NoError(t, err)
	assert.Equal(t, id, back)
}

func TestJSON(t *testing.T) {
	id, err := Parse("123e4567-e89b-12d3-a456-426614174000")
	require.NoError(t, err)

	b, err := id.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"123e4567-e89b-12d3-a456-426614174000"`, string(b))

	var got UUID
	require.NoError(t, got.UnmarshalJSON(b))
	assert.Equal(t, id, got)
}

func TestNil(t *testing.T) {
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", Nil.String())
	assert.NotEqual(t, Nil, New())
}
