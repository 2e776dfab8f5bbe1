package uuid

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"

	guuid "github.com/google/uuid"
)

// UUID is a 128-bit universally unique identifier
// as carried by the wire protocol (16 raw bytes).
type UUID guuid.UUID

// Nil is the empty UUID, all zeros.
var Nil = UUID(guuid.Nil)

// String returns the canonical dashed form
// xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
func (i UUID) String() string {
	return guuid.UUID(i).String()
}

// Undashed returns the undashed hex form of the UUID.
func (i UUID) Undashed() string {
	return hex.EncodeToString(i[:])
}

func (i UUID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(i.String())), nil
}

func (i *UUID) UnmarshalJSON(b []byte) (err error) {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("expected quoted uuid, but got %s: %w", b, err)
	}
	*i, err = Parse(s)
	return
}

// Parse decodes s into a UUID or returns an error. The dashed, undashed
// and urn:uuid forms are all accepted.
func Parse(s string) (UUID, error) {
	id, err := guuid.Parse(s)
	return UUID(id), err
}

// FromBytes creates a UUID from a 16-byte slice.
// The bytes are copied from the slice.
func FromBytes(b []byte) (UUID, error) {
	id, err := guuid.FromBytes(b)
	return UUID(id), err
}

// OfflinePlayerUUID derives the deterministic UUID an offline-mode server
// assigns to a player name: MD5 of "OfflinePlayer:<name>" with the
// version 3 and RFC 4122 variant bits set.
func OfflinePlayerUUID(username string) UUID {
	const version = 3
	id := md5.Sum([]byte("OfflinePlayer:" + username))
	id[6] = (id[6] & 0x0f) | uint8((version&0xf)<<4)
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return id
}

// New creates a new random UUID or panics.
func New() UUID { return UUID(guuid.New()) }
