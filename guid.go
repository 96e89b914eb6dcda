package uatypes

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Guid is a 16-byte globally unique identifier in RFC 4122 byte order.
// On the OPC-UA binary wire the first three fields are little-endian.
type Guid uuid.UUID

// ParseGuid parses the textual form "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
// (braces and urn:uuid: prefixes are accepted).
func ParseGuid(s string) (Guid, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Guid{}, &Error{Code: CodeInvalidValue, Offset: -1, Message: "invalid guid " + s, Cause: err}
	}
	return Guid(u), nil
}

// MustParseGuid is ParseGuid that panics on error. For tests and tables.
func MustParseGuid(s string) Guid {
	g, err := ParseGuid(s)
	if err != nil {
		panic(err)
	}
	return g
}

// NewRandomGuid returns a random (version 4) Guid.
func NewRandomGuid() Guid { return Guid(uuid.New()) }

func (g Guid) String() string { return uuid.UUID(g).String() }

// wireBytes returns the mixed-endian wire form.
func (g Guid) wireBytes() [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint32(b[0:4], binary.BigEndian.Uint32(g[0:4]))
	binary.LittleEndian.PutUint16(b[4:6], binary.BigEndian.Uint16(g[4:6]))
	binary.LittleEndian.PutUint16(b[6:8], binary.BigEndian.Uint16(g[6:8]))
	copy(b[8:], g[8:])
	return b
}

func guidFromWire(b []byte) Guid {
	var g Guid
	binary.BigEndian.PutUint32(g[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(g[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(g[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(g[8:], b[8:16])
	return g
}
