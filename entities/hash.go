// Package entities holds the immutable data types the core validates and
// cross-references: block headers for the three chains, VBK transactions,
// Merkle paths, endorsements, and the top-level payload containers (ATV,
// VTB, PopData, AltPayloads). Every type here exposes ToVbkEncoding /
// FromVbkEncoding and is otherwise inert: entities carry no tree pointers
// and no validation logic of their own (that lives in package validation).
package entities

// Hash256 identifies BTC and ALT blocks, and is the width of every
// entity identifier (ATV.id, VTB.id, endorsement ids).
type Hash256 [32]byte

// VbkHash identifies VBK blocks. VBK block hashes are 24 bytes (§6), not
// the full 32-byte width used by BTC/ALT.
type VbkHash [24]byte

// ShortVbkHash is the 12-byte (96-bit) truncation of a VbkHash used as a
// compact reference in wire formats that embed VBK block pointers.
type ShortVbkHash [12]byte

// Short returns the 96-bit short-id truncation of a VBK hash.
func (h VbkHash) Short() ShortVbkHash {
	var out ShortVbkHash
	copy(out[:], h[:12])
	return out
}

// Uint128 is a fixed-width 128-bit unsigned integer, big-endian. No entity
// in this package uses it; endorsement PayoutInfo is a length-prefixed
// byte slice.
type Uint128 [16]byte

// sha256Hasher is the minimal crypto surface entity hashing needs; it is
// satisfied by crypto.Provider without this package importing crypto (kept
// narrow so entities stays a leaf package alongside, not above, crypto).
type sha256Hasher interface {
	SHA256(input []byte) [32]byte
}
