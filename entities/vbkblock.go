package entities

import (
	"math/big"

	"github.com/pop-chain/popcore/wire"
)

// KeystoneInterval is the VBK period boundary used to anchor BTC
// endorsements (glossary: "Keystone — a VBK block at a period boundary
// (every 20 blocks)").
const KeystoneInterval = 20

// IsKeystone reports whether height is a keystone boundary.
func IsKeystone(height uint64) bool {
	return height%KeystoneInterval == 0
}

// VbkBlockHeader is a 24-byte-hashed VeriBlock block header. It carries an
// explicit previous-keystone pointer (in addition to previous-block) which
// the VBK tree and keystone-crossing contextual checks rely on (§4.4).
type VbkBlockHeader struct {
	Height           uint32
	Version          uint16
	PreviousBlock    ShortVbkHash
	PreviousKeystone ShortVbkHash
	MerkleRoot       [16]byte
	Timestamp        uint32
	Difficulty       uint32 // compact encoding, same form as BTC Bits
	Nonce            uint32
}

// ToVbkEncoding serializes the header: height(BE32) | version(BE16) |
// previous_block(12) | previous_keystone(12) | merkle_root(16) |
// timestamp(BE32) | difficulty(BE32) | nonce(BE32).
func (h VbkBlockHeader) ToVbkEncoding() []byte {
	out := make([]byte, 0, 4+2+12+12+16+4+4+4)
	out = wire.WriteBE32(out, h.Height)
	out = wire.WriteBE16(out, h.Version)
	out = append(out, h.PreviousBlock[:]...)
	out = append(out, h.PreviousKeystone[:]...)
	out = append(out, h.MerkleRoot[:]...)
	out = wire.WriteBE32(out, h.Timestamp)
	out = wire.WriteBE32(out, h.Difficulty)
	out = wire.WriteBE32(out, h.Nonce)
	return out
}

// VbkBlockHeaderFromVbkEncoding parses a header produced by ToVbkEncoding.
func VbkBlockHeaderFromVbkEncoding(b []byte) (VbkBlockHeader, error) {
	var h VbkBlockHeader
	c := wire.NewCursor(b)
	var err error
	if h.Height, err = c.ReadBE32(); err != nil {
		return h, err
	}
	if h.Version, err = c.ReadBE16(); err != nil {
		return h, err
	}
	prev, err := c.ReadSlice(12)
	if err != nil {
		return h, err
	}
	copy(h.PreviousBlock[:], prev)
	prevKeystone, err := c.ReadSlice(12)
	if err != nil {
		return h, err
	}
	copy(h.PreviousKeystone[:], prevKeystone)
	root, err := c.ReadSlice(16)
	if err != nil {
		return h, err
	}
	copy(h.MerkleRoot[:], root)
	if h.Timestamp, err = c.ReadBE32(); err != nil {
		return h, err
	}
	if h.Difficulty, err = c.ReadBE32(); err != nil {
		return h, err
	}
	if h.Nonce, err = c.ReadBE32(); err != nil {
		return h, err
	}
	if c.Remaining() != 0 {
		return h, entErr(ErrMalformed, "vbk_block_header: trailing bytes")
	}
	return h, nil
}

// Hash returns the block's 24-byte content-addressed identifier.
func (h VbkBlockHeader) Hash(p sha256Hasher) VbkHash {
	full := p.SHA256(h.ToVbkEncoding())
	var out VbkHash
	copy(out[:], full[:24])
	return out
}

// Target decodes Difficulty into its 256-bit unsigned target form. VBK
// reuses Bitcoin's compact difficulty encoding (§6).
func (h VbkBlockHeader) Target() (*big.Int, error) {
	return CompactToTarget(h.Difficulty)
}

// PowHash returns the full, untruncated SHA-256 of the header encoding
// that proof-of-work is checked against. The 24-byte Hash identifier is a
// truncation of this same digest, but a truncated value can't be
// meaningfully compared against a 256-bit target.
func (h VbkBlockHeader) PowHash(p sha256Hasher) Hash256 {
	return Hash256(p.SHA256(h.ToVbkEncoding()))
}
