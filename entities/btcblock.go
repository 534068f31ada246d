package entities

import (
	"math/big"

	"github.com/pop-chain/popcore/wire"
)

// BtcBlockHeader is the 80-byte Bitcoin-compatible block header the BTC
// tree is built from. Its fields, their order and widths mirror Bitcoin's
// header; timestamp and bits are encoded big-endian (see ToVbkEncoding),
// so the encoding and hash of a header differ from Bitcoin's own for the
// same field values.
type BtcBlockHeader struct {
	Version       uint32
	PreviousHash  Hash256
	MerkleRoot    Hash256
	Timestamp     uint32
	Bits          uint32 // compact difficulty encoding (§6)
	Nonce         uint32
}

// ToVbkEncoding serializes the header in its canonical field order:
// version(LE32) | previous_hash(32) | merkle_root(32) | timestamp(BE32) |
// bits(BE32) | nonce(LE32).
func (h BtcBlockHeader) ToVbkEncoding() []byte {
	out := make([]byte, 0, 4+32+32+4+4+4)
	out = wire.WriteLE32(out, h.Version)
	out = append(out, h.PreviousHash[:]...)
	out = append(out, h.MerkleRoot[:]...)
	out = wire.WriteBE32(out, h.Timestamp)
	out = wire.WriteBE32(out, h.Bits)
	out = wire.WriteLE32(out, h.Nonce)
	return out
}

// BtcBlockHeaderFromVbkEncoding parses a header produced by ToVbkEncoding.
func BtcBlockHeaderFromVbkEncoding(b []byte) (BtcBlockHeader, error) {
	var h BtcBlockHeader
	c := wire.NewCursor(b)
	var err error
	if h.Version, err = c.ReadLE32(); err != nil {
		return h, err
	}
	prev, err := c.ReadSlice(32)
	if err != nil {
		return h, err
	}
	copy(h.PreviousHash[:], prev)
	root, err := c.ReadSlice(32)
	if err != nil {
		return h, err
	}
	copy(h.MerkleRoot[:], root)
	if h.Timestamp, err = c.ReadBE32(); err != nil {
		return h, err
	}
	if h.Bits, err = c.ReadBE32(); err != nil {
		return h, err
	}
	if h.Nonce, err = c.ReadLE32(); err != nil {
		return h, err
	}
	if c.Remaining() != 0 {
		return h, entErr(ErrMalformed, "btc_block_header: trailing bytes")
	}
	return h, nil
}

// Hash returns the block's content-addressed identifier: double SHA-256 of
// the header encoding, matching Bitcoin's own block hash convention.
func (h BtcBlockHeader) Hash(p sha256Hasher) Hash256 {
	once := p.SHA256(h.ToVbkEncoding())
	return Hash256(p.SHA256(once[:]))
}

// Target decodes Bits into its 256-bit unsigned target form.
func (h BtcBlockHeader) Target() (*big.Int, error) {
	return CompactToTarget(h.Bits)
}

// CompactToTarget decodes Bitcoin's compact ("nBits") difficulty encoding
// into a 256-bit unsigned target.
func CompactToTarget(bits uint32) (*big.Int, error) {
	exponent := bits >> 24
	mantissa := bits & 0x007fffff
	if bits&0x00800000 != 0 {
		return nil, entErr(ErrBadWork, "compact target: negative mantissa sign bit set")
	}
	target := new(big.Int).SetUint64(uint64(mantissa))
	if exponent <= 3 {
		target.Rsh(target, uint(8*(3-exponent)))
	} else {
		target.Lsh(target, uint(8*(exponent-3)))
	}
	if target.Sign() == 0 {
		return nil, entErr(ErrBadWork, "compact target: zero target")
	}
	return target, nil
}

// TargetToCompact encodes a 256-bit target into Bitcoin's compact form.
func TargetToCompact(target *big.Int) uint32 {
	b := target.Bytes()
	size := len(b)
	var mantissa uint32
	switch {
	case size == 0:
		return 0
	case size <= 3:
		padded := make([]byte, 3)
		copy(padded, b)
		mantissa = uint32(padded[0])<<16 | uint32(padded[1])<<8 | uint32(padded[2])
	default:
		mantissa = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		size++
	}
	return uint32(size)<<24 | mantissa
}

// BlockWork computes floor(2^256 / target) for proof-of-work chain work
// accumulation, per §4.1's canonical definition shared by BTC and VBK.
func BlockWork(target *big.Int) (*big.Int, error) {
	if target == nil || target.Sign() <= 0 {
		return nil, entErr(ErrBadWork, "block_work: target must be > 0")
	}
	two256 := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).Div(two256, target), nil
}

// CheckProofOfWork verifies integer(hash, big-endian) < integer(target, big-endian).
func CheckProofOfWork(hash Hash256, target *big.Int) error {
	hv := new(big.Int).SetBytes(hash[:])
	if hv.Cmp(target) >= 0 {
		return entErr(ErrBadWork, "proof of work: hash does not satisfy target")
	}
	return nil
}
