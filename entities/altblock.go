package entities

import "github.com/pop-chain/popcore/wire"

// AltBlockHeader is the opaque ALT header the embedder supplies (§3: "ALT
// headers are opaque: their hash, previous_hash, height, and timestamp are
// supplied by the embedder"). The core never interprets ALT transactions;
// PayloadHash is carried purely so embedders can round-trip their own
// block-content commitment through storage without the core caring what it
// means.
type AltBlockHeader struct {
	BlockHash     Hash256
	PreviousHash  Hash256
	Height        uint32
	Timestamp     uint32
	PayloadHash   Hash256
}

// ToVbkEncoding serializes the header: block_hash(32) | previous_hash(32) |
// height(BE32) | timestamp(BE32) | payload_hash(32).
func (h AltBlockHeader) ToVbkEncoding() []byte {
	out := make([]byte, 0, 32+32+4+4+32)
	out = append(out, h.BlockHash[:]...)
	out = append(out, h.PreviousHash[:]...)
	out = wire.WriteBE32(out, h.Height)
	out = wire.WriteBE32(out, h.Timestamp)
	out = append(out, h.PayloadHash[:]...)
	return out
}

// AltBlockHeaderFromVbkEncoding parses a header produced by ToVbkEncoding.
func AltBlockHeaderFromVbkEncoding(b []byte) (AltBlockHeader, error) {
	var h AltBlockHeader
	c := wire.NewCursor(b)
	bh, err := c.ReadSlice(32)
	if err != nil {
		return h, err
	}
	copy(h.BlockHash[:], bh)
	ph, err := c.ReadSlice(32)
	if err != nil {
		return h, err
	}
	copy(h.PreviousHash[:], ph)
	if h.Height, err = c.ReadBE32(); err != nil {
		return h, err
	}
	if h.Timestamp, err = c.ReadBE32(); err != nil {
		return h, err
	}
	payloadHash, err := c.ReadSlice(32)
	if err != nil {
		return h, err
	}
	copy(h.PayloadHash[:], payloadHash)
	if c.Remaining() != 0 {
		return h, entErr(ErrMalformed, "alt_block_header: trailing bytes")
	}
	return h, nil
}

// Hash returns the embedder-supplied block hash. ALT identity is whatever
// the embedder says it is; the core does not recompute it from content.
func (h AltBlockHeader) Hash() Hash256 {
	return h.BlockHash
}
