package alttree_test

import (
	"math/big"

	"github.com/pop-chain/popcore/crypto"
	"github.com/pop-chain/popcore/entities"
)

// regtestBits is an intentionally low difficulty target so tests can mine
// valid-PoW fixture headers locally: about one nonce in 65,536 satisfies
// it.
const regtestBits uint32 = 0x1f00ffff

// mineBtc increments nonce until the header's hash satisfies regtestBits,
// producing a structurally valid block_of_proof fixture.
func mineBtc(h entities.BtcBlockHeader, p crypto.Provider) entities.BtcBlockHeader {
	h.Bits = regtestBits
	target, _ := entities.CompactToTarget(regtestBits)
	for nonce := uint32(0); ; nonce++ {
		h.Nonce = nonce
		hash := h.Hash(p)
		if new(big.Int).SetBytes(hash[:]).Cmp(target) < 0 {
			return h
		}
	}
}

// mineVbk is mineBtc's VBK counterpart; VBK reuses BTC's compact
// difficulty encoding and proof-of-work check (§6).
func mineVbk(h entities.VbkBlockHeader, p crypto.Provider) entities.VbkBlockHeader {
	h.Difficulty = regtestBits
	target, _ := entities.CompactToTarget(regtestBits)
	for nonce := uint32(0); ; nonce++ {
		h.Nonce = nonce
		full, _ := fullVbkHash(h, p)
		if new(big.Int).SetBytes(full[:]).Cmp(target) < 0 {
			return h
		}
	}
}

// fullVbkHash returns the full 32-byte SHA256 of a VBK header's encoding
// (mining works against the full digest; VbkBlockHeader.Hash only exposes
// the truncated 24-byte identifier).
func fullVbkHash(h entities.VbkBlockHeader, p crypto.Provider) ([32]byte, error) {
	return p.SHA256(h.ToVbkEncoding()), nil
}
