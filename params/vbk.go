package params

import (
	"math/big"

	"github.com/pop-chain/popcore/blocktree"
	"github.com/pop-chain/popcore/crypto"
	"github.com/pop-chain/popcore/entities"
)

// VBK implements blocktree.ChainParams[entities.VbkBlockHeader]. VBK's
// block interval is far shorter than Bitcoin's, so its retarget window is
// tighter, but the algorithm shape (periodic, clamped adjustment against
// actual vs. ideal span) is the same.
type VBK struct {
	Hasher crypto.Provider
}

var vbkRetarget = retargetRule{
	Interval:      100,
	TargetSpacing: 30,
	ClampFactor:   4,
	MedianWindow:  11,
}

// widenVbkID keys the VBK tree by the 12-byte short-id, the same width VBK
// headers use for PreviousBlock (§6). This accepts VBK's real collision
// tradeoff (a short-id can theoretically collide) rather than inventing a
// full-hash linkage the wire format doesn't carry; alttree's context
// chaining check is what catches an inconsistent short-id reference in
// practice (a spoofed previous-block pointer won't chain to a real
// ancestor's full header).
func widenVbkID(h entities.ShortVbkHash) blocktree.ID {
	var out blocktree.ID
	copy(out[:12], h[:])
	return out
}

// VbkShortIDToTreeID exposes widenVbkID to other packages (alttree) that
// need to resolve a VbkHash carried inside an entity into the VBK tree's
// keying convention without re-deriving it.
func VbkShortIDToTreeID(h entities.ShortVbkHash) blocktree.ID {
	return widenVbkID(h)
}

func (p VBK) ID(h entities.VbkBlockHeader) blocktree.ID {
	return widenVbkID(h.Hash(p.Hasher).Short())
}

func (p VBK) PreviousID(h entities.VbkBlockHeader) blocktree.ID {
	return widenVbkID(h.PreviousBlock)
}

func (p VBK) Height(h entities.VbkBlockHeader) uint32 {
	return h.Height
}

func (p VBK) Timestamp(h entities.VbkBlockHeader) uint32 {
	return h.Timestamp
}

func (p VBK) BlockWork(h entities.VbkBlockHeader) (*big.Int, error) {
	target, err := h.Target()
	if err != nil {
		return nil, err
	}
	return entities.BlockWork(target)
}

func (p VBK) CheckProofOfWork(h entities.VbkBlockHeader) error {
	target, err := h.Target()
	if err != nil {
		return err
	}
	return entities.CheckProofOfWork(h.PowHash(p.Hasher), target)
}

func (p VBK) CheckDifficulty(h entities.VbkBlockHeader, ancestors []entities.VbkBlockHeader) error {
	bits := make([]uint32, len(ancestors))
	timestamps := make([]uint32, len(ancestors))
	for i, a := range ancestors {
		bits[i] = a.Difficulty
		timestamps[i] = a.Timestamp
	}
	return vbkRetarget.checkDifficulty(h.Height, h.Difficulty, bits, timestamps)
}

func (p VBK) CheckTime(h entities.VbkBlockHeader, ancestors []entities.VbkBlockHeader) error {
	timestamps := make([]uint32, len(ancestors))
	for i, a := range ancestors {
		timestamps[i] = a.Timestamp
	}
	return vbkRetarget.checkMedianTime(h.Timestamp, timestamps)
}
