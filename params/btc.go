package params

import (
	"math/big"

	"github.com/pop-chain/popcore/blocktree"
	"github.com/pop-chain/popcore/crypto"
	"github.com/pop-chain/popcore/entities"
)

// BTCHeader wraps a BtcBlockHeader with the height it was accepted at.
// Real Bitcoin headers carry no height field (it's derived from chain
// position), so the BTC tree is built over this wrapper rather than the
// bare entity; the alttree coordinator sets Height when accepting a block
// (Height of prev + 1, or 0 for the bootstrap header).
type BTCHeader struct {
	entities.BtcBlockHeader
	Height_ uint32
}

// BTC implements blocktree.ChainParams[BTCHeader] with Bitcoin mainnet's
// own retarget cadence, so test fixtures mined against real BTC difficulty
// rules can be replayed directly.
type BTC struct {
	Hasher crypto.Provider
}

var btcRetarget = retargetRule{
	Interval:      2016,
	TargetSpacing: 600,
	ClampFactor:   4,
	MedianWindow:  11,
}

func toID32(h [32]byte) blocktree.ID { return blocktree.ID(h) }

func (p BTC) ID(h BTCHeader) blocktree.ID {
	return toID32(h.Hash(p.Hasher))
}

func (p BTC) PreviousID(h BTCHeader) blocktree.ID {
	return toID32(h.PreviousHash)
}

func (p BTC) Height(h BTCHeader) uint32 {
	return h.Height_
}

func (p BTC) Timestamp(h BTCHeader) uint32 {
	return h.Timestamp
}

func (p BTC) BlockWork(h BTCHeader) (*big.Int, error) {
	target, err := h.Target()
	if err != nil {
		return nil, err
	}
	return entities.BlockWork(target)
}

func (p BTC) CheckProofOfWork(h BTCHeader) error {
	target, err := h.Target()
	if err != nil {
		return err
	}
	return entities.CheckProofOfWork(h.Hash(p.Hasher), target)
}

func (p BTC) CheckDifficulty(h BTCHeader, ancestors []BTCHeader) error {
	bits := make([]uint32, len(ancestors))
	timestamps := make([]uint32, len(ancestors))
	for i, a := range ancestors {
		bits[i] = a.Bits
		timestamps[i] = a.Timestamp
	}
	return btcRetarget.checkDifficulty(h.Height_, h.Bits, bits, timestamps)
}

func (p BTC) CheckTime(h BTCHeader, ancestors []BTCHeader) error {
	timestamps := make([]uint32, len(ancestors))
	for i, a := range ancestors {
		timestamps[i] = a.Timestamp
	}
	return btcRetarget.checkMedianTime(h.Timestamp, timestamps)
}
