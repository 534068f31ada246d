package params

import (
	"math/big"

	"github.com/pop-chain/popcore/blocktree"
	"github.com/pop-chain/popcore/entities"
)

// ALT implements blocktree.ChainParams[entities.AltBlockHeader]. ALT blocks
// are opaque and carry no proof-of-work (§3, §9's Non-goals): BlockWork is
// a constant so chain work still accumulates monotonically with height
// (needed as comparePopScore's final tie-break, §4.5), and
// CheckDifficulty/CheckTime are no-ops since the embedder, not this core,
// owns ALT block production rules.
type ALT struct{}

func (ALT) ID(h entities.AltBlockHeader) blocktree.ID {
	return blocktree.ID(h.BlockHash)
}

func (ALT) PreviousID(h entities.AltBlockHeader) blocktree.ID {
	return blocktree.ID(h.PreviousHash)
}

func (ALT) Height(h entities.AltBlockHeader) uint32 {
	return h.Height
}

func (ALT) Timestamp(h entities.AltBlockHeader) uint32 {
	return h.Timestamp
}

func (ALT) BlockWork(entities.AltBlockHeader) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (ALT) CheckProofOfWork(entities.AltBlockHeader) error {
	return nil
}

func (ALT) CheckDifficulty(entities.AltBlockHeader, []entities.AltBlockHeader) error {
	return nil
}

func (ALT) CheckTime(entities.AltBlockHeader, []entities.AltBlockHeader) error {
	return nil
}
