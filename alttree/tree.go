package alttree

import (
	"fmt"

	"github.com/pop-chain/popcore/blocktree"
	"github.com/pop-chain/popcore/crypto"
	"github.com/pop-chain/popcore/entities"
	"github.com/pop-chain/popcore/params"
	"github.com/pop-chain/popcore/storage"
	"github.com/pop-chain/popcore/validation"
)

// AltTree is the coordinator described in §4.5. It is not safe for
// concurrent use: every operation is synchronous and the single-threaded
// cooperative model (§5) is the caller's responsibility to uphold.
type AltTree struct {
	Crypto crypto.Provider

	btc *blocktree.BlockTree[params.BTCHeader]
	vbk *blocktree.BlockTree[entities.VbkBlockHeader]
	alt *blocktree.BlockTree[entities.AltBlockHeader]

	vbkEndorsements map[entities.EndorsementID]entities.VbkEndorsement
	altEndorsements map[entities.EndorsementID]entities.AltEndorsement

	containers map[blocktree.ID]*containerRecord

	cache *validation.StructuralCache

	// store is the optional storage collaborator (§6). Nil means the
	// coordinator runs purely in memory, as it always did before
	// AttachStore existed.
	store storage.KV

	// activeTip is the ALT block setState last committed to, distinct
	// from alt.Tip() which tracks raw chain work and is only a candidate
	// until ALT fork choice (comparePopScore) confirms it.
	activeTip *blocktree.BlockIndex[entities.AltBlockHeader]
}

// New constructs an empty, unbootstrapped coordinator.
func New(p crypto.Provider) *AltTree {
	return &AltTree{
		Crypto:          p,
		btc:             blocktree.NewBlockTree[params.BTCHeader](params.BTC{Hasher: p}),
		vbk:             blocktree.NewBlockTree[entities.VbkBlockHeader](params.VBK{Hasher: p}),
		alt:             blocktree.NewBlockTree[entities.AltBlockHeader](params.ALT{}),
		vbkEndorsements: make(map[entities.EndorsementID]entities.VbkEndorsement),
		altEndorsements: make(map[entities.EndorsementID]entities.AltEndorsement),
		containers:      make(map[blocktree.ID]*containerRecord),
		cache:           validation.NewStructuralCache(),
	}
}

// Bootstrap seeds all three trees with their genesis/checkpoint headers
// (§4.5's bootstrap contract). May be called only once.
func (t *AltTree) Bootstrap(altGenesis entities.AltBlockHeader, btcGenesis params.BTCHeader, vbkGenesis entities.VbkBlockHeader) error {
	if _, err := t.btc.Bootstrap(btcGenesis); err != nil {
		return fmt.Errorf("alttree: bootstrap btc: %w", err)
	}
	if _, err := t.vbk.Bootstrap(vbkGenesis); err != nil {
		return fmt.Errorf("alttree: bootstrap vbk: %w", err)
	}
	idx, err := t.alt.Bootstrap(altGenesis)
	if err != nil {
		return fmt.Errorf("alttree: bootstrap alt: %w", err)
	}
	t.activeTip = idx

	return t.commitHeaders(
		headerPut{storage.BucketBTCHeaders, t.btc.Params.ID(btcGenesis), btcGenesis.ToVbkEncoding()},
		headerPut{storage.BucketVBKHeaders, t.vbk.Params.ID(vbkGenesis), vbkGenesis.ToVbkEncoding()},
		headerPut{storage.BucketALTHeaders, t.alt.Params.ID(altGenesis), altGenesis.ToVbkEncoding()},
	)
}

// AcceptBlock inserts an ALT header without payloads, raising it to
// VALID_TREE (§4.5). It then checks ALT fork choice and schedules a
// setState if the new block's chain is now better than the active tip
// (§4.5's re-org trigger).
func (t *AltTree) AcceptBlock(header entities.AltBlockHeader) (*blocktree.BlockIndex[entities.AltBlockHeader], error) {
	idx, err := t.alt.AcceptBlock(header)
	if err != nil {
		return nil, err
	}
	if err := t.commitHeaders(headerPut{storage.BucketALTHeaders, idx.ID, header.ToVbkEncoding()}); err != nil {
		return idx, err
	}
	if err := t.maybeReorg(idx); err != nil {
		return idx, err
	}
	return idx, nil
}

// GetBlock looks up a known ALT block by hash.
func (t *AltTree) GetBlock(hash entities.Hash256) (*blocktree.BlockIndex[entities.AltBlockHeader], bool) {
	return t.alt.GetBlockIndex(blocktree.ID(hash))
}

// GetBestChain returns the committed active chain from genesis to tip,
// inclusive, closest-to-genesis first.
func (t *AltTree) GetBestChain() []*blocktree.BlockIndex[entities.AltBlockHeader] {
	if t.activeTip == nil {
		return nil
	}
	var chain []*blocktree.BlockIndex[entities.AltBlockHeader]
	for cur := t.activeTip; cur != nil; cur = cur.Prev() {
		chain = append([]*blocktree.BlockIndex[entities.AltBlockHeader]{cur}, chain...)
	}
	return chain
}

// maybeReorg implements the re-org trigger: if candidate's chain now beats
// the active tip under ALT fork choice, commit to it via setState.
func (t *AltTree) maybeReorg(candidate *blocktree.BlockIndex[entities.AltBlockHeader]) error {
	if t.activeTip == nil {
		return nil
	}
	cmp, err := t.comparePopScoreIndices(candidate, t.activeTip)
	if err != nil {
		return err
	}
	if cmp > 0 {
		return t.SetState(candidate.Header.Hash())
	}
	return nil
}
