package alttree

import (
	"fmt"
	"sort"

	"github.com/pop-chain/popcore/blocktree"
	"github.com/pop-chain/popcore/entities"
	"github.com/pop-chain/popcore/params"
)

// ComparePopScore implements the embedder-facing comparePopScore contract
// (§6): -1 if hashA's chain is worse than hashB's, 0 if tied, +1 if better.
func (t *AltTree) ComparePopScore(hashA, hashB entities.Hash256) (int, error) {
	a, ok := t.alt.GetBlockIndex(blocktree.ID(hashA))
	if !ok {
		return 0, fmt.Errorf("alttree: comparePopScore: unknown block %x", hashA)
	}
	b, ok := t.alt.GetBlockIndex(blocktree.ID(hashB))
	if !ok {
		return 0, fmt.Errorf("alttree: comparePopScore: unknown block %x", hashB)
	}
	return t.comparePopScoreIndices(a, b)
}

// comparePopScoreIndices implements §4.5's ALT fork choice: the chain
// whose earliest BTC-anchored endorsement is lower-height wins; ties are
// broken pairwise down each chain's sorted anchor list, and only once
// that comparison is exhausted does raw ALT chain_work decide (§8:
// antisymmetric, and transitive when restricted to pairwise-comparable
// tips).
func (t *AltTree) comparePopScoreIndices(a, b *blocktree.BlockIndex[entities.AltBlockHeader]) (int, error) {
	anchorsA := t.sortedBtcAnchorHeights(a)
	anchorsB := t.sortedBtcAnchorHeights(b)

	n := len(anchorsA)
	if len(anchorsB) < n {
		n = len(anchorsB)
	}
	for i := 0; i < n; i++ {
		if anchorsA[i] < anchorsB[i] {
			return 1, nil
		}
		if anchorsA[i] > anchorsB[i] {
			return -1, nil
		}
	}

	switch {
	case a.ChainWork.Cmp(b.ChainWork) > 0:
		return 1, nil
	case a.ChainWork.Cmp(b.ChainWork) < 0:
		return -1, nil
	default:
		return 0, nil
	}
}

// sortedBtcAnchorHeights walks tip's chain back to genesis and collects,
// ascending, one height per applied ALT endorsement on it: the lowest BTC
// block_of_proof height among the VbkEndorsements of the VBK block that
// ALT endorsement was mined into (btcAnchorHeightFor). An ALT endorsement
// whose VBK block has no such anchor contributes nothing.
func (t *AltTree) sortedBtcAnchorHeights(tip *blocktree.BlockIndex[entities.AltBlockHeader]) []uint32 {
	var heights []uint32
	for cur := tip; cur != nil; cur = cur.Prev() {
		rec, ok := t.containers[cur.ID]
		if !ok {
			continue
		}
		for _, ap := range rec.applied {
			if ap.endorsement.kind != endorsementAlt {
				continue
			}
			if h, ok := t.btcAnchorHeightFor(ap.endorsement.containingID); ok {
				heights = append(heights, h)
			}
		}
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	return heights
}

// btcAnchorHeightFor reports the lowest height among every BTC
// block_of_proof anchoring vbkID via some VbkEndorsement. vbkID can be
// endorsed more than once (§8 scenario 2 endorses the same VBK block
// twice); iterating a map in Go visits entries in unspecified order, so
// this scans every match and keeps the minimum rather than the first one
// seen — anything else would make comparePopScoreIndices, and therefore
// SetState's reorg decisions, nondeterministic across runs, violating
// §5's "bit-identical across implementations" requirement.
func (t *AltTree) btcAnchorHeightFor(vbkID blocktree.ID) (uint32, bool) {
	var best uint32
	found := false
	for _, e := range t.vbkEndorsements {
		if params.VbkShortIDToTreeID(e.EndorsedHash.Short()) != vbkID {
			continue
		}
		idx, ok := t.btc.GetBlockIndex(blocktree.ID(e.BlockOfProofHash))
		if !ok {
			continue
		}
		if !found || idx.Height < best {
			best = idx.Height
			found = true
		}
	}
	return best, found
}
