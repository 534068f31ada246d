package alttree

import (
	"fmt"

	"github.com/pop-chain/popcore/blocktree"
	"github.com/pop-chain/popcore/entities"
)

// SetState implements §4.5's setState: atomically moves the committed
// active ALT chain to the one ending at targetHash, unapplying the old
// chain's payload effects down to the fork point and reapplying the new
// chain's from there up. A repeat call with the same target is a no-op
// (§8).
func (t *AltTree) SetState(targetHash entities.Hash256) error {
	target, ok := t.alt.GetBlockIndex(blocktree.ID(targetHash))
	if !ok {
		return fmt.Errorf("alttree: setState: unknown block %x", targetHash)
	}
	if t.activeTip == target {
		return nil
	}

	fork := t.alt.FindFork(t.activeTip, target)
	oldChain := pathExclusive(fork, t.activeTip)
	newChain := pathExclusive(fork, target)

	t.unapplyChain(oldChain)

	if err := t.applyChain(newChain); err != nil {
		// apply phase failed partway; everything it managed to apply was
		// already unwound inside applyChain. Restore the original chain
		// exactly as it was before this call.
		if reErr := t.applyChain(oldChain); reErr != nil {
			return fmt.Errorf("alttree: setState: failed forward (%v) and failed to restore original chain (%w)", err, reErr)
		}
		return err
	}

	t.activeTip = target
	return t.commitActiveTip(targetHash)
}

// pathExclusive returns the blocks strictly between fork and tip,
// ascending (fork's child first, tip last).
func pathExclusive(fork, tip *blocktree.BlockIndex[entities.AltBlockHeader]) []*blocktree.BlockIndex[entities.AltBlockHeader] {
	var out []*blocktree.BlockIndex[entities.AltBlockHeader]
	for cur := tip; cur != nil && cur != fork; cur = cur.Prev() {
		out = append([]*blocktree.BlockIndex[entities.AltBlockHeader]{cur}, out...)
	}
	return out
}

// unapplyChain reverses every block's applied payloads, from the tip end
// of the chain back down to the fork (§4.5 step 2), clearing
// VALID_PAYLOADS but keeping the raw payload record so the block can be
// reapplied later.
func (t *AltTree) unapplyChain(chain []*blocktree.BlockIndex[entities.AltBlockHeader]) {
	for i := len(chain) - 1; i >= 0; i-- {
		idx := chain[i]
		id := idx.ID
		rec, ok := t.containers[id]
		if !ok {
			continue
		}
		for j := len(rec.applied) - 1; j >= 0; j-- {
			t.unapplyOne(id, rec.applied[j])
		}
		rec.applied = nil
		idx.Status &^= blocktree.StatusValidPayloads
	}
}

// applyChain reapplies each block's recorded raw payload bundles in
// order, from fork+1 up to the chain's end (§4.5 step 3). On the first
// failure it unwinds everything this call applied and marks the failing
// block FAILED_POP, propagating FAILED_CHILD to its descendants, then
// returns the error; the caller is responsible for restoring whichever
// chain was active before.
func (t *AltTree) applyChain(chain []*blocktree.BlockIndex[entities.AltBlockHeader]) error {
	var doneIDs []blocktree.ID
	rollback := func() {
		for i := len(doneIDs) - 1; i >= 0; i-- {
			id := doneIDs[i]
			rec := t.containers[id]
			for j := len(rec.applied) - 1; j >= 0; j-- {
				t.unapplyOne(id, rec.applied[j])
			}
			rec.applied = nil
			if idx, ok := t.alt.GetBlockIndex(id); ok {
				idx.Status &^= blocktree.StatusValidPayloads
			}
		}
	}

	for _, idx := range chain {
		rec, ok := t.containers[idx.ID]
		if !ok || len(rec.raw) == 0 {
			continue
		}
		var applied []appliedPayload
		for _, ap := range rec.raw {
			got, err := t.applyPopData(idx.ID, ap.Data)
			if err != nil {
				for k := len(applied) - 1; k >= 0; k-- {
					t.unapplyOne(idx.ID, applied[k])
				}
				rollback()
				t.alt.Invalidate(idx, blocktree.StatusFailedPop)
				return fmt.Errorf("alttree: setState: apply failed at block %x: %w", idx.ID, err)
			}
			applied = append(applied, got...)
		}
		rec.applied = applied
		idx.Status |= blocktree.StatusValidPayloads
		doneIDs = append(doneIDs, idx.ID)
	}
	return nil
}
