package blocktree

import (
	"fmt"
	"math/big"
)

// maxAncestorWindow bounds how many closest-first ancestors BlockTree
// gathers for a CheckDifficulty/CheckTime call. Concrete ChainParams use as
// much of the window as their retarget/median-time rule needs and ignore
// the rest.
const maxAncestorWindow = 4096

// BlockTree tracks every known block of one chain kind, keyed by ID, with
// a chain-work-ordered tip (§4.3). H is the header type; behavior specific
// to a chain (hashing, retargeting, time rules) is supplied by Params.
type BlockTree[H any] struct {
	Params ChainParams[H]

	blocks map[ID]*BlockIndex[H]
	root   *BlockIndex[H]
	tip    *BlockIndex[H]
}

// NewBlockTree constructs an empty tree bound to the given params.
func NewBlockTree[H any](params ChainParams[H]) *BlockTree[H] {
	return &BlockTree[H]{
		Params: params,
		blocks: make(map[ID]*BlockIndex[H]),
	}
}

// Bootstrap seeds the tree with its genesis/checkpoint block. It is the
// only block accepted without a known parent. Bootstrap may be called only
// once on an empty tree.
func (t *BlockTree[H]) Bootstrap(header H) (*BlockIndex[H], error) {
	if t.root != nil {
		return nil, fmt.Errorf("blocktree: already bootstrapped")
	}
	work, err := t.Params.BlockWork(header)
	if err != nil {
		return nil, fmt.Errorf("blocktree: bootstrap block work: %w", err)
	}
	idx := &BlockIndex[H]{
		Header:    header,
		ID:        t.Params.ID(header),
		Height:    t.Params.Height(header),
		ChainWork: work,
		Status:    StatusValidTree,
	}
	t.blocks[idx.ID] = idx
	t.root = idx
	t.tip = idx
	return idx, nil
}

// GetBlockIndex looks up a known block by id.
func (t *BlockTree[H]) GetBlockIndex(id ID) (*BlockIndex[H], bool) {
	idx, ok := t.blocks[id]
	return idx, ok
}

// Tip returns the current best-chain tip (highest cumulative chain work
// among blocks valid up to StatusValidTree).
func (t *BlockTree[H]) Tip() *BlockIndex[H] {
	return t.tip
}

// RemoveLeaf deletes a known block with no recorded children from the
// tree, unlinking it from its parent. It refuses to remove a block with
// children or a non-zero RefCounter, since either means something still
// depends on the index staying resolvable (§3's lifecycle rule, and the
// context-unwind step of §4.5's unapply phase, which only ever retracts
// blocks it introduced and nothing has since built on).
func (t *BlockTree[H]) RemoveLeaf(id ID) error {
	idx, ok := t.blocks[id]
	if !ok {
		return fmt.Errorf("blocktree: remove: unknown block %x", id)
	}
	if len(idx.next) > 0 {
		return fmt.Errorf("blocktree: remove: block %x has children", id)
	}
	if idx.RefCounter > 0 {
		return fmt.Errorf("blocktree: remove: block %x has ref_counter > 0", id)
	}
	if idx.prev != nil {
		delete(idx.prev.next, id)
	}
	delete(t.blocks, id)
	if t.tip == idx {
		t.recomputeTip()
	}
	return nil
}

// Contains reports whether id is known to the tree, regardless of validity.
func (t *BlockTree[H]) Contains(id ID) bool {
	_, ok := t.blocks[id]
	return ok
}

// AcceptBlock validates and inserts a new header whose parent is already
// known, recomputing chain work and advancing the tip if the new block
// extends or exceeds the current best chain (§4.3's "structural"
// acceptance path; payload-bearing contextual validation is layered on
// top by package alttree).
func (t *BlockTree[H]) AcceptBlock(header H) (*BlockIndex[H], error) {
	id := t.Params.ID(header)
	if existing, ok := t.blocks[id]; ok {
		return existing, nil
	}
	prevID := t.Params.PreviousID(header)
	prev, ok := t.blocks[prevID]
	if !ok {
		return nil, fmt.Errorf("blocktree: unknown parent for block %x", id)
	}
	if prev.Status.IsFailed() {
		idx := &BlockIndex[H]{
			Header: header,
			ID:     id,
			Height: t.Params.Height(header),
			prev:   prev,
			Status: StatusFailedChild,
		}
		prev.addNext(idx)
		t.blocks[id] = idx
		return idx, fmt.Errorf("blocktree: parent %x is failed", prevID)
	}

	ancestors := t.ancestorHeaders(prev, maxAncestorWindow)
	if err := t.Params.CheckDifficulty(header, ancestors); err != nil {
		return nil, fmt.Errorf("blocktree: difficulty check: %w", err)
	}
	if err := t.Params.CheckTime(header, ancestors); err != nil {
		return nil, fmt.Errorf("blocktree: time check: %w", err)
	}

	work, err := t.Params.BlockWork(header)
	if err != nil {
		return nil, fmt.Errorf("blocktree: block work: %w", err)
	}

	idx := &BlockIndex[H]{
		Header:    header,
		ID:        id,
		Height:    t.Params.Height(header),
		prev:      prev,
		ChainWork: new(big.Int).Add(prev.ChainWork, work),
		Status:    StatusValidTree,
	}
	prev.addNext(idx)
	t.blocks[id] = idx

	t.maybeUpdateTip(idx)
	return idx, nil
}

// ancestorHeaders walks up to n ancestors starting at from, closest-first.
func (t *BlockTree[H]) ancestorHeaders(from *BlockIndex[H], n int) []H {
	out := make([]H, 0, n)
	cur := from
	for cur != nil && len(out) < n {
		out = append(out, cur.Header)
		cur = cur.prev
	}
	return out
}

// maybeUpdateTip promotes idx to tip if it is valid-up-to-tree and carries
// strictly more chain work than the current tip.
func (t *BlockTree[H]) maybeUpdateTip(idx *BlockIndex[H]) {
	if !idx.IsValidUpTo(StatusValidTree) {
		return
	}
	if t.tip == nil || idx.ChainWork.Cmp(t.tip.ChainWork) > 0 {
		t.tip = idx
	}
}

// GetAncestor walks up from idx to the block at the given height on idx's
// chain, or nil if height is above idx or below the tree's root.
func (t *BlockTree[H]) GetAncestor(idx *BlockIndex[H], height uint32) *BlockIndex[H] {
	if idx == nil || height > idx.Height {
		return nil
	}
	cur := idx
	for cur != nil && cur.Height > height {
		cur = cur.prev
	}
	return cur
}

// FindFork returns the lowest common ancestor of a and b (§4.5's setState
// fork-point search).
func (t *BlockTree[H]) FindFork(a, b *BlockIndex[H]) *BlockIndex[H] {
	for a.Height > b.Height {
		a = a.prev
	}
	for b.Height > a.Height {
		b = b.prev
	}
	for a != b {
		a = a.prev
		b = b.prev
	}
	return a
}

// Invalidate marks idx and every known descendant as failed, demoting the
// tip if it was affected (§4.3/§4.5's payload-failure rollback path calls
// this with reason = StatusFailedPop or StatusFailedChild).
func (t *BlockTree[H]) Invalidate(idx *BlockIndex[H], reason Status) {
	idx.Status |= reason
	t.recomputeTip()
	for _, child := range idx.Next() {
		t.Invalidate(child, StatusFailedChild)
	}
}

// Revalidate clears the FAILED_* bits from idx (but not its descendants,
// which must be revalidated individually or re-derived by the caller) and
// re-evaluates the tip.
func (t *BlockTree[H]) Revalidate(idx *BlockIndex[H]) {
	idx.Status &^= FailedMask
	t.recomputeTip()
}

// recomputeTip rescans every known block for the best valid-up-to-tree
// chain work. Called after invalidation/revalidation since those can move
// the tip down or back up.
func (t *BlockTree[H]) recomputeTip() {
	var best *BlockIndex[H]
	for _, idx := range t.blocks {
		if !idx.IsValidUpTo(StatusValidTree) {
			continue
		}
		if best == nil || idx.ChainWork.Cmp(best.ChainWork) > 0 {
			best = idx
		}
	}
	t.tip = best
}
