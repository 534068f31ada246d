package blocktree

import "math/big"

// EndorsementID is an opaque reference to an endorsement entry; this
// package does not interpret it, only stores it against the blocks it
// concerns (the alttree package defines the concrete id type and owns the
// endorsement records themselves).
type EndorsementID [32]byte

// BlockIndex is one node of a BlockTree: a header plus the bookkeeping the
// engine needs to order, validate, and reorg around it (§3's field table).
type BlockIndex[H any] struct {
	Header H
	ID     ID
	Height uint32

	prev *BlockIndex[H]
	next map[ID]*BlockIndex[H]

	// ChainWork is the cumulative proof-of-work from genesis through this
	// block, inclusive. Populated by BlockTree on insertion.
	ChainWork *big.Int

	Status Status

	// RefCounter counts references that pin this block. Package alttree
	// raises it only on a BTC block, once for each applied VTB that names
	// it as block_of_proof; VBK and ALT blocks, including containing and
	// context blocks, are not counted. A block with RefCounter == 0 and no
	// descendants is eligible for pruning by an embedder-driven GC, which
	// this package does not itself perform.
	RefCounter int

	// EndorsedBy lists endorsements whose endorsed block is this index
	// (i.e. this ALT/VBK block is the subject being proven).
	EndorsedBy []EndorsementID

	// ContainingEndorsements lists endorsements whose containing block is
	// this index (i.e. the payload carrying the endorsement landed here).
	ContainingEndorsements []EndorsementID
}

// Prev returns the parent index, or nil at a tree's root.
func (b *BlockIndex[H]) Prev() *BlockIndex[H] {
	return b.prev
}

// Next returns the known direct descendants of b, in no particular order.
func (b *BlockIndex[H]) Next() []*BlockIndex[H] {
	out := make([]*BlockIndex[H], 0, len(b.next))
	for _, n := range b.next {
		out = append(out, n)
	}
	return out
}

// IsValidUpTo reports whether b's status satisfies upperBound (§3).
func (b *BlockIndex[H]) IsValidUpTo(upperBound Status) bool {
	return b.Status.IsValidUpTo(upperBound)
}

func (b *BlockIndex[H]) addNext(child *BlockIndex[H]) {
	if b.next == nil {
		b.next = make(map[ID]*BlockIndex[H])
	}
	b.next[child.ID] = child
}
