package blocktree_test

import (
	"math/big"
	"testing"

	"github.com/pop-chain/popcore/blocktree"
)

// testHeader is a minimal fake chain used to exercise the generic engine
// without pulling in a real PoW header (entities is covered separately).
type testHeader struct {
	id     byte
	prevID byte
	height uint32
}

type testParams struct{}

func (testParams) ID(h testHeader) blocktree.ID {
	var out blocktree.ID
	out[31] = h.id
	return out
}
func (testParams) PreviousID(h testHeader) blocktree.ID {
	var out blocktree.ID
	out[31] = h.prevID
	return out
}
func (testParams) Height(h testHeader) uint32    { return h.height }
func (testParams) Timestamp(testHeader) uint32   { return 0 }
func (testParams) BlockWork(testHeader) (*big.Int, error) {
	return big.NewInt(1), nil
}
func (testParams) CheckProofOfWork(testHeader) error              { return nil }
func (testParams) CheckDifficulty(testHeader, []testHeader) error { return nil }
func (testParams) CheckTime(testHeader, []testHeader) error       { return nil }

func buildChain(t *testing.T, ids ...byte) *blocktree.BlockTree[testHeader] {
	t.Helper()
	tree := blocktree.NewBlockTree[testHeader](testParams{})
	if _, err := tree.Bootstrap(testHeader{id: 0, height: 0}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	for i, id := range ids {
		h := testHeader{id: id, prevID: 0, height: uint32(i + 1)}
		if i > 0 {
			h.prevID = ids[i-1]
		}
		if _, err := tree.AcceptBlock(h); err != nil {
			t.Fatalf("accept %d: %v", id, err)
		}
	}
	return tree
}

func TestBootstrapAndAcceptExtendsTip(t *testing.T) {
	tree := buildChain(t, 1, 2, 3)
	tip := tree.Tip()
	if tip == nil || tip.Height != 3 {
		t.Fatalf("expected tip at height 3, got %+v", tip)
	}
}

func TestAcceptBlockUnknownParentErrors(t *testing.T) {
	tree := blocktree.NewBlockTree[testHeader](testParams{})
	if _, err := tree.Bootstrap(testHeader{id: 0, height: 0}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := tree.AcceptBlock(testHeader{id: 9, prevID: 5, height: 1}); err == nil {
		t.Fatalf("expected error for unknown parent")
	}
}

func TestGetAncestorWalksUpChain(t *testing.T) {
	tree := buildChain(t, 1, 2, 3)
	tip := tree.Tip()
	anc := tree.GetAncestor(tip, 1)
	if anc == nil || anc.Height != 1 {
		t.Fatalf("expected ancestor at height 1, got %+v", anc)
	}
	if tree.GetAncestor(tip, 5) != nil {
		t.Fatalf("expected nil for height above tip")
	}
}

func TestFindForkAtCommonAncestor(t *testing.T) {
	tree := blocktree.NewBlockTree[testHeader](testParams{})
	if _, err := tree.Bootstrap(testHeader{id: 0, height: 0}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := tree.AcceptBlock(testHeader{id: 1, prevID: 0, height: 1}); err != nil {
		t.Fatalf("accept 1: %v", err)
	}
	if _, err := tree.AcceptBlock(testHeader{id: 2, prevID: 1, height: 2}); err != nil {
		t.Fatalf("accept 2 (branch a): %v", err)
	}
	if _, err := tree.AcceptBlock(testHeader{id: 3, prevID: 1, height: 2}); err != nil {
		t.Fatalf("accept 3 (branch b): %v", err)
	}
	a, _ := tree.GetBlockIndex(testParams{}.ID(testHeader{id: 2}))
	b, _ := tree.GetBlockIndex(testParams{}.ID(testHeader{id: 3}))
	fork := tree.FindFork(a, b)
	want, _ := tree.GetBlockIndex(testParams{}.ID(testHeader{id: 1}))
	if fork != want {
		t.Fatalf("expected fork at block 1, got %+v", fork)
	}
}

func TestInvalidateDemotesTipAndFailsDescendants(t *testing.T) {
	tree := buildChain(t, 1, 2, 3)
	mid, _ := tree.GetBlockIndex(testParams{}.ID(testHeader{id: 2}))
	tree.Invalidate(mid, blocktree.StatusFailedPop)

	tip := tree.Tip()
	if tip == nil || tip.Height != 1 {
		t.Fatalf("expected tip to fall back to height 1, got %+v", tip)
	}

	top, _ := tree.GetBlockIndex(testParams{}.ID(testHeader{id: 3}))
	if !top.Status.IsFailed() {
		t.Fatalf("expected descendant to be marked failed")
	}

	tree.Revalidate(mid)
	if _, err := tree.AcceptBlock(testHeader{id: 3, prevID: 2, height: 3}); err != nil {
		// already known; re-acceptance of an existing id is a no-op, not an error
		t.Fatalf("unexpected error re-evaluating existing block: %v", err)
	}
}
