package validation

import "github.com/pop-chain/popcore/entities"

// StructuralCache memoizes "payload ID -> already passed structural
// checks" so re-applying the same ATV/VTB during setState's apply phase
// (§4.5 step 3) doesn't redo signature and Merkle verification it already
// paid for during addPayloads. A coordinator clears the entry for a
// payload when removePayloads drops it, since a structurally-valid
// payload removed from the store must re-earn memoization if resubmitted
// (its bytes could differ on resubmission even under the same ID only in
// a hash collision, but clearing is cheap and keeps the cache's lifetime
// tied exactly to the payload's presence in the store).
type StructuralCache struct {
	checked map[entities.Hash256]struct{}
}

// NewStructuralCache returns an empty cache.
func NewStructuralCache() *StructuralCache {
	return &StructuralCache{checked: make(map[entities.Hash256]struct{})}
}

// MarkChecked records that id has passed structural validation.
func (c *StructuralCache) MarkChecked(id entities.Hash256) {
	c.checked[id] = struct{}{}
}

// WasChecked reports whether id was previously marked checked.
func (c *StructuralCache) WasChecked(id entities.Hash256) bool {
	_, ok := c.checked[id]
	return ok
}

// Forget removes id's memoization entry. Called when removePayloads drops
// the payload from the store.
func (c *StructuralCache) Forget(id entities.Hash256) {
	delete(c.checked, id)
}
