// Package alttree implements the three-tree coordinator (§4.5): it owns a
// BTC tree, a VBK tree, and an ALT tree, binds payloads crossing between
// them into an endorsement index, and resolves ALT forks by the BTC work
// they transitively imply rather than ALT chain work alone.
package alttree

import (
	"github.com/pop-chain/popcore/blocktree"
	"github.com/pop-chain/popcore/entities"
)

// endorsementKind distinguishes the two endorsement flavors an AltTree
// indexes (§3: VbkEndorsement endorses VBK into BTC; AltEndorsement
// endorses ALT into VBK).
type endorsementKind uint8

const (
	endorsementVbk endorsementKind = iota
	endorsementAlt
)

// appliedEndorsement is the bookkeeping addPayloads records for one
// endorsement it indexed, so setState's unapply phase can reverse exactly
// what apply did (§4.5 step 2's "unapply must be exactly reversible").
type appliedEndorsement struct {
	kind         endorsementKind
	id           entities.EndorsementID
	endorsedID   blocktree.ID // VBK id (vbk-kind) or ALT id (alt-kind) of the endorsed block
	containingID blocktree.ID // VBK id of the block the endorsing tx was mined into
	pinnedBTCID  blocktree.ID // BTC block_of_proof pinned by a VBK endorsement; zero for ALT endorsements
	newVbkIDs    []blocktree.ID // VBK blocks accepted into the VBK tree solely to validate this payload's context
	newBtcIDs    []blocktree.ID // BTC blocks accepted into the BTC tree solely to validate this payload's block_of_proof context
}

// appliedPayload is one payload's contribution to a container block,
// recorded in the order it was applied so unapply can reverse a
// container's payloads last-first; setState's apply phase replays from
// containerRecord.raw instead (§4.5 step 3).
type appliedPayload struct {
	payloadID entities.Hash256
	endorsement appliedEndorsement
}

// containerRecord is everything an ALT block's payloads need to be
// unapplied and later reapplied: the raw payload bundle it was given, and
// the derived bookkeeping from the apply that actually ran.
type containerRecord struct {
	raw     []entities.AltPayloads
	applied []appliedPayload
}
