// Package params supplies concrete blocktree.ChainParams implementations
// for the BTC, VBK, and ALT trees: hashing/height/timestamp accessors plus
// each chain's proof-of-work and retarget rules (§4.1, §9).
package params

import (
	"math/big"

	"github.com/pop-chain/popcore/entities"
)

// retargetRule holds the tunable constants of a Bitcoin-style periodic
// difficulty retarget: every Interval blocks, compare the actual time span
// of the last Interval blocks against the ideal (Interval * TargetSpacing)
// and adjust, clamped to [1/ClampFactor, ClampFactor] of the prior target
// to prevent a single bad timestamp from swinging difficulty too far.
type retargetRule struct {
	Interval      uint32
	TargetSpacing uint32
	ClampFactor   int64
	MedianWindow  int
}

// checkDifficulty validates declared against the value nextBits would
// compute from ancestors (closest-first, same convention as
// blocktree.ChainParams.CheckDifficulty), or requires declared to match
// the immediately preceding block's bits outside a retarget boundary.
func (r retargetRule) checkDifficulty(height uint32, declaredBits uint32, ancestorBits []uint32, ancestorTimestamps []uint32) error {
	if height == 0 || height%r.Interval != 0 || len(ancestorBits) == 0 {
		if len(ancestorBits) == 0 {
			return nil
		}
		if declaredBits != ancestorBits[0] {
			return &entities.EntityError{Code: entities.ErrBadWork, Msg: "difficulty changed outside retarget boundary"}
		}
		return nil
	}
	if len(ancestorBits) < int(r.Interval) || len(ancestorTimestamps) < int(r.Interval) {
		// not enough history yet (near genesis); accept as-is
		return nil
	}
	wantBits, err := r.nextBits(ancestorBits[0], ancestorTimestamps[0], ancestorTimestamps[int(r.Interval)-1])
	if err != nil {
		return err
	}
	if declaredBits != wantBits {
		return &entities.EntityError{Code: entities.ErrBadWork, Msg: "declared difficulty does not match retarget"}
	}
	return nil
}

// nextBits computes the retargeted compact difficulty given the prior
// block's bits, the newest timestamp in the window, and the oldest.
func (r retargetRule) nextBits(priorBits uint32, newestTs, oldestTs uint32) (uint32, error) {
	prevTarget, err := entities.CompactToTarget(priorBits)
	if err != nil {
		return 0, err
	}
	actualSpan := int64(newestTs) - int64(oldestTs)
	idealSpan := int64(r.Interval) * int64(r.TargetSpacing)
	minSpan := idealSpan / r.ClampFactor
	maxSpan := idealSpan * r.ClampFactor
	if actualSpan < minSpan {
		actualSpan = minSpan
	}
	if actualSpan > maxSpan {
		actualSpan = maxSpan
	}
	if actualSpan <= 0 {
		actualSpan = idealSpan
	}

	newTarget := new(big.Int).Mul(prevTarget, big.NewInt(actualSpan))
	newTarget.Div(newTarget, big.NewInt(idealSpan))

	maxTarget, _ := entities.CompactToTarget(0x1d00ffff)
	if newTarget.Cmp(maxTarget) > 0 {
		newTarget = maxTarget
	}
	return entities.TargetToCompact(newTarget), nil
}

// checkMedianTime validates that ts is strictly greater than the median of
// the closest MedianWindow ancestor timestamps (Bitcoin's median-past-time
// rule, generalized to both PoW chains per §7's BAD_TIME).
func (r retargetRule) checkMedianTime(ts uint32, ancestorTimestamps []uint32) error {
	if len(ancestorTimestamps) == 0 {
		return nil
	}
	n := r.MedianWindow
	if n > len(ancestorTimestamps) {
		n = len(ancestorTimestamps)
	}
	window := append([]uint32{}, ancestorTimestamps[:n]...)
	for i := 1; i < len(window); i++ {
		for j := i; j > 0 && window[j-1] > window[j]; j-- {
			window[j-1], window[j] = window[j], window[j-1]
		}
	}
	median := window[len(window)/2]
	if ts <= median {
		return &entities.EntityError{Code: entities.ErrBadWork, Msg: "timestamp not greater than median-past-time"}
	}
	return nil
}
