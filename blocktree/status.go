// Package blocktree implements the generic block-tree abstraction (§4.3):
// one tree per chain kind, tracking all known blocks, the chain-work
// ordered best chain, and supporting extend, invalidate, ancestor lookup,
// and bulk re-org. The tree is parameterized over the header type H via
// Go generics rather than the source's C++ template, per §9's design note
// that an interface capability set satisfies the spec equally well.
package blocktree

// Status is the bitfield describing a block index's validity state (§3).
type Status uint8

const (
	StatusUnknown       Status = 0
	StatusValidTree     Status = 1 << 0
	StatusValidPayloads Status = 1 << 1
	StatusFailedBlock   Status = 1 << 2
	StatusFailedPop     Status = 1 << 3
	StatusFailedChild   Status = 1 << 4
)

// FailedMask is the set of bits that make a block permanently invalid
// until an explicit Revalidate.
const FailedMask = StatusFailedBlock | StatusFailedPop | StatusFailedChild

// IsFailed reports whether any FAILED_* bit is set.
func (s Status) IsFailed() bool {
	return s&FailedMask != 0
}

// IsValidUpTo reports whether status satisfies upperBound and carries no
// FAILED_MASK bit (§3: "(status & FAILED_MASK) != 0 ⇒ is_valid() returns
// false for any upper bound").
func (s Status) IsValidUpTo(upperBound Status) bool {
	if s.IsFailed() {
		return false
	}
	return s&upperBound == upperBound
}
