// Package validation implements the payload validator's stateless
// structural checks (§4.4), runnable on a payload alone, and the typed
// State error that both these checks and package alttree's contextual
// checks against the trees return. Structural
// failures are recoverable only by resubmitting a corrected payload;
// contextual failures are recoverable once the missing ancestors arrive.
package validation

import "fmt"

// Kind identifies an error's place in the §7 taxonomy.
type Kind string

const (
	KindReadOOB                 Kind = "READ_OOB"
	KindLenOverflow              Kind = "LEN_OVERFLOW"
	KindBadSignature             Kind = "BAD_SIGNATURE"
	KindBadMerkle                Kind = "BAD_MERKLE"
	KindBadWork                  Kind = "BAD_WORK"
	KindDuplicateID               Kind = "DUPLICATE_ID"
	KindNoParent                 Kind = "NO_PARENT"
	KindUnknownContainingBlock     Kind = "UNKNOWN_CONTAINING_BLOCK"
	KindUnknownBlockOfProof        Kind = "UNKNOWN_BLOCK_OF_PROOF"
	KindBadDifficulty             Kind = "BAD_DIFFICULTY"
	KindBadTime                   Kind = "BAD_TIME"
	KindBlockFailedPop             Kind = "BLOCK_FAILED_POP"
	KindBlockFailedChild           Kind = "BLOCK_FAILED_CHILD"
	KindBlockFailedBlock           Kind = "BLOCK_FAILED_BLOCK"
)

// State is the ValidationState every structural/contextual failure
// carries: the offending block or payload hash, the error kind, and a
// short human message (§7's propagation policy).
type State struct {
	Hash    [32]byte
	Kind    Kind
	Message string
}

func (s *State) Error() string {
	return fmt.Sprintf("%s: %s (hash=%x)", s.Kind, s.Message, s.Hash)
}

// New constructs a State, the typed error every check in this package
// returns on failure.
func New(hash [32]byte, kind Kind, message string) error {
	return &State{Hash: hash, Kind: kind, Message: message}
}

// IsContextual reports whether kind belongs to §7's Contextual class
// (recoverable once the missing ancestor arrives) as opposed to Structural
// (never recoverable without a corrected payload).
func IsContextual(kind Kind) bool {
	switch kind {
	case KindNoParent, KindUnknownContainingBlock, KindUnknownBlockOfProof, KindBadDifficulty, KindBadTime:
		return true
	default:
		return false
	}
}
