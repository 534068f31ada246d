package entities

import "github.com/pop-chain/popcore/wire"

// EndorsementID is the 32-byte identifier of an endorsement record,
// computed as H(tx_id ‖ endorsed_hash ‖ block_of_proof_hash ‖
// containing_hash) per §3.
type EndorsementID Hash256

// VbkEndorsement binds a VBK endorsed block to the VBK block containing
// its proof-of-proof transaction, via a BTC block of proof (§3).
type VbkEndorsement struct {
	ID               EndorsementID
	TxID             Hash256
	EndorsedHash     VbkHash // VBK block being endorsed into BTC
	ContainingHash   VbkHash // VBK block the VTB's tx is mined into
	BlockOfProofHash Hash256 // BTC block proving the endorsement
	PayoutInfo       []byte
}

// ComputeVbkEndorsementID derives the endorsement id per §3's formula.
func ComputeVbkEndorsementID(p sha256Hasher, txID Hash256, endorsedHash, containingHash VbkHash, blockOfProofHash Hash256) EndorsementID {
	buf := make([]byte, 0, 32+24+24+32)
	buf = append(buf, txID[:]...)
	buf = append(buf, endorsedHash[:]...)
	buf = append(buf, blockOfProofHash[:]...)
	buf = append(buf, containingHash[:]...)
	return EndorsementID(p.SHA256(buf))
}

// AltEndorsement binds an ALT endorsed block to the VBK block containing
// the ATV that published it (§3).
type AltEndorsement struct {
	ID             EndorsementID
	TxID           Hash256
	EndorsedHash   Hash256 // ALT block being endorsed
	ContainingHash VbkHash // VBK block the ATV's tx is mined into
	PayoutInfo     []byte
}

// ComputeAltEndorsementID mirrors ComputeVbkEndorsementID's formula with
// the ALT endorsed hash and no block-of-proof (ALT endorsements prove
// into VBK directly, not via a separate proof chain).
func ComputeAltEndorsementID(p sha256Hasher, txID Hash256, endorsedHash Hash256, containingHash VbkHash) EndorsementID {
	buf := make([]byte, 0, 32+32+24)
	buf = append(buf, txID[:]...)
	buf = append(buf, endorsedHash[:]...)
	buf = append(buf, containingHash[:]...)
	return EndorsementID(p.SHA256(buf))
}

func (e VbkEndorsement) ToVbkEncoding() []byte {
	out := make([]byte, 0, 32+32+24+24+32)
	out = append(out, e.ID[:]...)
	out = append(out, e.TxID[:]...)
	out = append(out, e.EndorsedHash[:]...)
	out = append(out, e.ContainingHash[:]...)
	out = append(out, e.BlockOfProofHash[:]...)
	out = wire.WriteVarLenValue(out, e.PayoutInfo)
	return out
}

func VbkEndorsementFromVbkEncoding(b []byte) (VbkEndorsement, error) {
	var e VbkEndorsement
	c := wire.NewCursor(b)
	if err := readFixed(c, e.ID[:]); err != nil {
		return e, err
	}
	if err := readFixed(c, e.TxID[:]); err != nil {
		return e, err
	}
	if err := readFixed(c, e.EndorsedHash[:]); err != nil {
		return e, err
	}
	if err := readFixed(c, e.ContainingHash[:]); err != nil {
		return e, err
	}
	if err := readFixed(c, e.BlockOfProofHash[:]); err != nil {
		return e, err
	}
	var err error
	if e.PayoutInfo, err = c.ReadVarLenValue(maxPayoutInfoLen); err != nil {
		return e, err
	}
	if c.Remaining() != 0 {
		return e, entErr(ErrMalformed, "vbk_endorsement: trailing bytes")
	}
	return e, nil
}

func (e AltEndorsement) ToVbkEncoding() []byte {
	out := make([]byte, 0, 32+32+32+24)
	out = append(out, e.ID[:]...)
	out = append(out, e.TxID[:]...)
	out = append(out, e.EndorsedHash[:]...)
	out = append(out, e.ContainingHash[:]...)
	out = wire.WriteVarLenValue(out, e.PayoutInfo)
	return out
}

func AltEndorsementFromVbkEncoding(b []byte) (AltEndorsement, error) {
	var e AltEndorsement
	c := wire.NewCursor(b)
	if err := readFixed(c, e.ID[:]); err != nil {
		return e, err
	}
	if err := readFixed(c, e.TxID[:]); err != nil {
		return e, err
	}
	if err := readFixed(c, e.EndorsedHash[:]); err != nil {
		return e, err
	}
	if err := readFixed(c, e.ContainingHash[:]); err != nil {
		return e, err
	}
	var err error
	if e.PayoutInfo, err = c.ReadVarLenValue(maxPayoutInfoLen); err != nil {
		return e, err
	}
	if c.Remaining() != 0 {
		return e, entErr(ErrMalformed, "alt_endorsement: trailing bytes")
	}
	return e, nil
}

// readFixed reads exactly len(dst) bytes into dst.
func readFixed(c *wire.Cursor, dst []byte) error {
	b, err := c.ReadSlice(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}
