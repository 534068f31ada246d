package entities

import "github.com/pop-chain/popcore/wire"

const (
	maxBtcContextBlocks = 256
	maxNestedEntityLen  = 8192
)

// VbkPopTx is the proof-of-proof transaction embedded in a VTB: it commits
// a VBK block's header into a Bitcoin transaction, mined into BlockOfProof,
// proving that VBK block was published in BTC (§4.4.1, §GLOSSARY "Block of
// proof"). BlockOfProofContext ships extra BTC ancestors so the VBK tree's
// temp-extension of the BTC tree (§4.5 step 2) can connect BlockOfProof to
// a block the BTC tree already knows, even across a gap.
//
// Every nested entity is wrapped in the §4.1 length-prefixed value format
// rather than relying on the reader knowing its fixed width in advance —
// "no framing beyond explicit length-prefixes" (§4.2).
type VbkPopTx struct {
	EndorsedVbkBlock    VbkBlockHeader
	BlockOfProof        BtcBlockHeader
	BlockOfProofContext []BtcBlockHeader
	MerklePath          MerklePath
	PublicKey           []byte
	Signature           []byte
}

func (tx VbkPopTx) signedPortion() []byte {
	out := wire.WriteVarLenValue(nil, tx.EndorsedVbkBlock.ToVbkEncoding())
	out = wire.WriteVarLenValue(out, tx.BlockOfProof.ToVbkEncoding())
	out = wire.WriteBE32(out, uint32(len(tx.BlockOfProofContext)))
	for _, h := range tx.BlockOfProofContext {
		out = wire.WriteVarLenValue(out, h.ToVbkEncoding())
	}
	out = wire.WriteVarLenValue(out, tx.MerklePath.ToVbkEncoding())
	out = wire.WriteVarLenValue(out, tx.PublicKey)
	return out
}

// ToVbkEncoding serializes the full transaction including its signature.
func (tx VbkPopTx) ToVbkEncoding() []byte {
	out := tx.signedPortion()
	out = wire.WriteVarLenValue(out, tx.Signature)
	return out
}

// VbkPopTxFromVbkEncoding parses a transaction produced by ToVbkEncoding.
func VbkPopTxFromVbkEncoding(b []byte) (VbkPopTx, error) {
	var tx VbkPopTx
	c := wire.NewCursor(b)

	endorsedBytes, err := c.ReadVarLenValue(maxNestedEntityLen)
	if err != nil {
		return tx, err
	}
	if tx.EndorsedVbkBlock, err = VbkBlockHeaderFromVbkEncoding(endorsedBytes); err != nil {
		return tx, err
	}
	proofBytes, err := c.ReadVarLenValue(maxNestedEntityLen)
	if err != nil {
		return tx, err
	}
	if tx.BlockOfProof, err = BtcBlockHeaderFromVbkEncoding(proofBytes); err != nil {
		return tx, err
	}
	ctxCount, err := c.ReadBE32()
	if err != nil {
		return tx, err
	}
	if ctxCount > maxBtcContextBlocks {
		return tx, entErr(ErrMalformed, "vbk_pop_tx: block_of_proof_context too large")
	}
	tx.BlockOfProofContext = make([]BtcBlockHeader, ctxCount)
	for i := range tx.BlockOfProofContext {
		hb, err := c.ReadVarLenValue(maxNestedEntityLen)
		if err != nil {
			return tx, err
		}
		if tx.BlockOfProofContext[i], err = BtcBlockHeaderFromVbkEncoding(hb); err != nil {
			return tx, err
		}
	}

	pathBytes, err := c.ReadVarLenValue(maxNestedEntityLen)
	if err != nil {
		return tx, err
	}
	if tx.MerklePath, err = MerklePathFromVbkEncoding(pathBytes); err != nil {
		return tx, err
	}

	if tx.PublicKey, err = c.ReadVarLenValue(maxPublicKeyLen); err != nil {
		return tx, err
	}
	if tx.Signature, err = c.ReadVarLenValue(maxSignatureLen); err != nil {
		return tx, err
	}
	if c.Remaining() != 0 {
		return tx, entErr(ErrMalformed, "vbk_pop_tx: trailing bytes")
	}
	return tx, nil
}

// SigningDigest returns the digest the transaction's signature is over.
func (tx VbkPopTx) SigningDigest(p sha256Hasher) Hash256 {
	return p.SHA256(tx.signedPortion())
}

// TxID is the transaction identifier: SHA-256 of the signed portion.
func (tx VbkPopTx) TxID(p sha256Hasher) Hash256 {
	return p.SHA256(tx.signedPortion())
}
