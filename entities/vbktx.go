package entities

import "github.com/pop-chain/popcore/wire"

const (
	maxSourceAddressLen = 128
	maxAltHeaderLen     = 4096
	maxPayoutInfoLen    = 256
	maxContextInfoLen   = 4096
	maxSignatureLen     = 128
	maxPublicKeyLen     = 128
)

// PublicationData carries the ALT-chain-specific payload a VbkTx publishes
// into VBK. The core never interprets Header or ContextInfo; they are
// opaque bytes the embedder supplied when constructing the ATV (§1 "it
// treats ALT blocks as opaque headers identified by hash and height").
type PublicationData struct {
	Identifier  uint32
	Header      []byte
	PayoutInfo  []byte
	ContextInfo []byte
}

func (d PublicationData) toVbkEncoding(dst []byte) []byte {
	dst = wire.WriteBE32(dst, d.Identifier)
	dst = wire.WriteVarLenValue(dst, d.Header)
	dst = wire.WriteVarLenValue(dst, d.PayoutInfo)
	dst = wire.WriteVarLenValue(dst, d.ContextInfo)
	return dst
}

func publicationDataFromCursor(c *wire.Cursor) (PublicationData, error) {
	var d PublicationData
	var err error
	if d.Identifier, err = c.ReadBE32(); err != nil {
		return d, err
	}
	if d.Header, err = c.ReadVarLenValue(maxAltHeaderLen); err != nil {
		return d, err
	}
	if d.PayoutInfo, err = c.ReadVarLenValue(maxPayoutInfoLen); err != nil {
		return d, err
	}
	if d.ContextInfo, err = c.ReadVarLenValue(maxContextInfoLen); err != nil {
		return d, err
	}
	return d, nil
}

// VbkTx is the publication transaction embedded in an ATV: it commits an
// ALT block's opaque header into VBK, signed by the publisher's
// secp256k1 key (§4.4.1).
type VbkTx struct {
	SourceAddress   []byte
	PublicationData PublicationData
	PublicKey       []byte
	Signature       []byte
}

// signedPortion returns the bytes the signature covers: everything except
// the signature itself, mirroring the teacher's TxNoWitnessBytes pattern
// of excluding the witness/signature section from the signing preimage.
func (tx VbkTx) signedPortion() []byte {
	out := wire.WriteVarLenValue(nil, tx.SourceAddress)
	out = tx.PublicationData.toVbkEncoding(out)
	out = wire.WriteVarLenValue(out, tx.PublicKey)
	return out
}

// ToVbkEncoding serializes the full transaction including its signature.
func (tx VbkTx) ToVbkEncoding() []byte {
	out := tx.signedPortion()
	out = wire.WriteVarLenValue(out, tx.Signature)
	return out
}

// VbkTxFromVbkEncoding parses a transaction produced by ToVbkEncoding.
func VbkTxFromVbkEncoding(b []byte) (VbkTx, error) {
	var tx VbkTx
	c := wire.NewCursor(b)
	var err error
	if tx.SourceAddress, err = c.ReadVarLenValue(maxSourceAddressLen); err != nil {
		return tx, err
	}
	if tx.PublicationData, err = publicationDataFromCursor(c); err != nil {
		return tx, err
	}
	if tx.PublicKey, err = c.ReadVarLenValue(maxPublicKeyLen); err != nil {
		return tx, err
	}
	if tx.Signature, err = c.ReadVarLenValue(maxSignatureLen); err != nil {
		return tx, err
	}
	if c.Remaining() != 0 {
		return tx, entErr(ErrMalformed, "vbk_tx: trailing bytes")
	}
	return tx, nil
}

// SigningDigest returns the digest the transaction's signature is over.
func (tx VbkTx) SigningDigest(p sha256Hasher) Hash256 {
	return p.SHA256(tx.signedPortion())
}

// TxID is the transaction identifier: SHA-256 of the signed portion
// (stable regardless of signature malleability).
func (tx VbkTx) TxID(p sha256Hasher) Hash256 {
	return p.SHA256(tx.signedPortion())
}
