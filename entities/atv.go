package entities

import "github.com/pop-chain/popcore/wire"

const maxVbkContextBlocks = 256

// ATV (Altchain-to-Veriblock proof) is a VbkTx with a Merkle path and a
// containing VBK block, proving an ALT block was endorsed in VBK
// (§GLOSSARY). Context ships extra VBK ancestors the ATV's ContainingBlock
// depends on that the VBK tree may not know yet (§4.5 step 2,
// original_source vtb.hpp §C.3 of SPEC_FULL.md).
type ATV struct {
	Version        uint32
	Transaction    VbkTx
	MerklePath     MerklePath
	ContainingBlock VbkBlockHeader
	Context        []VbkBlockHeader
}

func (a ATV) toVbkEncodingBody() []byte {
	out := wire.WriteBE32(nil, a.Version)
	out = wire.WriteVarLenValue(out, a.Transaction.ToVbkEncoding())
	out = wire.WriteVarLenValue(out, a.MerklePath.ToVbkEncoding())
	out = wire.WriteVarLenValue(out, a.ContainingBlock.ToVbkEncoding())
	out = wire.WriteBE32(out, uint32(len(a.Context)))
	for _, h := range a.Context {
		out = wire.WriteVarLenValue(out, h.ToVbkEncoding())
	}
	return out
}

// ToVbkEncoding returns the ATV's canonical encoding; ATV.ID is the
// SHA-256 of this value (§4.2, §6).
func (a ATV) ToVbkEncoding() []byte {
	return a.toVbkEncodingBody()
}

// ID returns SHA256(ToVbkEncoding()), the ATV's identifier (§6). Equality
// between two ATVs is by ID, not structural comparison (§4.2).
func (a ATV) ID(p sha256Hasher) Hash256 {
	return p.SHA256(a.ToVbkEncoding())
}

// ATVFromVbkEncoding parses an ATV produced by ToVbkEncoding.
func ATVFromVbkEncoding(b []byte) (ATV, error) {
	var a ATV
	c := wire.NewCursor(b)
	var err error
	if a.Version, err = c.ReadBE32(); err != nil {
		return a, err
	}
	txBytes, err := c.ReadVarLenValue(maxNestedEntityLen)
	if err != nil {
		return a, err
	}
	if a.Transaction, err = VbkTxFromVbkEncoding(txBytes); err != nil {
		return a, err
	}
	pathBytes, err := c.ReadVarLenValue(maxNestedEntityLen)
	if err != nil {
		return a, err
	}
	if a.MerklePath, err = MerklePathFromVbkEncoding(pathBytes); err != nil {
		return a, err
	}
	containingBytes, err := c.ReadVarLenValue(maxNestedEntityLen)
	if err != nil {
		return a, err
	}
	if a.ContainingBlock, err = VbkBlockHeaderFromVbkEncoding(containingBytes); err != nil {
		return a, err
	}
	ctxCount, err := c.ReadBE32()
	if err != nil {
		return a, err
	}
	if ctxCount > maxVbkContextBlocks {
		return a, entErr(ErrMalformed, "atv: context too large")
	}
	a.Context = make([]VbkBlockHeader, ctxCount)
	for i := range a.Context {
		hb, err := c.ReadVarLenValue(maxNestedEntityLen)
		if err != nil {
			return a, err
		}
		if a.Context[i], err = VbkBlockHeaderFromVbkEncoding(hb); err != nil {
			return a, err
		}
	}
	if c.Remaining() != 0 {
		return a, entErr(ErrMalformed, "atv: trailing bytes")
	}
	return a, nil
}
