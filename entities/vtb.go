package entities

import "github.com/pop-chain/popcore/wire"

// VTB (Veriblock-to-Bitcoin publication) is a VbkPopTx with a Merkle path
// proving a VBK block is endorsed in BTC (§GLOSSARY). Context ships extra
// VBK ancestors needed to connect ContainingBlock to the known VBK tip,
// mirroring ATV.Context (original_source vtb.hpp, SPEC_FULL.md §C.3).
type VTB struct {
	Version         uint32
	Transaction     VbkPopTx
	MerklePath      MerklePath
	ContainingBlock VbkBlockHeader
	Context         []VbkBlockHeader
}

// ToVbkEncoding returns the VTB's canonical encoding; VTB.ID is the
// SHA-256 of this value (§4.2, §6).
func (v VTB) ToVbkEncoding() []byte {
	out := wire.WriteBE32(nil, v.Version)
	out = wire.WriteVarLenValue(out, v.Transaction.ToVbkEncoding())
	out = wire.WriteVarLenValue(out, v.MerklePath.ToVbkEncoding())
	out = wire.WriteVarLenValue(out, v.ContainingBlock.ToVbkEncoding())
	out = wire.WriteBE32(out, uint32(len(v.Context)))
	for _, h := range v.Context {
		out = wire.WriteVarLenValue(out, h.ToVbkEncoding())
	}
	return out
}

// ID returns SHA256(ToVbkEncoding()), the VTB's identifier.
func (v VTB) ID(p sha256Hasher) Hash256 {
	return p.SHA256(v.ToVbkEncoding())
}

// VTBFromVbkEncoding parses a VTB produced by ToVbkEncoding.
func VTBFromVbkEncoding(b []byte) (VTB, error) {
	var v VTB
	c := wire.NewCursor(b)
	var err error
	if v.Version, err = c.ReadBE32(); err != nil {
		return v, err
	}
	txBytes, err := c.ReadVarLenValue(maxNestedEntityLen)
	if err != nil {
		return v, err
	}
	if v.Transaction, err = VbkPopTxFromVbkEncoding(txBytes); err != nil {
		return v, err
	}
	pathBytes, err := c.ReadVarLenValue(maxNestedEntityLen)
	if err != nil {
		return v, err
	}
	if v.MerklePath, err = MerklePathFromVbkEncoding(pathBytes); err != nil {
		return v, err
	}
	containingBytes, err := c.ReadVarLenValue(maxNestedEntityLen)
	if err != nil {
		return v, err
	}
	if v.ContainingBlock, err = VbkBlockHeaderFromVbkEncoding(containingBytes); err != nil {
		return v, err
	}
	ctxCount, err := c.ReadBE32()
	if err != nil {
		return v, err
	}
	if ctxCount > maxVbkContextBlocks {
		return v, entErr(ErrMalformed, "vtb: context too large")
	}
	v.Context = make([]VbkBlockHeader, ctxCount)
	for i := range v.Context {
		hb, err := c.ReadVarLenValue(maxNestedEntityLen)
		if err != nil {
			return v, err
		}
		if v.Context[i], err = VbkBlockHeaderFromVbkEncoding(hb); err != nil {
			return v, err
		}
	}
	if c.Remaining() != 0 {
		return v, entErr(ErrMalformed, "vtb: trailing bytes")
	}
	return v, nil
}
