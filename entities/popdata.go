package entities

import "github.com/pop-chain/popcore/wire"

const (
	maxPopDataVtbs    = 1024
	maxPopDataAtvs    = 1024
	maxPopDataContext = 1024
)

// PopData is the bundle of context blocks, VTBs, and ATVs delivered with an
// ALT block (§GLOSSARY). Context holds VBK keystone headers shipped
// alongside the bundle that are not already referenced by any individual
// ATV/VTB's own Context.
type PopData struct {
	Version uint32
	Context []VbkBlockHeader
	Vtbs    []VTB
	Atvs    []ATV
}

// ToVbkEncoding returns the PopData's canonical encoding.
func (d PopData) ToVbkEncoding() []byte {
	out := wire.WriteBE32(nil, d.Version)
	out = wire.WriteBE32(out, uint32(len(d.Context)))
	for _, h := range d.Context {
		out = wire.WriteVarLenValue(out, h.ToVbkEncoding())
	}
	out = wire.WriteBE32(out, uint32(len(d.Vtbs)))
	for _, v := range d.Vtbs {
		out = wire.WriteVarLenValue(out, v.ToVbkEncoding())
	}
	out = wire.WriteBE32(out, uint32(len(d.Atvs)))
	for _, a := range d.Atvs {
		out = wire.WriteVarLenValue(out, a.ToVbkEncoding())
	}
	return out
}

// ID returns SHA256(ToVbkEncoding()).
func (d PopData) ID(p sha256Hasher) Hash256 {
	return p.SHA256(d.ToVbkEncoding())
}

// PopDataFromVbkEncoding parses a PopData produced by ToVbkEncoding.
func PopDataFromVbkEncoding(b []byte) (PopData, error) {
	var d PopData
	c := wire.NewCursor(b)
	var err error
	if d.Version, err = c.ReadBE32(); err != nil {
		return d, err
	}

	ctxCount, err := c.ReadBE32()
	if err != nil {
		return d, err
	}
	if ctxCount > maxPopDataContext {
		return d, entErr(ErrMalformed, "pop_data: context too large")
	}
	d.Context = make([]VbkBlockHeader, ctxCount)
	for i := range d.Context {
		hb, err := c.ReadVarLenValue(maxNestedEntityLen)
		if err != nil {
			return d, err
		}
		if d.Context[i], err = VbkBlockHeaderFromVbkEncoding(hb); err != nil {
			return d, err
		}
	}

	vtbCount, err := c.ReadBE32()
	if err != nil {
		return d, err
	}
	if vtbCount > maxPopDataVtbs {
		return d, entErr(ErrMalformed, "pop_data: vtbs too large")
	}
	d.Vtbs = make([]VTB, vtbCount)
	for i := range d.Vtbs {
		vb, err := c.ReadVarLenValue(maxNestedEntityLen * 4)
		if err != nil {
			return d, err
		}
		if d.Vtbs[i], err = VTBFromVbkEncoding(vb); err != nil {
			return d, err
		}
	}

	atvCount, err := c.ReadBE32()
	if err != nil {
		return d, err
	}
	if atvCount > maxPopDataAtvs {
		return d, entErr(ErrMalformed, "pop_data: atvs too large")
	}
	d.Atvs = make([]ATV, atvCount)
	for i := range d.Atvs {
		ab, err := c.ReadVarLenValue(maxNestedEntityLen * 4)
		if err != nil {
			return d, err
		}
		if d.Atvs[i], err = ATVFromVbkEncoding(ab); err != nil {
			return d, err
		}
	}

	if c.Remaining() != 0 {
		return d, entErr(ErrMalformed, "pop_data: trailing bytes")
	}
	return d, nil
}
