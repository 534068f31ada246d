package entities

import "github.com/pop-chain/popcore/wire"

// AltPayloads ties a PopData bundle to the specific ALT block it was
// submitted against (the `addPayloads` container, §4.5).
type AltPayloads struct {
	ContainingAltHash Hash256
	Data              PopData
}

// ToVbkEncoding returns the AltPayloads' canonical encoding.
func (p AltPayloads) ToVbkEncoding() []byte {
	out := append([]byte{}, p.ContainingAltHash[:]...)
	out = wire.WriteVarLenValue(out, p.Data.ToVbkEncoding())
	return out
}

// AltPayloadsFromVbkEncoding parses an AltPayloads produced by
// ToVbkEncoding.
func AltPayloadsFromVbkEncoding(b []byte) (AltPayloads, error) {
	var ap AltPayloads
	c := wire.NewCursor(b)
	if err := readFixed(c, ap.ContainingAltHash[:]); err != nil {
		return ap, err
	}
	dataBytes, err := c.ReadVarLenValue(1 << 24)
	if err != nil {
		return ap, err
	}
	if ap.Data, err = PopDataFromVbkEncoding(dataBytes); err != nil {
		return ap, err
	}
	if c.Remaining() != 0 {
		return ap, entErr(ErrMalformed, "alt_payloads: trailing bytes")
	}
	return ap, nil
}
