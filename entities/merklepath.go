package entities

import "github.com/pop-chain/popcore/wire"

// MerklePath is an authentication path proving that Subject is the leaf at
// Index in a binary Merkle tree with the given root. ATVs and VTBs each
// carry one, proving their transaction is included in the containing
// block's declared merkle root (§4.4.1).
type MerklePath struct {
	Index   uint32
	Subject Hash256
	Layers  []Hash256
}

// ToVbkEncoding serializes: index(BE32) | subject(32) | layer_count(BE32) |
// layers(32 each).
func (m MerklePath) ToVbkEncoding() []byte {
	out := make([]byte, 0, 4+32+4+32*len(m.Layers))
	out = wire.WriteBE32(out, m.Index)
	out = append(out, m.Subject[:]...)
	out = wire.WriteBE32(out, uint32(len(m.Layers)))
	for _, l := range m.Layers {
		out = append(out, l[:]...)
	}
	return out
}

// MerklePathFromVbkEncoding parses a path produced by ToVbkEncoding.
func MerklePathFromVbkEncoding(b []byte) (MerklePath, error) {
	var m MerklePath
	c := wire.NewCursor(b)
	var err error
	if m.Index, err = c.ReadBE32(); err != nil {
		return m, err
	}
	subj, err := c.ReadSlice(32)
	if err != nil {
		return m, err
	}
	copy(m.Subject[:], subj)
	count, err := c.ReadBE32()
	if err != nil {
		return m, err
	}
	m.Layers = make([]Hash256, count)
	for i := range m.Layers {
		l, err := c.ReadSlice(32)
		if err != nil {
			return m, err
		}
		copy(m.Layers[i][:], l)
	}
	if c.Remaining() != 0 {
		return m, entErr(ErrMalformed, "merkle_path: trailing bytes")
	}
	return m, nil
}

// Verify recomputes the root along the path and compares it to root,
// domain-separating left/right concatenation by the bit of idx at each
// layer (idx halves every layer, matching a standard binary Merkle tree).
func (m MerklePath) Verify(root Hash256, p sha256Hasher) bool {
	cur := m.Subject
	idx := m.Index
	for _, sibling := range m.Layers {
		buf := make([]byte, 0, 64)
		if idx%2 == 0 {
			buf = append(buf, cur[:]...)
			buf = append(buf, sibling[:]...)
		} else {
			buf = append(buf, sibling[:]...)
			buf = append(buf, cur[:]...)
		}
		cur = p.SHA256(buf)
		idx /= 2
	}
	return cur == root
}
