package entities_test

import (
	"testing"

	"github.com/pop-chain/popcore/crypto"
	"github.com/pop-chain/popcore/entities"
)

var p = crypto.StdProvider{}

func sampleVbkBlock(height uint32) entities.VbkBlockHeader {
	return entities.VbkBlockHeader{
		Height:     height,
		Version:    2,
		Timestamp:  1700000000 + height,
		Difficulty: 0x1e00ffff,
		Nonce:      height * 7,
	}
}

func sampleBtcBlock() entities.BtcBlockHeader {
	return entities.BtcBlockHeader{
		Version:   1,
		Timestamp: 1700000000,
		Bits:      0x1d00ffff,
		Nonce:     2083236893,
	}
}

func TestBtcBlockHeaderRoundTrip(t *testing.T) {
	h := sampleBtcBlock()
	h.PreviousHash[0] = 0xAB
	h.MerkleRoot[0] = 0xCD

	enc := h.ToVbkEncoding()
	got, err := entities.BtcBlockHeaderFromVbkEncoding(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != h {
		t.Fatalf("round-trip mismatch: got %+v want %+v", got, h)
	}
	if got.Hash(p) != h.Hash(p) {
		t.Fatalf("hash mismatch after round-trip")
	}
}

func TestVbkBlockHeaderRoundTrip(t *testing.T) {
	h := sampleVbkBlock(42)
	h.PreviousBlock[0] = 1
	h.PreviousKeystone[0] = 2

	enc := h.ToVbkEncoding()
	got, err := entities.VbkBlockHeaderFromVbkEncoding(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != h {
		t.Fatalf("round-trip mismatch: got %+v want %+v", got, h)
	}
}

func TestMerklePathRoundTripAndVerify(t *testing.T) {
	subject := p.SHA256([]byte("leaf"))
	sibling := p.SHA256([]byte("sibling"))
	root := p.SHA256(append(append([]byte{}, subject[:]...), sibling[:]...))

	path := entities.MerklePath{Index: 0, Subject: subject, Layers: []entities.Hash256{sibling}}
	enc := path.ToVbkEncoding()
	got, err := entities.MerklePathFromVbkEncoding(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Verify(root, p) {
		t.Fatalf("expected merkle path to verify")
	}
}

func TestPopDataRoundTrip(t *testing.T) {
	atv := entities.ATV{
		Version: 1,
		Transaction: entities.VbkTx{
			SourceAddress: []byte("addr"),
			PublicationData: entities.PublicationData{
				Identifier: 7,
				Header:     []byte("alt-header-bytes"),
			},
			PublicKey: []byte("pubkey"),
			Signature: []byte("sig"),
		},
		MerklePath:      entities.MerklePath{Index: 1},
		ContainingBlock: sampleVbkBlock(42),
	}
	vtb := entities.VTB{
		Version: 1,
		Transaction: entities.VbkPopTx{
			EndorsedVbkBlock: sampleVbkBlock(25),
			BlockOfProof:     sampleBtcBlock(),
			PublicKey:        []byte("pubkey"),
			Signature:        []byte("sig"),
		},
		ContainingBlock: sampleVbkBlock(39),
	}

	pop := entities.PopData{Version: 1, Vtbs: []entities.VTB{vtb}, Atvs: []entities.ATV{atv}}
	enc := pop.ToVbkEncoding()
	got, err := entities.PopDataFromVbkEncoding(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID(p) != pop.ID(p) {
		t.Fatalf("id mismatch after round-trip")
	}
	if len(got.Vtbs) != 1 || len(got.Atvs) != 1 {
		t.Fatalf("unexpected shape after round-trip: %+v", got)
	}
	if got.Atvs[0].ID(p) != atv.ID(p) {
		t.Fatalf("atv id mismatch")
	}
	if got.Vtbs[0].ID(p) != vtb.ID(p) {
		t.Fatalf("vtb id mismatch")
	}
}

func TestPopDataEmptyRoundTrip(t *testing.T) {
	pop := entities.PopData{Version: 1}
	got, err := entities.PopDataFromVbkEncoding(pop.ToVbkEncoding())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID(p) != pop.ID(p) {
		t.Fatalf("id mismatch for empty pop data")
	}
}

func TestCompactTargetRoundTrip(t *testing.T) {
	target, err := entities.CompactToTarget(0x1d00ffff)
	if err != nil {
		t.Fatalf("CompactToTarget: %v", err)
	}
	back := entities.TargetToCompact(target)
	if back != 0x1d00ffff {
		t.Fatalf("compact round-trip: got %x want %x", back, 0x1d00ffff)
	}
}
