package validation

import (
	"github.com/pop-chain/popcore/crypto"
	"github.com/pop-chain/popcore/entities"
)

// CheckVbkTxSignature verifies a VbkTx's ECDSA/secp256k1 signature over its
// signed portion (§4.4 structural check 1).
func CheckVbkTxSignature(tx entities.VbkTx, p crypto.Provider) error {
	digest := tx.SigningDigest(p)
	if !p.VerifyECDSASecp256k1(tx.PublicKey, tx.Signature, digest) {
		return New(digest, KindBadSignature, "vbk_tx: signature does not verify")
	}
	return nil
}

// CheckVbkPopTxSignature verifies a VbkPopTx's signature the same way.
func CheckVbkPopTxSignature(tx entities.VbkPopTx, p crypto.Provider) error {
	digest := tx.SigningDigest(p)
	if !p.VerifyECDSASecp256k1(tx.PublicKey, tx.Signature, digest) {
		return New(digest, KindBadSignature, "vbk_pop_tx: signature does not verify")
	}
	return nil
}

// CheckMerklePath verifies that path authenticates into root.
func CheckMerklePath(path entities.MerklePath, root entities.Hash256, p crypto.Provider) error {
	if !path.Verify(root, p) {
		return New(root, KindBadMerkle, "merkle path does not authenticate into declared root")
	}
	return nil
}

// CheckBlockOfProofWork verifies a VbkPopTx's block_of_proof satisfies its
// own declared proof-of-work target (§4.4 structural check 1's final
// clause).
func CheckBlockOfProofWork(h entities.BtcBlockHeader, p crypto.Provider) error {
	target, err := h.Target()
	if err != nil {
		return New(h.Hash(p), KindBadWork, err.Error())
	}
	if err := entities.CheckProofOfWork(h.Hash(p), target); err != nil {
		return New(h.Hash(p), KindBadWork, err.Error())
	}
	return nil
}

// CheckATVStructure runs every stateless structural check an ATV requires:
// its VbkTx signature, and its Merkle path against ContainingBlock's
// declared root.
func CheckATVStructure(atv entities.ATV, p crypto.Provider) error {
	if err := CheckVbkTxSignature(atv.Transaction, p); err != nil {
		return err
	}
	root := Hash256FromMerkleRoot(atv.ContainingBlock.MerkleRoot)
	if err := CheckMerklePath(atv.MerklePath, root, p); err != nil {
		return err
	}
	return nil
}

// CheckVTBStructure runs every stateless structural check a VTB requires:
// its VbkPopTx signature, its block_of_proof's own proof-of-work, and its
// Merkle path against ContainingBlock's declared root.
func CheckVTBStructure(vtb entities.VTB, p crypto.Provider) error {
	if err := CheckVbkPopTxSignature(vtb.Transaction, p); err != nil {
		return err
	}
	if err := CheckBlockOfProofWork(vtb.Transaction.BlockOfProof, p); err != nil {
		return err
	}
	root := Hash256FromMerkleRoot(vtb.ContainingBlock.MerkleRoot)
	if err := CheckMerklePath(vtb.MerklePath, root, p); err != nil {
		return err
	}
	return nil
}

// Hash256FromMerkleRoot widens a VBK header's 16-byte merkle root into the
// 32-byte width MerklePath.Verify compares against, zero-extending the
// remaining bytes (VBK's merkle root is intentionally narrower than a full
// Hash256; the path's own subject/layers are still full 32-byte digests).
func Hash256FromMerkleRoot(root [16]byte) entities.Hash256 {
	var out entities.Hash256
	copy(out[:16], root[:])
	return out
}
