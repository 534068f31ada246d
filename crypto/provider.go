// Package crypto provides the narrow cryptographic surface the core needs:
// the canonical identifier hash and ECDSA/secp256k1 signature verification
// for VbkTx and VbkPopTx.
package crypto

// Provider is the crypto interface consumed by the entities and validation
// packages. It exists as an interface (rather than bare package functions)
// so tests can swap in a provider that records calls or short-circuits
// verification, matching the teacher's CryptoProvider injection pattern.
type Provider interface {
	// SHA256 is the canonical identifier hash (§4.2): ATV/VTB/PopData ids
	// and endorsement ids are SHA256 of a canonical encoding. The VBK
	// short-id (§6) is a truncation of this same digest
	// (entities.VbkHash.Short()), not a separate digest function.
	SHA256(input []byte) [32]byte

	// VerifyECDSASecp256k1 verifies a DER-encoded ECDSA signature over
	// digest32 under the given compressed or uncompressed secp256k1 public
	// key encoding.
	VerifyECDSASecp256k1(pubkey []byte, sig []byte, digest32 [32]byte) bool
}
