package crypto

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// StdProvider is the default Provider backed by the standard library's
// SHA-256 and decred's pure-Go secp256k1.
type StdProvider struct{}

func (StdProvider) SHA256(input []byte) [32]byte {
	return sha256.Sum256(input)
}

func (StdProvider) VerifyECDSASecp256k1(pubkey []byte, sig []byte, digest32 [32]byte) bool {
	pk, err := secp256k1.ParsePubKey(pubkey)
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(digest32[:], pk)
}
