package crypto

import (
	"crypto/sha256"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

func TestStdProviderSHA256(t *testing.T) {
	p := StdProvider{}
	want := sha256.Sum256([]byte("hello"))
	if got := p.SHA256([]byte("hello")); got != want {
		t.Fatalf("SHA256 mismatch: got %x want %x", got, want)
	}
}

func TestStdProviderVerifyECDSASecp256k1(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	digest := sha256.Sum256([]byte("payload"))
	sig := ecdsa.Sign(priv, digest[:])

	p := StdProvider{}
	pubBytes := priv.PubKey().SerializeCompressed()
	if !p.VerifyECDSASecp256k1(pubBytes, sig.Serialize(), digest) {
		t.Fatalf("expected valid signature to verify")
	}

	tampered := digest
	tampered[0] ^= 0xff
	if p.VerifyECDSASecp256k1(pubBytes, sig.Serialize(), tampered) {
		t.Fatalf("expected tampered digest to fail verification")
	}
}
