package docutrust

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestFingerprintDeterministic(t *testing.T) {
	content := []byte("the quick brown fox")

	a := Fingerprint(content)
	b := Fingerprint(content)
	if a != b {
		t.Fatalf("fingerprint not stable: %s != %s", a, b)
	}
	if len(a) != 66 { // 0x + 64 hex chars
		t.Fatalf("unexpected digest length: %d", len(a))
	}

	flipped := append([]byte{}, content...)
	flipped[0] ^= 0x01
	if Fingerprint(flipped) == a {
		t.Fatalf("single-bit flip produced identical fingerprint")
	}
}

func TestSignAndRecoverFingerprint(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privHex := hexutil.Encode(crypto.FromECDSA(key))
	wantAddr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	fp := Fingerprint([]byte("contract body"))
	sig, err := SignFingerprint(fp, privHex)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := RecoverSigner(fp, sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got != wantAddr {
		t.Fatalf("recovered %s, want %s", got, wantAddr)
	}

	// a signature over different content must not recover the same address
	other, err := RecoverSigner(Fingerprint([]byte("tampered body")), sig)
	if err == nil && other == wantAddr {
		t.Fatalf("tampered content still recovered signer address")
	}
}

func TestPubkeyToAddressEncodings(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey).Hex()

	uncompressed := hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey))
	compressed := hexutil.Encode(crypto.CompressPubkey(&key.PublicKey))

	for _, enc := range []string{uncompressed, compressed} {
		got, err := PubkeyToAddress(enc)
		if err != nil {
			t.Fatalf("derive address from %s: %v", enc, err)
		}
		if got != want {
			t.Fatalf("derived %s, want %s", got, want)
		}
	}

	if _, err := PubkeyToAddress("0xdeadbeef"); err == nil {
		t.Fatalf("expected error for malformed public key")
	}
}

func TestRecoverSignerRejectsGarbage(t *testing.T) {
	if _, err := RecoverSigner(Fingerprint([]byte("x")), "not-hex"); err == nil {
		t.Fatalf("expected error for non-hex signature")
	}
	if _, err := RecoverSigner(Fingerprint([]byte("x")), "0x0102"); err == nil {
		t.Fatalf("expected error for short signature")
	}
}
