package docutrust

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Fingerprint derives the content fingerprint a signature attests to:
// the 0x-prefixed keccak256 digest of the canonical document bytes.
func Fingerprint(content []byte) string {
	return crypto.Keccak256Hash(content).Hex()
}

// SignFingerprint signs a document fingerprint with a hex-encoded secp256k1
// private key. The fingerprint string itself is the signed message, wrapped
// in the standard personal-message envelope, so signatures interoperate with
// wallet signers.
func SignFingerprint(fingerprint string, privatekey string) (string, error) {
	sig, err := SignBytes([]byte(fingerprint), privatekey)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

// RecoverSigner recovers the address that produced signature over
// fingerprint. Returns an error when the signature cannot be parsed.
func RecoverSigner(fingerprint string, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("invalid signature encoding: %v", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("invalid signature length: %d", len(sig))
	}
	// wallet signers emit V as 27/28, go-ethereum expects 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte{}, sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}
	digest := accounts.TextHash([]byte(fingerprint))
	pubkey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return "", fmt.Errorf("signature recovery failed: %v", err)
	}
	return crypto.PubkeyToAddress(*pubkey).Hex(), nil
}

// PubkeyToAddress derives the address of a registered public key. Accepts
// 33-byte compressed and 65-byte uncompressed hex encodings.
func PubkeyToAddress(publicKey string) (string, error) {
	raw, err := hexutil.Decode(ensureHexPrefix(publicKey))
	if err != nil {
		return "", fmt.Errorf("invalid public key encoding: %v", err)
	}
	switch len(raw) {
	case 33:
		pubkey, err := crypto.DecompressPubkey(raw)
		if err != nil {
			return "", fmt.Errorf("invalid compressed public key: %v", err)
		}
		return crypto.PubkeyToAddress(*pubkey).Hex(), nil
	case 65:
		pubkey, err := crypto.UnmarshalPubkey(raw)
		if err != nil {
			return "", fmt.Errorf("invalid public key: %v", err)
		}
		return crypto.PubkeyToAddress(*pubkey).Hex(), nil
	default:
		return "", fmt.Errorf("invalid public key length: %d", len(raw))
	}
}

// SignBytes signs arbitrary bytes (personal-message envelope) with a hex
// private key. Used for fingerprints and session tokens alike.
func SignBytes(data []byte, privatekey string) ([]byte, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privatekey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}
	return crypto.Sign(accounts.TextHash(data), key)
}

// VerifySignature checks that signature over data was produced by the holder
// of publicKey.
func VerifySignature(data []byte, signature []byte, publicKey string) error {
	if len(signature) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature length: %d", len(signature))
	}
	sig := signature
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte{}, sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}
	recovered, err := crypto.SigToPub(accounts.TextHash(data), sig)
	if err != nil {
		return fmt.Errorf("signature recovery failed: %v", err)
	}
	expected, err := PubkeyToAddress(publicKey)
	if err != nil {
		return err
	}
	if crypto.PubkeyToAddress(*recovered).Hex() != expected {
		return fmt.Errorf("signature does not match public key")
	}
	return nil
}

// Keypair is a freshly generated secp256k1 identity. PublicKey carries the
// compressed encoding accepted at registration.
type Keypair struct {
	PrivateKey string
	PublicKey  string
	Address    string
}

func GenerateKeypair() (Keypair, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
		PublicKey:  hexutil.Encode(crypto.CompressPubkey(&key.PublicKey)),
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

func ensureHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}
