package jwt

import (
	"strconv"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestCreateAndValidate(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privHex := hexutil.Encode(crypto.FromECDSA(key))
	pubHex := hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey))

	claims := Claims{
		Issuer:         "principal-1",
		Subject:        "docutrust",
		Audience:       "example.com",
		ExpirationTime: strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	}

	token, err := Create(claims, privHex)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, got, err := Validate(token, pubHex)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.Issuer != claims.Issuer || got.Audience != claims.Audience {
		t.Fatalf("claims mismatch: %+v", got)
	}

	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	otherPub := hexutil.Encode(crypto.FromECDSAPub(&other.PublicKey))
	if _, _, err := Validate(token, otherPub); err == nil {
		t.Fatalf("expected validation failure with wrong public key")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	key, _ := crypto.GenerateKey()
	privHex := hexutil.Encode(crypto.FromECDSA(key))

	claims := Claims{
		Issuer:         "principal-1",
		ExpirationTime: strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10),
	}
	token, err := Create(claims, privHex)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := Parse(token); err == nil {
		t.Fatalf("expected expiry error")
	}
}
