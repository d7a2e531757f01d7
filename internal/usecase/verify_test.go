package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/docutrust/docutrust"
	"github.com/docutrust/docutrust/internal/domain"
)

type testKey struct {
	priv string
	pub  string
}

func generateTestKey(t *testing.T) testKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return testKey{
		priv: hexutil.Encode(crypto.FromECDSA(key)),
		pub:  hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey)),
	}
}

func signedDocument(t *testing.T, content string, signers ...struct {
	principal domain.Principal
	key       testKey
}) (domain.Document, *memDocRepo, *memPrincipals) {
	t.Helper()

	fp := docutrust.Fingerprint([]byte(content))
	doc := domain.Document{
		ID:            "doc-1",
		Title:         "agreement",
		Content:       content,
		ContentSource: domain.SourceText,
		Fingerprint:   fp,
		CreatorID:     "p-creator",
		Status:        domain.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	principals := newMemPrincipals()
	for _, s := range signers {
		doc.Participants = append(doc.Participants, domain.Participant{PrincipalID: s.principal.ID, Role: domain.RoleSigner})
		sig, err := docutrust.SignFingerprint(fp, s.key.priv)
		if err != nil {
			t.Fatalf("sign fingerprint: %v", err)
		}
		doc.Signatures = append(doc.Signatures, domain.Signature{
			PrincipalID: s.principal.ID,
			Value:       sig,
			SignedAt:    time.Now().UTC(),
		})
		_ = principals.Register(context.Background(), s.principal)
	}

	repo := newMemDocRepo()
	_ = repo.Create(context.Background(), doc)
	return doc, repo, principals
}

func TestVerifyAllSignaturesValid(t *testing.T) {
	aliceKey := generateTestKey(t)
	aliceWithKey := domain.Principal{ID: "p-alice", Email: "alice@example.com", PublicKey: aliceKey.pub}

	doc, repo, principals := signedDocument(t, "both parties agree", struct {
		principal domain.Principal
		key       testKey
	}{aliceWithKey, aliceKey})

	uc := NewVerifyUsecase(repo, principals, newMemBlobs())
	report, err := uc.Verify(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if report.Fingerprint != doc.Fingerprint {
		t.Fatalf("recomputed fingerprint must match the stored one for untampered content")
	}
	if len(report.Results) != 1 || !report.Results[0].Verified {
		t.Fatalf("expected one verified result, got %+v", report.Results)
	}
	if report.Results[0].Email != "alice@example.com" {
		t.Fatalf("result must carry the signer email")
	}
}

func TestVerifyDetectsTamperedContent(t *testing.T) {
	aliceKey := generateTestKey(t)
	aliceWithKey := domain.Principal{ID: "p-alice", Email: "alice@example.com", PublicKey: aliceKey.pub}

	doc, repo, principals := signedDocument(t, "both parties agree", struct {
		principal domain.Principal
		key       testKey
	}{aliceWithKey, aliceKey})

	// tamper with the stored content after signing
	tampered := doc
	tampered.Content = "both parties agree to pay dave"
	_ = repo.Create(context.Background(), tampered)

	uc := NewVerifyUsecase(repo, principals, newMemBlobs())
	report, err := uc.Verify(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if report.Fingerprint == report.StoredFingerprint {
		t.Fatalf("recomputed fingerprint must differ for tampered content")
	}
	if report.Results[0].Verified {
		t.Fatalf("signature over the original content must not verify against tampered content")
	}
	if report.Results[0].Unverifiable {
		t.Fatalf("a processed mismatch is verified:false, not unverifiable")
	}
}

func TestVerifyUnverifiableEntries(t *testing.T) {
	aliceKey := generateTestKey(t)
	noKey := domain.Principal{ID: "p-alice", Email: "alice@example.com"} // no public key on file

	doc, repo, principals := signedDocument(t, "content", struct {
		principal domain.Principal
		key       testKey
	}{noKey, aliceKey})

	// a second signature from a principal nobody registered
	doc.Signatures = append(doc.Signatures, domain.Signature{
		PrincipalID: "p-ghost",
		Value:       "0x00",
		SignedAt:    time.Now().UTC(),
	})
	_ = repo.Create(context.Background(), doc)

	uc := NewVerifyUsecase(repo, principals, newMemBlobs())
	report, err := uc.Verify(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if len(report.Results) != 2 {
		t.Fatalf("one bad entry must not abort the audit of the rest")
	}
	if !report.Results[0].Unverifiable || report.Results[0].Verified {
		t.Fatalf("missing key must be unverifiable, got %+v", report.Results[0])
	}
	if !report.Results[1].Unverifiable {
		t.Fatalf("unknown principal must be unverifiable, got %+v", report.Results[1])
	}
}

func TestVerifyMalformedSignature(t *testing.T) {
	aliceKey := generateTestKey(t)
	aliceWithKey := domain.Principal{ID: "p-alice", Email: "alice@example.com", PublicKey: aliceKey.pub}

	doc, repo, principals := signedDocument(t, "content", struct {
		principal domain.Principal
		key       testKey
	}{aliceWithKey, aliceKey})

	doc.Signatures[0].Value = "garbage"
	_ = repo.Create(context.Background(), doc)

	uc := NewVerifyUsecase(repo, principals, newMemBlobs())
	report, err := uc.Verify(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !report.Results[0].Unverifiable || report.Results[0].Reason == "" {
		t.Fatalf("unparsable signature must be unverifiable with a reason, got %+v", report.Results[0])
	}
}

func TestVerifyEmptyLedger(t *testing.T) {
	repo := newMemDocRepo()
	content := "nothing signed yet"
	_ = repo.Create(context.Background(), domain.Document{
		ID:            "doc-empty",
		Content:       content,
		ContentSource: domain.SourceText,
		Fingerprint:   docutrust.Fingerprint([]byte(content)),
		Status:        domain.StatusPending,
	})

	uc := NewVerifyUsecase(repo, newMemPrincipals(), newMemBlobs())
	report, err := uc.Verify(context.Background(), "doc-empty")
	if err != nil {
		t.Fatalf("empty ledger must not error: %v", err)
	}
	if !report.NothingToVerify || len(report.Results) != 0 {
		t.Fatalf("expected explicit nothing-to-verify report, got %+v", report)
	}
}

func TestVerifyIdempotent(t *testing.T) {
	aliceKey := generateTestKey(t)
	aliceWithKey := domain.Principal{ID: "p-alice", Email: "alice@example.com", PublicKey: aliceKey.pub}

	doc, repo, principals := signedDocument(t, "content", struct {
		principal domain.Principal
		key       testKey
	}{aliceWithKey, aliceKey})

	uc := NewVerifyUsecase(repo, principals, newMemBlobs())
	first, err := uc.Verify(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	second, err := uc.Verify(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("verification must be a pure read: %+v vs %+v", first, second)
	}
}

func TestVerifyUnknownDocument(t *testing.T) {
	uc := NewVerifyUsecase(newMemDocRepo(), newMemPrincipals(), newMemBlobs())
	_, err := uc.Verify(context.Background(), "no-such-id")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
