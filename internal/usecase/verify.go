package usecase

import (
	"context"
	"errors"

	"github.com/docutrust/docutrust"
	"github.com/docutrust/docutrust/internal/domain"
)

// VerifyUsecase audits a document's ledger against the recomputed content
// fingerprint and each signer's registered public key. It is a pure read:
// neither the ledger nor the status is ever mutated here, and a bad
// signature is data in the report rather than an error.
type VerifyUsecase struct {
	repo       DocumentRepository
	principals PrincipalRepository
	blobs      BlobStore
}

func NewVerifyUsecase(
	repo DocumentRepository,
	principals PrincipalRepository,
	blobs BlobStore,
) *VerifyUsecase {
	return &VerifyUsecase{
		repo:       repo,
		principals: principals,
		blobs:      blobs,
	}
}

func (uc *VerifyUsecase) Verify(ctx context.Context, documentID string) (docutrust.VerificationReport, error) {
	doc, err := uc.repo.Get(ctx, documentID)
	if err != nil {
		return docutrust.VerificationReport{}, err
	}

	// recompute from the canonical source chosen at creation, not from the
	// stored fingerprint column, so tampering with stored content shows up
	canonical := []byte(doc.Content)
	if doc.ContentSource == domain.SourceFile {
		canonical, err = uc.blobs.Get(ctx, doc.ID)
		if err != nil {
			return docutrust.VerificationReport{}, domain.CryptoError{Detail: "cannot read document content for verification"}
		}
	}
	fingerprint := docutrust.Fingerprint(canonical)

	report := docutrust.VerificationReport{
		DocumentID:        doc.ID,
		Fingerprint:       fingerprint,
		StoredFingerprint: doc.Fingerprint,
		Results:           []docutrust.SignatureVerification{},
	}

	if len(doc.Signatures) == 0 {
		report.NothingToVerify = true
		return report, nil
	}

	for _, sig := range doc.Signatures {
		report.Results = append(report.Results, uc.checkSignature(ctx, fingerprint, sig))
	}

	return report, nil
}

func (uc *VerifyUsecase) checkSignature(ctx context.Context, fingerprint string, sig domain.Signature) docutrust.SignatureVerification {
	result := docutrust.SignatureVerification{
		PrincipalID: sig.PrincipalID,
		SignedAt:    sig.SignedAt,
	}

	principal, err := uc.principals.GetByID(ctx, sig.PrincipalID)
	if err != nil {
		result.Unverifiable = true
		if errors.Is(err, domain.ErrNotFound) {
			result.Reason = "no registered principal for this signature"
		} else {
			result.Reason = "principal lookup failed"
		}
		return result
	}
	result.Email = principal.Email

	if principal.PublicKey == "" {
		result.Unverifiable = true
		result.Reason = "principal has no public key on file"
		return result
	}

	expected, err := docutrust.PubkeyToAddress(principal.PublicKey)
	if err != nil {
		result.Unverifiable = true
		result.Reason = "registered public key is malformed"
		return result
	}

	recovered, err := docutrust.RecoverSigner(fingerprint, sig.Value)
	if err != nil {
		result.Unverifiable = true
		result.Reason = err.Error()
		return result
	}

	if recovered == expected {
		result.Verified = true
	} else {
		result.Reason = "signature does not match the registered public key"
	}
	return result
}
