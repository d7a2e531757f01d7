package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/docutrust/docutrust"
	"github.com/docutrust/docutrust/internal/domain"
)

// CreateDocumentInput is the validated, strongly-typed input for document
// creation. Transport-level coercion (multipart fields, JSON-encoded signer
// lists) happens at the boundary, not here.
type CreateDocumentInput struct {
	Title     string
	Content   string
	CreatorID string
	Signers   []docutrust.SignerInput
	File      []byte
	FileName  string
}

type DocumentUsecase struct {
	repo       DocumentRepository
	principals PrincipalRepository
	blobs      BlobStore
	events     EventPublisher
}

func NewDocumentUsecase(
	repo DocumentRepository,
	principals PrincipalRepository,
	blobs BlobStore,
	events EventPublisher,
) *DocumentUsecase {
	return &DocumentUsecase{
		repo:       repo,
		principals: principals,
		blobs:      blobs,
		events:     events,
	}
}

func (uc *DocumentUsecase) Create(ctx context.Context, input CreateDocumentInput) (domain.Document, error) {
	if input.Title == "" || input.Content == "" || input.CreatorID == "" {
		return domain.Document{}, domain.MissingFields("title, content and creatorId are required")
	}
	if len(input.Signers) == 0 {
		return domain.Document{}, domain.MissingFields("at least one participant is required")
	}

	if _, err := uc.principals.GetByID(ctx, input.CreatorID); err != nil {
		return domain.Document{}, err
	}

	participants, err := uc.resolveParticipants(ctx, input.Signers)
	if err != nil {
		return domain.Document{}, err
	}

	// canonical bytes are fixed here and reused unchanged at verification
	source := domain.SourceText
	canonical := []byte(input.Content)
	if len(input.File) > 0 {
		source = domain.SourceFile
		canonical = input.File
	}

	doc := domain.Document{
		ID:            uuid.NewString(),
		Title:         input.Title,
		Content:       input.Content,
		ContentSource: source,
		FileName:      input.FileName,
		Fingerprint:   docutrust.Fingerprint(canonical),
		CreatorID:     input.CreatorID,
		Participants:  participants,
		Signatures:    []domain.Signature{},
		Status:        domain.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	if source == domain.SourceFile {
		if err := uc.blobs.Put(ctx, doc.ID, input.File); err != nil {
			return domain.Document{}, err
		}
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return domain.Document{}, err
	}

	// event delivery is best-effort
	_ = uc.events.Publish(ctx, docutrust.Event{
		Type:       docutrust.EventDocumentCreated,
		DocumentID: doc.ID,
		Status:     string(doc.Status),
		Timestamp:  doc.CreatedAt,
	})

	return doc, nil
}

// resolveParticipants maps signer inputs to principals. All-or-nothing: any
// unresolvable identifier or bad role fails the whole set. Duplicate emails
// collapse to the last specified role, keeping first-occurrence position.
func (uc *DocumentUsecase) resolveParticipants(ctx context.Context, signers []docutrust.SignerInput) ([]domain.Participant, error) {
	participants := make([]domain.Participant, 0, len(signers))
	seen := make(map[string]int)

	for _, s := range signers {
		if s.Email == "" {
			return nil, domain.MissingFields("each participant must have an email")
		}
		role, ok := domain.ParseRole(s.Role)
		if !ok {
			return nil, domain.InvalidRole(s.Role)
		}
		principal, err := uc.principals.GetByEmail(ctx, s.Email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.UnknownParticipant(s.Email)
			}
			return nil, err
		}
		if idx, dup := seen[principal.ID]; dup {
			participants[idx].Role = role
			continue
		}
		seen[principal.ID] = len(participants)
		participants = append(participants, domain.Participant{
			PrincipalID: principal.ID,
			Role:        role,
		})
	}

	return participants, nil
}

func (uc *DocumentUsecase) Get(ctx context.Context, id string) (domain.Document, error) {
	return uc.repo.Get(ctx, id)
}

func (uc *DocumentUsecase) ListForPrincipal(ctx context.Context, principalID string) ([]domain.Document, error) {
	return uc.repo.ListForPrincipal(ctx, principalID)
}

// Content returns the canonical bytes of a document along with the original
// file name (empty for text documents).
func (uc *DocumentUsecase) Content(ctx context.Context, id string) ([]byte, string, error) {
	doc, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if doc.ContentSource == domain.SourceFile {
		data, err := uc.blobs.Get(ctx, doc.ID)
		if err != nil {
			return nil, "", err
		}
		return data, doc.FileName, nil
	}
	return []byte(doc.Content), "", nil
}

// Sign appends a signature to the ledger. Authorization, duplicate detection
// and the status transition happen atomically in the repository.
func (uc *DocumentUsecase) Sign(ctx context.Context, documentID string, callerID string, signatureValue string) (domain.Document, error) {
	if callerID == "" {
		return domain.Document{}, domain.MissingFields("signer identity is required")
	}
	if signatureValue == "" {
		return domain.Document{}, domain.MissingFields("signature is required")
	}

	doc, completed, err := uc.repo.AppendSignature(ctx, documentID, callerID, signatureValue)
	if err != nil {
		return domain.Document{}, err
	}

	now := time.Now().UTC()
	_ = uc.events.Publish(ctx, docutrust.Event{
		Type:        docutrust.EventDocumentSigned,
		DocumentID:  doc.ID,
		PrincipalID: callerID,
		Status:      string(doc.Status),
		Timestamp:   now,
	})
	if completed {
		_ = uc.events.Publish(ctx, docutrust.Event{
			Type:       docutrust.EventDocumentCompleted,
			DocumentID: doc.ID,
			Status:     string(doc.Status),
			Timestamp:  now,
		})
	}

	return doc, nil
}

// Dashboard buckets a principal's documents the way the overview page
// consumes them.
type Dashboard struct {
	Created    []domain.Document `json:"createdDocuments"`
	NeedToSign []domain.Document `json:"needToSignDocuments"`
	Signed     []domain.Document `json:"signedDocuments"`
}

func (uc *DocumentUsecase) Dashboard(ctx context.Context, principalID string) (Dashboard, error) {
	docs, err := uc.repo.ListForPrincipal(ctx, principalID)
	if err != nil {
		return Dashboard{}, err
	}

	dashboard := Dashboard{
		Created:    []domain.Document{},
		NeedToSign: []domain.Document{},
		Signed:     []domain.Document{},
	}
	for _, doc := range docs {
		if doc.CreatorID == principalID {
			dashboard.Created = append(dashboard.Created, doc)
		}
		if doc.HasSigned(principalID) {
			dashboard.Signed = append(dashboard.Signed, doc)
			continue
		}
		if role, ok := doc.ParticipantRole(principalID); ok && role == domain.RoleSigner && doc.Status == domain.StatusPending {
			dashboard.NeedToSign = append(dashboard.NeedToSign, doc)
		}
	}

	return dashboard, nil
}
