package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/docutrust/docutrust/internal/domain"
	"github.com/docutrust/docutrust/internal/infra/database/models"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc domain.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		record := models.Document{
			ID:            doc.ID,
			Title:         doc.Title,
			Content:       doc.Content,
			ContentSource: string(doc.ContentSource),
			FileName:      doc.FileName,
			Fingerprint:   doc.Fingerprint,
			CreatorID:     doc.CreatorID,
			Status:        string(doc.Status),
			CreatedAt:     doc.CreatedAt,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		// all-or-nothing: a failing participant row rolls the document back
		for i, p := range doc.Participants {
			participant := models.Participant{
				DocumentID:  doc.ID,
				PrincipalID: p.PrincipalID,
				Role:        string(p.Role),
				Position:    i,
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, participants, signatures, err := loadDocument(ctx, r.db, id, false)
	if err != nil {
		return domain.Document{}, err
	}
	return toDomain(doc, participants, signatures), nil
}

// AppendSignature is the single writer path for the ledger. The document row
// is locked for the duration of the transaction so the authorization check,
// the duplicate check and the status recompute all see a consistent ledger;
// the composite primary key on signatures backs the duplicate check up under
// concurrent commits.
func (r *DocumentRepository) AppendSignature(ctx context.Context, documentID string, principalID string, value string) (domain.Document, bool, error) {
	var result domain.Document
	var transitioned bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, participants, signatures, err := loadDocument(ctx, tx, documentID, true)
		if err != nil {
			return err
		}

		parts := toParticipants(participants)
		if err := domain.AuthorizeSigner(principalID, doc.CreatorID, parts); err != nil {
			return err
		}

		sigs := toSignatures(signatures)
		if domain.HasSigned(sigs, principalID) {
			return domain.ConflictError{PrincipalID: principalID}
		}

		signature := models.Signature{
			DocumentID:  documentID,
			PrincipalID: principalID,
			Value:       value,
			SignedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&signature).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ConflictError{PrincipalID: principalID}
			}
			return err
		}
		sigs = append(sigs, domain.Signature{
			PrincipalID: signature.PrincipalID,
			Value:       signature.Value,
			SignedAt:    signature.SignedAt,
		})

		// re-derived from the full sets every time, idempotent once completed
		if doc.Status == string(domain.StatusPending) && domain.AllSigned(parts, sigs) {
			now := time.Now().UTC()
			if err := tx.Model(&models.Document{}).
				Where("id = ?", documentID).
				Updates(map[string]any{"status": string(domain.StatusCompleted), "completed_at": now}).Error; err != nil {
				return err
			}
			doc.Status = string(domain.StatusCompleted)
			doc.CompletedAt = &now
			transitioned = true
		}

		result = toDomain(doc, participants, nil)
		result.Signatures = sigs
		return nil
	})
	if err != nil {
		return domain.Document{}, false, err
	}

	return result, transitioned, nil
}

func (r *DocumentRepository) ListForPrincipal(ctx context.Context, principalID string) ([]domain.Document, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Document{}).
		Distinct("documents.id").
		Joins("LEFT JOIN participants ON participants.document_id = documents.id").
		Where("documents.creator_id = ? OR participants.principal_id = ?", principalID, principalID).
		Pluck("documents.id", &ids).Error
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadDocument(ctx context.Context, db *gorm.DB, id string, forUpdate bool) (models.Document, []models.Participant, []models.Signature, error) {
	var doc models.Document

	query := db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.Where("id = ?", id).Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Document{}, nil, nil, domain.NotFoundError{Resource: "document"}
		}
		return models.Document{}, nil, nil, err
	}

	var participants []models.Participant
	err = db.WithContext(ctx).
		Where("document_id = ?", id).
		Order("position").
		Find(&participants).Error
	if err != nil {
		return models.Document{}, nil, nil, err
	}

	var signatures []models.Signature
	err = db.WithContext(ctx).
		Where("document_id = ?", id).
		Order("signed_at").
		Find(&signatures).Error
	if err != nil {
		return models.Document{}, nil, nil, err
	}

	return doc, participants, signatures, nil
}

func toParticipants(participants []models.Participant) []domain.Participant {
	out := make([]domain.Participant, 0, len(participants))
	for _, p := range participants {
		out = append(out, domain.Participant{
			PrincipalID: p.PrincipalID,
			Role:        domain.Role(p.Role),
		})
	}
	return out
}

func toSignatures(signatures []models.Signature) []domain.Signature {
	out := make([]domain.Signature, 0, len(signatures))
	for _, s := range signatures {
		out = append(out, domain.Signature{
			PrincipalID: s.PrincipalID,
			Value:       s.Value,
			SignedAt:    s.SignedAt,
		})
	}
	return out
}

func toDomain(doc models.Document, participants []models.Participant, signatures []models.Signature) domain.Document {
	return domain.Document{
		ID:            doc.ID,
		Title:         doc.Title,
		Content:       doc.Content,
		ContentSource: domain.ContentSource(doc.ContentSource),
		FileName:      doc.FileName,
		Fingerprint:   doc.Fingerprint,
		CreatorID:     doc.CreatorID,
		Participants:  toParticipants(participants),
		Signatures:    toSignatures(signatures),
		Status:        domain.Status(doc.Status),
		CreatedAt:     doc.CreatedAt,
		CompletedAt:   doc.CompletedAt,
	}
}
