package usecase

import (
	"context"
	"time"

	"github.com/docutrust/docutrust"
	"github.com/docutrust/docutrust/internal/domain"
)

// --- in-memory ports shared by the usecase tests ---

type memPrincipals struct {
	byID    map[string]domain.Principal
	byEmail map[string]domain.Principal
}

func newMemPrincipals(principals ...domain.Principal) *memPrincipals {
	m := &memPrincipals{
		byID:    map[string]domain.Principal{},
		byEmail: map[string]domain.Principal{},
	}
	for _, p := range principals {
		m.byID[p.ID] = p
		m.byEmail[p.Email] = p
	}
	return m
}

func (m *memPrincipals) Register(ctx context.Context, p domain.Principal) error {
	m.byID[p.ID] = p
	m.byEmail[p.Email] = p
	return nil
}

func (m *memPrincipals) GetByID(ctx context.Context, id string) (domain.Principal, error) {
	p, ok := m.byID[id]
	if !ok {
		return domain.Principal{}, domain.NotFoundError{Resource: "principal"}
	}
	return p, nil
}

func (m *memPrincipals) GetByEmail(ctx context.Context, email string) (domain.Principal, error) {
	p, ok := m.byEmail[email]
	if !ok {
		return domain.Principal{}, domain.NotFoundError{Resource: "principal"}
	}
	return p, nil
}

type memDocRepo struct {
	docs map[string]domain.Document
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{docs: map[string]domain.Document{}}
}

func (m *memDocRepo) Create(ctx context.Context, doc domain.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memDocRepo) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return domain.Document{}, domain.NotFoundError{Resource: "document"}
	}
	return doc, nil
}

func (m *memDocRepo) AppendSignature(ctx context.Context, documentID, principalID, value string) (domain.Document, bool, error) {
	doc, ok := m.docs[documentID]
	if !ok {
		return domain.Document{}, false, domain.NotFoundError{Resource: "document"}
	}
	if err := domain.AuthorizeSigner(principalID, doc.CreatorID, doc.Participants); err != nil {
		return domain.Document{}, false, err
	}
	if domain.HasSigned(doc.Signatures, principalID) {
		return domain.Document{}, false, domain.ConflictError{PrincipalID: principalID}
	}
	doc.Signatures = append(doc.Signatures, domain.Signature{
		PrincipalID: principalID,
		Value:       value,
		SignedAt:    time.Now().UTC(),
	})
	transitioned := false
	if doc.Status == domain.StatusPending && domain.AllSigned(doc.Participants, doc.Signatures) {
		now := time.Now().UTC()
		doc.Status = domain.StatusCompleted
		doc.CompletedAt = &now
		transitioned = true
	}
	m.docs[documentID] = doc
	return doc, transitioned, nil
}

func (m *memDocRepo) ListForPrincipal(ctx context.Context, principalID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range m.docs {
		if doc.CreatorID == principalID {
			out = append(out, doc)
			continue
		}
		if _, ok := doc.ParticipantRole(principalID); ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

type memBlobs struct {
	data map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}}
}

func (m *memBlobs) Put(ctx context.Context, key string, data []byte) error {
	m.data[key] = data
	return nil
}

func (m *memBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.data[key]
	if !ok {
		return nil, domain.NotFoundError{Resource: "blob"}
	}
	return data, nil
}

type captureEvents struct {
	published []docutrust.Event
}

func (c *captureEvents) Publish(ctx context.Context, event docutrust.Event) error {
	c.published = append(c.published, event)
	return nil
}
