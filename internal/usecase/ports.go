package usecase

import (
	"context"

	"github.com/docutrust/docutrust"
	"github.com/docutrust/docutrust/internal/domain"
)

// DocumentRepository defines persistence for documents and their signature
// ledger. AppendSignature performs the authorization check, the duplicate
// check and the status recompute inside one transaction; the bool result
// reports whether this append transitioned the document to completed.
type DocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) error
	Get(ctx context.Context, id string) (domain.Document, error)
	AppendSignature(ctx context.Context, documentID string, principalID string, value string) (domain.Document, bool, error)
	ListForPrincipal(ctx context.Context, principalID string) ([]domain.Document, error)
}

// PrincipalRepository defines lookup/registration for principals.
type PrincipalRepository interface {
	Register(ctx context.Context, principal domain.Principal) error
	GetByID(ctx context.Context, id string) (domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (domain.Principal, error)
}

// BlobStore holds uploaded file bytes keyed by document id.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// EventPublisher broadcasts document lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event docutrust.Event) error
}
