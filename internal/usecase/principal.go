package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/docutrust/docutrust"
	"github.com/docutrust/docutrust/internal/domain"
)

type PrincipalUsecase struct {
	principals PrincipalRepository
}

func NewPrincipalUsecase(principals PrincipalRepository) *PrincipalUsecase {
	return &PrincipalUsecase{principals: principals}
}

// Register creates a principal. The public key must be a parsable secp256k1
// key so signature verification never trips over it later.
func (uc *PrincipalUsecase) Register(ctx context.Context, req docutrust.RegisterRequest) (domain.Principal, error) {
	if req.Username == "" || req.Email == "" || req.PublicKey == "" {
		return domain.Principal{}, domain.MissingFields("username, email and publicKey are required")
	}

	if _, err := docutrust.PubkeyToAddress(req.PublicKey); err != nil {
		return domain.Principal{}, domain.InvalidInputError{
			Kind:   domain.InvalidInputMalformed,
			Detail: "publicKey is not a valid secp256k1 public key",
		}
	}

	principal := domain.Principal{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		PublicKey: req.PublicKey,
	}

	if err := uc.principals.Register(ctx, principal); err != nil {
		return domain.Principal{}, err
	}

	return principal, nil
}

func (uc *PrincipalUsecase) Get(ctx context.Context, id string) (domain.Principal, error) {
	return uc.principals.GetByID(ctx, id)
}
