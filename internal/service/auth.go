package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/docutrust/docutrust/internal/config"
	"github.com/docutrust/docutrust/internal/usecase"
	"github.com/docutrust/docutrust/jwt"
)

var tracer = otel.Tracer("service")

type AuthService struct {
	config     *config.Config
	principals usecase.PrincipalRepository
}

func NewAuthService(
	config *config.Config,
	principals usecase.PrincipalRepository,
) *AuthService {
	return &AuthService{
		config:     config,
		principals: principals,
	}
}

type AuthResult struct {
	PrincipalID string
}

// AuthJwt authenticates a session token: the issuer claim names the
// principal, whose registered public key must have produced the signature.
func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	_, claims, err := jwt.Parse(token)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt parsing failed"))
		return nil, err
	}

	if claims.Audience != s.config.FQDN {
		err := fmt.Errorf("jwt audience mismatch: expected %s, got %s", s.config.FQDN, claims.Audience)
		span.RecordError(err)
		return nil, err
	}

	if claims.Subject != "docutrust" {
		err := fmt.Errorf("invalid subject")
		span.RecordError(err)
		return nil, err
	}

	if claims.Issuer == "" {
		err := fmt.Errorf("missing issuer")
		span.RecordError(err)
		return nil, err
	}

	principal, err := s.principals.GetByID(ctx, claims.Issuer)
	if err != nil {
		span.RecordError(errors.Wrap(err, "issuer lookup failed"))
		return nil, err
	}

	_, _, err = jwt.Validate(token, principal.PublicKey)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	return &AuthResult{PrincipalID: principal.ID}, nil
}
