package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"
	"gorm.io/gorm"

	"github.com/docutrust/docutrust/internal/domain"
	"github.com/docutrust/docutrust/internal/infra/database/models"
)

const principalCacheTTL = 300 // seconds

type PrincipalRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewPrincipalRepository creates the principal directory. mc may be nil, in
// which case lookups always hit the database.
func NewPrincipalRepository(db *gorm.DB, mc *memcache.Client) *PrincipalRepository {
	return &PrincipalRepository{db: db, mc: mc}
}

func (r *PrincipalRepository) Register(ctx context.Context, principal domain.Principal) error {
	record := models.Principal{
		ID:        principal.ID,
		Username:  principal.Username,
		Email:     principal.Email,
		FullName:  principal.FullName,
		PublicKey: principal.PublicKey,
	}
	err := r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.InvalidInputError{Kind: domain.InvalidInputMalformed, Detail: "username or email already registered"}
		}
		return err
	}
	return nil
}

func (r *PrincipalRepository) GetByID(ctx context.Context, id string) (domain.Principal, error) {
	var record models.Principal
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Principal{}, domain.NotFoundError{Resource: "principal"}
		}
		return domain.Principal{}, err
	}
	return toPrincipal(record), nil
}

// GetByEmail resolves a participant identifier. Email lookups happen on
// every document creation, so they go through memcached first.
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (domain.Principal, error) {
	cacheKey := emailCacheKey(email)

	if r.mc != nil {
		if item, err := r.mc.Get(cacheKey); err == nil {
			var cached domain.Principal
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var record models.Principal
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Principal{}, domain.NotFoundError{Resource: "principal"}
		}
		return domain.Principal{}, err
	}

	principal := toPrincipal(record)
	if r.mc != nil {
		if value, err := json.Marshal(principal); err == nil {
			_ = r.mc.Set(&memcache.Item{Key: cacheKey, Value: value, Expiration: principalCacheTTL})
		}
	}

	return principal, nil
}

// emailCacheKey hashes the email so arbitrary identifiers stay within
// memcached's key constraints.
func emailCacheKey(email string) string {
	return fmt.Sprintf("principal:email:%x", xxh3.HashString(email))
}

func toPrincipal(record models.Principal) domain.Principal {
	return domain.Principal{
		ID:        record.ID,
		Username:  record.Username,
		Email:     record.Email,
		FullName:  record.FullName,
		PublicKey: record.PublicKey,
	}
}
