package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SourceToken  = "token"
	SourceAPIKey = "api_key"
)

type Identity struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           consts.Role
	Source         string
}

// IdentityProvider turns request credentials into an organization-scoped
// identity. Tokens are verified with keyFunc, usually backed by a JWKS.
type IdentityProvider struct {
	cfg        Config
	uowFactory *dbs.UOWFactory
	keyFunc    jwt.Keyfunc
}

func NewIdentityProvider(cfg Config, uowFactory *dbs.UOWFactory, keyFunc jwt.Keyfunc) *IdentityProvider {
	return &IdentityProvider{cfg: cfg, uowFactory: uowFactory, keyFunc: keyFunc}
}

func (p *IdentityProvider) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{jwt.WithLeeway(p.cfg.Leeway), jwt.WithExpirationRequired()}
	if p.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.cfg.Issuer))
	}
	if p.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(p.cfg.Audience))
	}
	return opts
}

func (p *IdentityProvider) FromToken(ctx context.Context, tokenString string) (*Identity, error) {
	if p.keyFunc == nil {
		return nil, errs.PermissionsError{Err: fmt.Errorf("token auth is not configured")}
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, p.keyFunc, p.parserOptions()...)
	if err != nil {
		return nil, errs.PermissionsError{Err: fmt.Errorf("identity can't be retrieved, %v", err)}
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errs.PermissionsError{Err: fmt.Errorf("subject is not a user id, %v", err)}
	}

	uow := p.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	member, err := repo.NewMemberRepo(tx).GetMembership(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:         userID,
		OrganizationID: member.OrganizationID,
		Role:           consts.Role(member.Role),
		Source:         SourceToken,
	}, nil
}

// FromAPIKey resolves an organization key. Keys act as an admin of their
// organization.
func (p *IdentityProvider) FromAPIKey(ctx context.Context, apiKey string) (*Identity, error) {
	uow := p.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	key, err := repo.NewKeyRepo(tx).GetKeyByHash(ctx, HashAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:         key.CreatedBy,
		OrganizationID: key.OrganizationID,
		Role:           consts.RoleAdmin,
		Source:         SourceAPIKey,
	}, nil
}

func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
