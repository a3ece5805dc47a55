package service

import (
	"context"

	"github.com/Daryna22/contacts-service/internal/auth/dto"
	"github.com/Daryna22/contacts-service/internal/auth/model"
	"github.com/Daryna22/contacts-service/internal/auth/token"
	"github.com/Daryna22/contacts-service/internal/repo"
	"github.com/go-playground/validator/v10"
)

// AuthService is the session authority: it issues, rotates and verifies
// token pairs, and resolves the identity behind an access token. It also
// carries the email-confirmation flow, which shares the codec but not the
// session expiry policy.
type AuthService interface {
	Signup(ctx context.Context, d dto.SignupDTO) (model.Account, error)

	Authenticate(ctx context.Context, d dto.SigninDTO) (model.TokenPair, error)

	Refresh(ctx context.Context, presented string) (model.TokenPair, error)

	ResolveIdentity(ctx context.Context, accessToken string) (model.Account, error)

	IssueConfirmationToken(email string) (string, error)

	RedeemConfirmation(tokenStr string) (string, error)
}

func NewAuthService(accounts repo.AccountRepo, identities repo.IdentityCache, codec token.Codec, v *validator.Validate) AuthService {
	return &authService{
		accounts:   accounts,
		identities: identities,
		codec:      codec,
		v:          v,
	}
}
