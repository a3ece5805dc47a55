package service

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"strings"

	"github.com/Daryna22/contacts-service/internal/auth/dto"
	customErrors "github.com/Daryna22/contacts-service/internal/auth/errors"
	"github.com/Daryna22/contacts-service/internal/auth/hash"
	"github.com/Daryna22/contacts-service/internal/auth/model"
	"github.com/Daryna22/contacts-service/internal/auth/token"
	"github.com/Daryna22/contacts-service/internal/repo"
	"github.com/go-playground/validator/v10"
)

type authService struct {
	accounts   repo.AccountRepo
	identities repo.IdentityCache
	codec      token.Codec
	v          *validator.Validate
}

func (a *authService) Signup(ctx context.Context, d dto.SignupDTO) (model.Account, error) {
	if err := a.v.Struct(d); err != nil {
		return model.Account{}, customErrors.NewInvalidArgument(err.Error())
	}

	_, err := a.accounts.GetByEmail(ctx, d.Email)
	if err == nil {
		return model.Account{}, customErrors.ErrAlreadyExists
	}
	if !errors.Is(err, customErrors.ErrNotFound) {
		return model.Account{}, customErrors.WrapInternal(err, "Signup")
	}

	passwordHash, err := hash.Hash(d.Password)
	if err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "Signup")
	}

	account := model.Account{
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: passwordHash,
		Avatar:       gravatarURL(d.Email),
	}

	created, err := a.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.Account{}, customErrors.ErrAlreadyExists
		}
		return model.Account{}, customErrors.WrapInternal(err, "Signup")
	}

	return created, nil
}

func (a *authService) Authenticate(ctx context.Context, d dto.SigninDTO) (model.TokenPair, error) {
	if err := a.v.Struct(d); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	account, err := a.accounts.GetByEmail(ctx, d.Email)
	if errors.Is(err, customErrors.ErrNotFound) {
		// same kind as a wrong password, so callers cannot probe for
		// registered emails
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Authenticate")
	}

	if !account.Confirmed {
		return model.TokenPair{}, customErrors.ErrAccountNotConfirmed
	}

	if !hash.Verify(d.Password, account.PasswordHash) {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	return a.mintPair(ctx, account)
}

func (a *authService) Refresh(ctx context.Context, presented string) (model.TokenPair, error) {
	claims, err := a.codec.Decode(presented, token.ScopeRefresh)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	// the identity store, not the cache: the stored token is the sole
	// authority on which refresh token is current
	account, err := a.accounts.GetByEmail(ctx, claims.Subject)
	if errors.Is(err, customErrors.ErrNotFound) {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	// rotation revokes by overwrite: only the verbatim stored string is
	// accepted
	if account.RefreshToken != presented {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	return a.mintPair(ctx, account)
}

func (a *authService) ResolveIdentity(ctx context.Context, accessToken string) (model.Account, error) {
	claims, err := a.codec.Decode(accessToken, token.ScopeAccess)
	if err != nil {
		return model.Account{}, customErrors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return model.Account{}, customErrors.ErrInvalidToken
	}

	account, err := a.identities.GetOrLoad(ctx, claims.Subject, a.accounts.GetByEmail)
	if errors.Is(err, customErrors.ErrNotFound) {
		// account deleted after the token was issued
		return model.Account{}, customErrors.ErrInvalidToken
	}
	if err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "ResolveIdentity")
	}

	return account, nil
}

func (a *authService) IssueConfirmationToken(email string) (string, error) {
	return a.codec.IssueConfirmation(email)
}

func (a *authService) RedeemConfirmation(tokenStr string) (string, error) {
	claims, err := a.codec.Decode(tokenStr, token.ScopeEmailConfirm)
	if err != nil {
		return "", customErrors.ErrConfirmation
	}
	if claims.Subject == "" {
		return "", customErrors.ErrConfirmation
	}

	return claims.Subject, nil
}

// mintPair issues a fresh access/refresh pair and persists the refresh
// token. Persisting overwrites the previous token; under racing refreshes
// the last write wins and earlier tokens stop matching.
func (a *authService) mintPair(ctx context.Context, account model.Account) (model.TokenPair, error) {
	accessToken, err := a.codec.IssueAccess(account.Email)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "mint access token")
	}

	refreshToken, err := a.codec.IssueRefresh(account.Email)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "mint refresh token")
	}

	if err := a.accounts.UpdateRefreshToken(ctx, account.ID, refreshToken); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "persist refresh token")
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", sum)
}
