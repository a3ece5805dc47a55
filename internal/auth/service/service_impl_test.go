package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Daryna22/contacts-service/internal/auth/dto"
	authErrors "github.com/Daryna22/contacts-service/internal/auth/errors"
	"github.com/Daryna22/contacts-service/internal/auth/model"
	"github.com/Daryna22/contacts-service/internal/auth/token"
	"github.com/Daryna22/contacts-service/internal/cache"
	"github.com/Daryna22/contacts-service/internal/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type accountRepoStub struct {
	mu       sync.Mutex
	nextID   uint
	accounts map[string]model.Account
}

func newAccountRepoStub() *accountRepoStub {
	return &accountRepoStub{nextID: 1, accounts: make(map[string]model.Account)}
}

func (s *accountRepoStub) Create(ctx context.Context, a model.Account) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Email]; ok {
		return model.Account{}, authErrors.ErrAlreadyExists
	}
	a.ID = s.nextID
	s.nextID++
	a.CreatedAt = time.Now()
	s.accounts[a.Email] = a
	return a, nil
}

func (s *accountRepoStub) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return model.Account{}, authErrors.ErrNotFound
	}
	return a, nil
}

func (s *accountRepoStub) UpdateRefreshToken(ctx context.Context, id uint, tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, a := range s.accounts {
		if a.ID == id {
			a.RefreshToken = tok
			s.accounts[email] = a
			return nil
		}
	}
	return authErrors.ErrNotFound
}

func (s *accountRepoStub) ConfirmEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return authErrors.ErrNotFound
	}
	a.Confirmed = true
	s.accounts[email] = a
	return nil
}

func (s *accountRepoStub) UpdateAvatar(ctx context.Context, email, url string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return model.Account{}, authErrors.ErrNotFound
	}
	a.Avatar = url
	s.accounts[email] = a
	return a, nil
}

func (s *accountRepoStub) storedRefreshToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[email].RefreshToken
}

func newSvc(t *testing.T) (AuthService, *accountRepoStub) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})

	repoStub := newAccountRepoStub()
	identities := cache.New(client, 900*time.Second)
	codec := token.NewCodec(&config.Config{
		SecretKey:       "test-secret",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 30 * time.Minute,
		ConfirmTokenTTL: 7 * 24 * time.Hour,
	})

	return NewAuthService(repoStub, identities, codec, validator.New()), repoStub
}

func signupAndConfirm(t *testing.T, svc AuthService, repoStub *accountRepoStub, email, password string) {
	t.Helper()
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupDTO{Username: "tester", Email: email, Password: password})
	require.NoError(t, err)

	confirmTok, err := svc.IssueConfirmationToken(email)
	require.NoError(t, err)
	got, err := svc.RedeemConfirmation(confirmTok)
	require.NoError(t, err)
	require.Equal(t, email, got)

	require.NoError(t, repoStub.ConfirmEmail(ctx, got))
}

func TestSignup_CreatesUnconfirmedAccount(t *testing.T) {
	svc, _ := newSvc(t)
	ctx := context.Background()

	account, err := svc.Signup(ctx, dto.SignupDTO{Username: "tester", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	require.False(t, account.Confirmed)
	require.NotEmpty(t, account.Avatar)
	require.NotEqual(t, "secret1", account.PasswordHash)

	// unconfirmed accounts cannot authenticate
	_, err = svc.Authenticate(ctx, dto.SigninDTO{Email: "a@b.com", Password: "secret1"})
	require.ErrorIs(t, err, authErrors.ErrAccountNotConfirmed)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := newSvc(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupDTO{Username: "tester", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, dto.SignupDTO{Username: "tester", Email: "a@b.com", Password: "secret1"})
	require.ErrorIs(t, err, authErrors.ErrAlreadyExists)
}

func TestAuthenticate_AfterConfirmation(t *testing.T) {
	svc, repoStub := newSvc(t)
	ctx := context.Background()

	signupAndConfirm(t, svc, repoStub, "a@b.com", "secret1")

	pair, err := svc.Authenticate(ctx, dto.SigninDTO{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "bearer", pair.TokenType)
	require.Equal(t, pair.RefreshToken, repoStub.storedRefreshToken("a@b.com"))
}

func TestAuthenticate_NoEnumeration(t *testing.T) {
	svc, repoStub := newSvc(t)
	ctx := context.Background()

	signupAndConfirm(t, svc, repoStub, "a@b.com", "secret1")

	// wrong password and unknown email fail with the same kind
	_, err := svc.Authenticate(ctx, dto.SigninDTO{Email: "a@b.com", Password: "wrongpass"})
	require.ErrorIs(t, err, authErrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, dto.SigninDTO{Email: "nobody@x.com", Password: "x"})
	require.ErrorIs(t, err, authErrors.ErrInvalidCredentials)
}

func TestRefresh_RotationRevokesPreviousToken(t *testing.T) {
	svc, repoStub := newSvc(t)
	ctx := context.Background()

	signupAndConfirm(t, svc, repoStub, "u@x.com", "secret1")

	pair, err := svc.Authenticate(ctx, dto.SigninDTO{Email: "u@x.com", Password: "secret1"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// the previous refresh token is single-use: rotation revoked it
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, authErrors.ErrInvalidToken)

	// the current one still works
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, repoStub := newSvc(t)
	ctx := context.Background()

	signupAndConfirm(t, svc, repoStub, "a@b.com", "secret1")
	pair, err := svc.Authenticate(ctx, dto.SigninDTO{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, authErrors.ErrInvalidToken)
}

func TestRefresh_ConcurrentLastWriterWins(t *testing.T) {
	svc, repoStub := newSvc(t)
	ctx := context.Background()

	signupAndConfirm(t, svc, repoStub, "u@x.com", "secret1")
	pair, err := svc.Authenticate(ctx, dto.SigninDTO{Email: "u@x.com", Password: "secret1"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]model.TokenPair, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Refresh(ctx, pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	// both may succeed; at least one must
	var succeeded []model.TokenPair
	for i := range errs {
		if errs[i] == nil {
			succeeded = append(succeeded, results[i])
		} else {
			require.ErrorIs(t, errs[i], authErrors.ErrInvalidToken)
		}
	}
	require.NotEmpty(t, succeeded)

	// only the token from whichever write landed last remains valid
	stored := repoStub.storedRefreshToken("u@x.com")
	var matched bool
	for _, p := range succeeded {
		if p.RefreshToken == stored {
			matched = true
		} else {
			_, err := svc.Refresh(ctx, p.RefreshToken)
			require.ErrorIs(t, err, authErrors.ErrInvalidToken)
		}
	}
	require.True(t, matched, "stored token must come from one of the successful rotations")
}

func TestResolveIdentity_CacheHitAndMissAgree(t *testing.T) {
	svc, repoStub := newSvc(t)
	ctx := context.Background()

	signupAndConfirm(t, svc, repoStub, "a@b.com", "secret1")
	pair, err := svc.Authenticate(ctx, dto.SigninDTO{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	miss, err := svc.ResolveIdentity(ctx, pair.AccessToken)
	require.NoError(t, err)

	hit, err := svc.ResolveIdentity(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.Equal(t, miss.ID, hit.ID)
	require.Equal(t, miss.Email, hit.Email)
	require.Equal(t, miss.Confirmed, hit.Confirmed)
	require.Equal(t, miss.PasswordHash, hit.PasswordHash)
}

func TestResolveIdentity_Errors(t *testing.T) {
	svc, repoStub := newSvc(t)
	ctx := context.Background()

	signupAndConfirm(t, svc, repoStub, "a@b.com", "secret1")
	pair, err := svc.Authenticate(ctx, dto.SigninDTO{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	// refresh token is not an access token
	_, err = svc.ResolveIdentity(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, authErrors.ErrInvalidToken)

	_, err = svc.ResolveIdentity(ctx, "garbage")
	require.ErrorIs(t, err, authErrors.ErrInvalidToken)

	// same signing secret, but the account does not exist in this store:
	// covers an account deleted after the token was issued
	other, _ := newSvc(t)
	_, err = other.ResolveIdentity(ctx, pair.AccessToken)
	require.ErrorIs(t, err, authErrors.ErrInvalidToken)
}

func TestRedeemConfirmation_Errors(t *testing.T) {
	svc, _ := newSvc(t)

	_, err := svc.RedeemConfirmation("garbage")
	require.ErrorIs(t, err, authErrors.ErrConfirmation)
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newSvc(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupDTO{Username: "x", Email: "not-an-email", Password: "p"})
	require.ErrorIs(t, err, authErrors.ErrInvalidArgument)
}
