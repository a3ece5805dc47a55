package postgres

import (
	"context"
	"errors"

	customErrors "github.com/Daryna22/contacts-service/internal/auth/errors"
	"github.com/Daryna22/contacts-service/internal/auth/model"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

type AccountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Create(ctx context.Context, a model.Account) (model.Account, error) {
	res := r.db.WithContext(ctx).Create(&a)
	if err := res.Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.Account{}, customErrors.ErrAlreadyExists
		}
		return model.Account{}, customErrors.WrapInternal(err, "Create")
	}
	return a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	var a model.Account
	res := r.db.WithContext(ctx).Where("email = ?", email).First(&a)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Account{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "GetByEmail")
	}

	return a, nil
}

func (r *AccountRepo) UpdateRefreshToken(ctx context.Context, id uint, token string) error {
	res := r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).
		Update("refresh_token", token)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdateRefreshToken")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}

func (r *AccountRepo) ConfirmEmail(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Model(&model.Account{}).Where("email = ?", email).
		Update("confirmed", true)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "ConfirmEmail")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}

func (r *AccountRepo) UpdateAvatar(ctx context.Context, email, url string) (model.Account, error) {
	res := r.db.WithContext(ctx).Model(&model.Account{}).Where("email = ?", email).
		Update("avatar", url)
	if err := res.Error; err != nil {
		return model.Account{}, customErrors.WrapInternal(err, "UpdateAvatar")
	}
	if res.RowsAffected == 0 {
		return model.Account{}, customErrors.ErrNotFound
	}

	return r.GetByEmail(ctx, email)
}
