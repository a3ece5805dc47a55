package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Daryna22/contacts-service/internal/auth/errors"
	"github.com/Daryna22/contacts-service/internal/auth/model"
	"github.com/Daryna22/contacts-service/internal/repo"
	"gorm.io/gorm"
)

type ContactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

func (r *ContactRepo) List(ctx context.Context, accountID uint, f repo.ContactFilter) ([]model.Contact, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", accountID)

	if f.FirstName != "" {
		q = q.Where("first_name = ?", f.FirstName)
	}
	if f.LastName != "" {
		q = q.Where("last_name = ?", f.LastName)
	}
	if f.Email != "" {
		q = q.Where("email = ?", f.Email)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var contacts []model.Contact
	if err := q.Find(&contacts).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "List")
	}

	return contacts, nil
}

func (r *ContactRepo) GetByID(ctx context.Context, accountID, id uint) (model.Contact, error) {
	var c model.Contact
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, accountID).First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Contact{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "GetByID")
	}

	return c, nil
}

func (r *ContactRepo) Create(ctx context.Context, c model.Contact) (model.Contact, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "Create")
	}
	return c, nil
}

func (r *ContactRepo) Update(ctx context.Context, c model.Contact) (model.Contact, error) {
	res := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("id = ? AND user_id = ?", c.ID, c.AccountID).
		Updates(map[string]interface{}{
			"first_name":      c.FirstName,
			"last_name":       c.LastName,
			"email":           c.Email,
			"phone_number":    c.PhoneNumber,
			"birth_date":      c.BirthDate,
			"additional_info": c.AdditionalInfo,
		})
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "Update")
	}
	if res.RowsAffected == 0 {
		return model.Contact{}, customErrors.ErrNotFound
	}

	return r.GetByID(ctx, c.AccountID, c.ID)
}

func (r *ContactRepo) Delete(ctx context.Context, accountID, id uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", accountID).Delete(&model.Contact{}, id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "Delete")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}

func (r *ContactRepo) UpcomingBirthdays(ctx context.Context, accountID uint, days int) ([]model.Contact, error) {
	today := time.Now().Truncate(24 * time.Hour)
	until := today.AddDate(0, 0, days)

	var contacts []model.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND birth_date BETWEEN ? AND ?", accountID, today, until).
		Find(&contacts).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "UpcomingBirthdays")
	}

	return contacts, nil
}
