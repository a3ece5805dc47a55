package repo

import (
	"context"

	"github.com/Daryna22/contacts-service/internal/auth/model"
)

type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
	Limit     int
	Offset    int
}

type ContactRepo interface {
	List(ctx context.Context, accountID uint, f ContactFilter) ([]model.Contact, error)

	GetByID(ctx context.Context, accountID, id uint) (model.Contact, error)

	Create(ctx context.Context, c model.Contact) (model.Contact, error)

	Update(ctx context.Context, c model.Contact) (model.Contact, error)

	Delete(ctx context.Context, accountID, id uint) error

	// UpcomingBirthdays lists contacts whose birthday falls within the
	// next days calendar days.
	UpcomingBirthdays(ctx context.Context, accountID uint, days int) ([]model.Contact, error)
}
