package model

import "time"

// Account is the identity record. The session core only writes Confirmed
// and RefreshToken; everything else belongs to signup/profile flows.
type Account struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:50"`
	Email        string    `gorm:"size:250;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password;size:255;not null"`
	Confirmed    bool      `gorm:"not null;default:false"`
	Avatar       string    `gorm:"size:255"`
	RefreshToken string    `gorm:"type:text"`
	CreatedAt    time.Time
}

func (Account) TableName() string { return "users" }

type Contact struct {
	ID             uint      `gorm:"primaryKey"`
	FirstName      string    `gorm:"size:50;not null"`
	LastName       string    `gorm:"size:50;not null"`
	Email          string    `gorm:"size:50;not null"`
	PhoneNumber    string    `gorm:"size:13;not null"`
	BirthDate      time.Time `gorm:"type:date;not null"`
	AdditionalInfo string    `gorm:"size:250"`
	CreatedAt      time.Time
	AccountID      uint `gorm:"column:user_id"`
}

func (Contact) TableName() string { return "contacts" }

// TokenPair is what a successful authenticate/refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
