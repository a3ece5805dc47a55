package dto

type SignupDTO struct {
	Username string `json:"username" validate:"required,min=5,max=16"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type SigninDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RequestEmailDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type AvatarDTO struct {
	Avatar string `json:"avatar" validate:"required,url,max=255"`
}

type ContactDTO struct {
	FirstName      string `json:"first_name"      validate:"required,max=50"`
	LastName       string `json:"last_name"       validate:"required,max=50"`
	Email          string `json:"email"           validate:"required,email,max=50"`
	PhoneNumber    string `json:"phone_number"    validate:"required,len=13"`
	BirthDate      string `json:"birth_date"      validate:"required,datetime=2006-01-02"`
	AdditionalInfo string `json:"additional_info" validate:"max=250"`
}
