package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Scope restricts which operation may consume a token. A valid signature
// is not enough: decode callers state the scope they expect.
type Scope string

const (
	ScopeAccess       Scope = "access"
	ScopeRefresh      Scope = "refresh"
	ScopeEmailConfirm Scope = "email-confirm"
)

type Claims struct {
	jwt.RegisteredClaims
	Scope Scope `json:"scope"`
}

type Codec interface {
	IssueAccess(email string) (string, error)
	IssueRefresh(email string) (string, error)
	IssueConfirmation(email string) (string, error)
	Decode(raw string, want Scope) (Claims, error)
}
