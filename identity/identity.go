// Package identity holds the minimal user model feeding identity claims into
// the token pipeline.
package identity

import (
	"strconv"

	"github.com/jrsteele09/go-oidc-core/claims"
	"golang.org/x/crypto/bcrypt"
)

// User is an authenticated end user.
type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Username     string   `json:"username"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles"`
	Verified     bool     `json:"verified"`
	Blocked      bool     `json:"blocked"`
}

// Claims returns the user's profile claim set, typed with the standard OIDC
// claim names so scope filters apply directly.
func (u *User) Claims() []claims.Claim {
	userClaims := []claims.Claim{
		claims.New("name", u.FirstName+" "+u.LastName),
		claims.New("given_name", u.FirstName),
		claims.New("family_name", u.LastName),
		claims.New("preferred_username", u.Username),
		claims.New("email", u.Email),
		claims.New("email_verified", strconv.FormatBool(u.Verified)),
	}
	for _, role := range u.Roles {
		userClaims = append(userClaims, claims.New("role", role))
	}
	return userClaims
}

// HashPassword returns the bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
