package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
)

// CredentialVerifier checks an email/password pair and returns the matching profile.
// Unknown pairs yield INVALID_CREDENTIALS.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*models.Session, error)
}

type fixedAccount struct {
	hash    []byte
	session models.Session
}

// FixedCredentialVerifier accepts the two built-in demo accounts.
type FixedCredentialVerifier struct {
	accounts map[string]fixedAccount
}

// NewFixedCredentialVerifier hashes the demo passwords once at construction.
func NewFixedCredentialVerifier() *FixedCredentialVerifier {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &FixedCredentialVerifier{accounts: map[string]fixedAccount{
		"admin@example.com": {
			hash: hash,
			session: models.Session{
				ID:    "1",
				Name:  "Admin User",
				Email: "admin@example.com",
				Role:  models.RoleAdmin,
			},
		},
		"student@example.com": {
			hash: hash,
			session: models.Session{
				ID:         "2",
				Name:       "Student User",
				Email:      "student@example.com",
				Role:       models.RoleStudent,
				StudentID:  "STU-2023-1234",
				Department: "Computer Science",
				Program:    "BSc Computer Science",
			},
		},
	}}
}

// Verify compares the password against the stored bcrypt hash of the account.
func (v *FixedCredentialVerifier) Verify(ctx context.Context, email, password string) (*models.Session, error) {
	account, ok := v.accounts[email]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword(account.hash, []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid email or password")
	}
	session := account.session
	return &session, nil
}
