package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/config"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/model"
)

// Authenticate checks the credentials and returns the user's full name.
// Store failures are returned as they are; only a failed match is
// ErrNotFound.
func (s *FinanceTracker) Authenticate(ctx context.Context, username, password string) (string, error) {
	users, err := s.repo.GetUsers(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}
	for _, u := range users {
		if passwordMatches(u.Password, password) {
			return u.FullName, nil
		}
	}
	return "", ErrNotFound
}

// Register adds a new user. The existence check and the append are separate
// store calls, so two concurrent registrations of one name can both succeed.
func (s *FinanceTracker) Register(ctx context.Context, username, password, fullName string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	// Stored as given, such a password would be read back as a bcrypt hash
	// and could never match.
	if s.hashing != config.HashingBcrypt && isBcryptHash(password) {
		return fmt.Errorf("%w: password must not start with a bcrypt prefix", ErrInvalidInput)
	}

	existing, err := s.repo.GetUsers(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if len(existing) > 0 {
		return ErrAlreadyExists
	}

	stored, err := s.storedPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.CreateUser(ctx, &model.User{Username: username, Password: stored, FullName: fullName}); err != nil {
		return err
	}
	log.Printf("INFO: Registered user %s", username)
	return nil
}

func (s *FinanceTracker) storedPassword(password string) (string, error) {
	if s.hashing != config.HashingBcrypt {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// passwordMatches accepts both bcrypt hashes and plaintext rows.
func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
