package auth

import (
	"context"
	"errors"
	"fmt"

	"district-digest/internal/domain/entity"
	"district-digest/internal/repository"
	authservice "district-digest/internal/service/auth"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash compared against when the username is
// unknown, so that lookups for missing and existing users take roughly the
// same time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// DBAuthProvider authenticates against accounts stored in the user
// repository. Passwords are verified with bcrypt.
type DBAuthProvider struct {
	users             repository.UserRepository
	minPasswordLength int
	weakPasswords     []string
}

// NewDBAuthProvider creates a new database-backed auth provider.
func NewDBAuthProvider(users repository.UserRepository, minPasswordLength int, weakPasswords []string) *DBAuthProvider {
	return &DBAuthProvider{
		users:             users,
		minPasswordLength: minPasswordLength,
		weakPasswords:     weakPasswords,
	}
}

// ValidateCredentials validates credentials against the user repository.
// The stored bcrypt hash is compared even when the user does not exist to
// keep response timing independent of username validity.
func (p *DBAuthProvider) ValidateCredentials(ctx context.Context, creds authservice.Credentials) error {
	// Check if credentials are empty
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("credentials must not be empty")
	}

	user, err := p.users.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			// Burn a bcrypt comparison so unknown usernames are not
			// distinguishable by response time
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(creds.Password))
			return fmt.Errorf("invalid credentials")
		}
		return fmt.Errorf("user lookup failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return fmt.Errorf("invalid credentials")
	}

	return nil
}

// IdentifyUser returns the stored role for a given username.
// Returns an error if the username is not recognized.
func (p *DBAuthProvider) IdentifyUser(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username must not be empty")
	}

	user, err := p.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return "", fmt.Errorf("user not found")
		}
		return "", fmt.Errorf("user lookup failed: %w", err)
	}

	return user.Role, nil
}

// GetRequirements returns the password requirements.
// The policy is enforced when accounts are created or seeded, not at login:
// existing hashes cannot be checked against it.
func (p *DBAuthProvider) GetRequirements() authservice.CredentialRequirements {
	return authservice.CredentialRequirements{
		MinPasswordLength: p.minPasswordLength,
		WeakPasswords:     p.weakPasswords,
	}
}

// Name returns the provider name.
func (p *DBAuthProvider) Name() string {
	return "db"
}
