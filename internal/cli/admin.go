package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/terraincognita07/elan/internal/db"
	"github.com/terraincognita07/elan/internal/services"
	"gorm.io/gorm"
)

var errPasswordMismatch = errors.New("passwords do not match")

// PasswordSource asks for a secret; prompt is shown to the operator.
type PasswordSource func(prompt string) (string, error)

// RunCreateAdminCommand creates an admin account, or promotes and re-keys an
// existing one.
func RunCreateAdminCommand(ctx context.Context, database *gorm.DB, email string, readPassword PasswordSource, out io.Writer) error {
	normalizedEmail, err := services.NormalizeEmail(email)
	if err != nil {
		return fmt.Errorf("invalid email address %q", email)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirmation, err := readPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("read password confirmation: %w", err)
	}
	if password != confirmation {
		return errPasswordMismatch
	}
	if err := services.ValidatePasswordStrength(password); err != nil {
		return fmt.Errorf("password must have 8+ characters with upper, lower and digit: %w", err)
	}

	identity := services.NewIdentityService(db.NewUserRepository(database))
	existing, err := identity.Resolve(ctx, normalizedEmail)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	userID := uint(0)
	if existing != nil {
		userID = existing.ID
		if err := identity.SetPassword(ctx, userID, password); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
	} else {
		user, err := identity.Register(ctx, services.RegistrationInput{Email: normalizedEmail, Password: password})
		if errors.Is(err, services.ErrEmailTaken) {
			return fmt.Errorf("email %s belongs to a deleted account", normalizedEmail)
		}
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		userID = user.ID
	}

	if err := identity.PromoteToAdmin(ctx, userID); err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	fmt.Fprintf(out, "Admin ready: %s\n", normalizedEmail)
	return nil
}
