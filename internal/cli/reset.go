package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/terraincognita07/elan/internal/db"
	"github.com/terraincognita07/elan/internal/security"
	"github.com/terraincognita07/elan/internal/services"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

// RunResetPasswordCommand replaces the user's password with a generated one
// and prints it once.
func RunResetPasswordCommand(ctx context.Context, database *gorm.DB, email string, out io.Writer) error {
	normalizedEmail, err := services.NormalizeEmail(email)
	if err != nil {
		return fmt.Errorf("invalid email address %q", email)
	}

	identity := services.NewIdentityService(db.NewUserRepository(database))
	user, err := identity.Resolve(ctx, normalizedEmail)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s not found", normalizedEmail)
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}
	if err := identity.SetPassword(ctx, user.ID, temporaryPassword); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	fmt.Fprintln(out, "Password reset successful")
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	return nil
}
