package commands

import (
	"context"
	"fmt"

	"github.com/mhotoys/shopctl/internal/session"
)

// WhoamiCmd prints the authenticated user's profile.
type WhoamiCmd struct{}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "whoami")
	if err != nil {
		return err
	}

	if err := app.require("whoami", session.RequireUser); err != nil {
		return err
	}

	profile, err := app.Manager.Profile(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	fmt.Printf("Username:    %s\n", profile.Username)
	fmt.Printf("Email:       %s\n", profile.Email)
	fmt.Printf("Roles:       %v\n", profile.Roles)
	fmt.Printf("Enabled:     %v\n", profile.Enabled)
	fmt.Printf("Two-factor:  %v\n", profile.TwoFactorEnabled)
	if profile.LastLoginDate != "" {
		fmt.Printf("Last login:  %s\n", profile.LastLoginDate)
	}

	return nil
}
