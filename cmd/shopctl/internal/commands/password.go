package commands

import (
	"context"
	"fmt"

	"github.com/mhotoys/shopctl/internal/session"
)

// PasswordCmd manages account passwords.
type PasswordCmd struct {
	Change PasswordChangeCmd `cmd:"" help:"Change the current user's password"`
	Forgot PasswordForgotCmd `cmd:"" help:"Request password reset instructions"`
	Reset  PasswordResetCmd  `cmd:"" help:"Reset a password with an emailed token"`
}

// PasswordChangeCmd changes the password of the signed-in user.
type PasswordChangeCmd struct {
	Current string `help:"Current password" required:""`
	New     string `help:"New password" required:""`
}

func (p *PasswordChangeCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "password change")
	if err != nil {
		return err
	}

	if err := app.require("password change", session.RequireUser); err != nil {
		return err
	}

	message, err := app.Manager.ChangePassword(ctx, p.Current, p.New)
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	if message == "" {
		message = "Password changed."
	}
	fmt.Println(message)
	return nil
}

// PasswordForgotCmd asks the server to email reset instructions.
type PasswordForgotCmd struct {
	Email string `arg:"" help:"Account email address"`
}

func (p *PasswordForgotCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "password forgot")
	if err != nil {
		return err
	}

	message, err := app.Manager.ForgotPassword(ctx, p.Email)
	if err != nil {
		return fmt.Errorf("failed to request reset: %w", err)
	}

	fmt.Println(message)
	return nil
}

// PasswordResetCmd completes a reset with the token from the email.
type PasswordResetCmd struct {
	Token    string `help:"Reset token from the email" required:""`
	Password string `help:"New password" required:""`
}

func (p *PasswordResetCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "password reset")
	if err != nil {
		return err
	}

	message, err := app.Manager.ResetPassword(ctx, p.Token, p.Password)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	fmt.Println(message)
	return nil
}
