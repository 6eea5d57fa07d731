package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mhotoys/shopctl/internal/api"
	"github.com/mhotoys/shopctl/internal/session"
	"github.com/mhotoys/shopctl/internal/validate"
)

// RegisterCmd creates a new account. Registration is not implicit login;
// the session stays as it was.
type RegisterCmd struct {
	Username string `help:"Desired username" required:""`
	Email    string `help:"Account email address" required:""`
	Password string `help:"Account password" required:""`
}

func (r *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	signup := session.Signup{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
	}
	if err := validate.Signup(signup); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}

	app, err := setup(ctx, globals, "register")
	if err != nil {
		return err
	}

	message, err := app.Manager.Register(ctx, signup)
	if err != nil {
		var validationErr *api.ValidationError
		if errors.As(err, &validationErr) {
			printFieldErrors(validationErr.Fields)
			return errors.New("registration rejected")
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	if message == "" {
		message = "Account created."
	}
	fmt.Println(message)
	fmt.Println("Run 'shopctl login' to sign in.")

	return nil
}

func printFieldErrors(fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %s: %s\n", name, fields[name])
	}
}
