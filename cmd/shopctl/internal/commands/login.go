package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mhotoys/shopctl/internal/session"
	"github.com/mhotoys/shopctl/internal/validate"
)

// LoginCmd signs in and establishes the cookie-backed session.
type LoginCmd struct {
	Username   string `help:"Account username" short:"u"`
	Password   string `help:"Account password (prompted when omitted)" short:"p"`
	RememberMe bool   `help:"Request an extended session" name:"remember-me"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	if l.Username == "" {
		value, err := prompt("Username: ")
		if err != nil {
			return err
		}
		l.Username = value
	}
	if l.Password == "" {
		value, err := prompt("Password: ")
		if err != nil {
			return err
		}
		l.Password = value
	}

	creds := session.Credentials{
		Username:   l.Username,
		Password:   l.Password,
		RememberMe: l.RememberMe,
	}
	if err := validate.Credentials(creds); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	app, err := setup(ctx, globals, session.LoginRoute)
	if err != nil {
		return err
	}

	result, err := app.Manager.Login(ctx, creds)
	if err != nil {
		var loginErr *session.LoginError
		if errors.As(err, &loginErr) {
			return errors.New(loginErr.Error())
		}
		return err
	}

	if result.TwoFactorRequired {
		fmt.Printf("Two-factor authentication required for %s.\n", result.User.Username)
		fmt.Println("Complete the second factor in the web storefront, then run 'shopctl login' again.")
		return nil
	}

	fmt.Printf("Signed in as %s <%s>.\n", result.User.Username, result.User.Email)
	if app.Manager.Session().IsAdmin() {
		fmt.Println("Administrator commands are available under 'shopctl admin'.")
	}

	return nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(value), nil
}
