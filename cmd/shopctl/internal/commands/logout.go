package commands

import (
	"context"
	"fmt"
)

// LogoutCmd clears the session. Local state is cleared even when the
// remote logout call fails.
type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "logout")
	if err != nil {
		return err
	}

	app.Manager.Logout(ctx)
	fmt.Println("Signed out.")

	return nil
}
