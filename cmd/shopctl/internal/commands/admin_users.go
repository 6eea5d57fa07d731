package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/mhotoys/shopctl/internal/models"
	"github.com/mhotoys/shopctl/internal/session"
)

// AdminUsersCmd manages user accounts.
type AdminUsersCmd struct {
	List    AdminUsersListCmd    `cmd:"" help:"List user accounts"`
	Show    AdminUsersShowCmd    `cmd:"" help:"Show one user account"`
	SetRole AdminUsersSetRoleCmd `cmd:"" name:"set-role" help:"Change a user's role"`
	Enable  AdminUsersEnableCmd  `cmd:"" help:"Enable an account"`
	Disable AdminUsersDisableCmd `cmd:"" help:"Disable an account"`
	Lock    AdminUsersLockCmd    `cmd:"" help:"Lock an account"`
	Unlock  AdminUsersUnlockCmd  `cmd:"" help:"Unlock an account"`
	Delete  AdminUsersDeleteCmd  `cmd:"" help:"Delete an account"`
}

// AdminUsersListCmd lists all accounts.
type AdminUsersListCmd struct{}

func (a *AdminUsersListCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "admin users list")
	if err != nil {
		return err
	}

	if err := app.require("admin users list", session.RequireAdmin); err != nil {
		return err
	}

	var users []models.AdminUser
	if err := app.Client.Get(ctx, "/admin/users", nil, &users); err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tENABLED\tLOCKED\tFAILED LOGINS")

	for _, user := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%v\t%d\n",
			user.ID,
			user.Username,
			user.Email,
			user.Enabled,
			!user.AccountNonLocked,
			user.FailedLoginAttempts)
	}

	w.Flush()
	return nil
}

// AdminUsersShowCmd shows one account.
type AdminUsersShowCmd struct {
	ID int64 `arg:"" help:"User ID"`
}

func (a *AdminUsersShowCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "admin users show")
	if err != nil {
		return err
	}

	if err := app.require("admin users show", session.RequireAdmin); err != nil {
		return err
	}

	var user models.AdminUser
	path := fmt.Sprintf("/admin/users/%d", a.ID)
	if err := app.Client.Get(ctx, path, nil, &user); err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	fmt.Printf("ID:             %d\n", user.ID)
	fmt.Printf("Username:       %s\n", user.Username)
	fmt.Printf("Email:          %s\n", user.Email)
	fmt.Printf("Enabled:        %v\n", user.Enabled)
	fmt.Printf("Locked:         %v\n", !user.AccountNonLocked)
	fmt.Printf("Two-factor:     %v\n", user.TwoFactorEnabled)
	fmt.Printf("Sign-up method: %s\n", user.SignUpMethod)
	fmt.Printf("Failed logins:  %d\n", user.FailedLoginAttempts)

	return nil
}

// AdminUsersSetRoleCmd changes an account's role.
type AdminUsersSetRoleCmd struct {
	ID   int64  `arg:"" help:"User ID"`
	Role string `help:"Role name (ROLE_USER or ROLE_ADMIN)" required:""`
}

func (a *AdminUsersSetRoleCmd) Run(ctx context.Context, globals *Globals) error {
	role := models.Role(a.Role)
	if role != models.RoleUser && role != models.RoleAdmin {
		return fmt.Errorf("unknown role %q (expected %s or %s)", a.Role, models.RoleUser, models.RoleAdmin)
	}

	app, err := setup(ctx, globals, "admin users set-role")
	if err != nil {
		return err
	}

	if err := app.require("admin users set-role", session.RequireAdmin); err != nil {
		return err
	}

	path := fmt.Sprintf("/admin/users/%d/role", a.ID)
	query := url.Values{"roleName": {a.Role}}
	if err := app.Client.Put(ctx, path, query, nil, nil); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}

	fmt.Printf("User %d role set to %s.\n", a.ID, a.Role)
	return nil
}

// AdminUsersEnableCmd enables an account.
type AdminUsersEnableCmd struct {
	ID int64 `arg:"" help:"User ID"`
}

func (a *AdminUsersEnableCmd) Run(ctx context.Context, globals *Globals) error {
	return flipUserFlag(ctx, globals, a.ID, "enable")
}

// AdminUsersDisableCmd disables an account.
type AdminUsersDisableCmd struct {
	ID int64 `arg:"" help:"User ID"`
}

func (a *AdminUsersDisableCmd) Run(ctx context.Context, globals *Globals) error {
	return flipUserFlag(ctx, globals, a.ID, "disable")
}

// AdminUsersLockCmd locks an account.
type AdminUsersLockCmd struct {
	ID int64 `arg:"" help:"User ID"`
}

func (a *AdminUsersLockCmd) Run(ctx context.Context, globals *Globals) error {
	return flipUserFlag(ctx, globals, a.ID, "lock")
}

// AdminUsersUnlockCmd unlocks an account.
type AdminUsersUnlockCmd struct {
	ID int64 `arg:"" help:"User ID"`
}

func (a *AdminUsersUnlockCmd) Run(ctx context.Context, globals *Globals) error {
	return flipUserFlag(ctx, globals, a.ID, "unlock")
}

// flipUserFlag drives the enable/disable/lock/unlock account endpoints,
// which share one shape.
func flipUserFlag(ctx context.Context, globals *Globals, id int64, action string) error {
	app, err := setup(ctx, globals, "admin users "+action)
	if err != nil {
		return err
	}

	if err := app.require("admin users "+action, session.RequireAdmin); err != nil {
		return err
	}

	path := fmt.Sprintf("/admin/users/%d/%s", id, action)
	if err := app.Client.Put(ctx, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to %s user: %w", action, err)
	}

	fmt.Printf("User %d: %s applied.\n", id, action)
	return nil
}

// AdminUsersDeleteCmd deletes an account.
type AdminUsersDeleteCmd struct {
	ID    int64 `arg:"" help:"User ID"`
	Force bool  `help:"Skip confirmation" default:"false"`
}

func (a *AdminUsersDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	if !a.Force {
		fmt.Printf("Delete user %d? This cannot be undone. [y/N]: ", a.ID)

		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	app, err := setup(ctx, globals, "admin users delete")
	if err != nil {
		return err
	}

	if err := app.require("admin users delete", session.RequireAdmin); err != nil {
		return err
	}

	path := fmt.Sprintf("/admin/users/%d", a.ID)
	if err := app.Client.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("User %d deleted.\n", a.ID)
	return nil
}
