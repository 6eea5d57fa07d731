package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/mhotoys/shopctl/internal/api"
	"github.com/mhotoys/shopctl/internal/models"
	"github.com/mhotoys/shopctl/internal/session"
)

// AdminCmd is the back-office surface. Every subcommand requires the
// administrator role; missing it denies in place rather than redirecting.
type AdminCmd struct {
	Stats    AdminStatsCmd    `cmd:"" help:"Show dashboard statistics"`
	Users    AdminUsersCmd    `cmd:"" help:"Manage user accounts"`
	Products AdminProductsCmd `cmd:"" help:"Manage the catalog"`
}

// AdminStatsCmd prints the dashboard summary.
type AdminStatsCmd struct {
	Retry bool `help:"Retry on network failure" default:"false"`
}

func (a *AdminStatsCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "admin stats")
	if err != nil {
		return err
	}

	if err := app.require("admin stats", session.RequireAdmin); err != nil {
		return err
	}

	fetch := func() (*models.Statistics, error) {
		var stats models.Statistics
		if err := app.Client.Get(ctx, "/admin/statistics", nil, &stats); err != nil {
			if a.Retry && errors.Is(err, api.ErrNetworkUnreachable) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return &stats, nil
	}

	stats, err := backoff.Retry(ctx, fetch,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(4),
	)
	if err != nil {
		return fmt.Errorf("failed to fetch statistics: %w", err)
	}

	fmt.Printf("Total users:               %d\n", stats.TotalUsers)
	fmt.Printf("Active users:              %d\n", stats.ActiveUsers)
	fmt.Printf("Locked accounts:           %d\n", stats.LockedAccounts)
	fmt.Printf("New users (last week):     %d\n", stats.NewUsersLastWeek)
	fmt.Printf("New users (last month):    %d\n", stats.NewUsersLastMonth)
	fmt.Printf("Users with failed logins:  %d\n", stats.UsersWithFailedAttempts)

	return nil
}
