package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/mhotoys/shopctl/cmd/shopctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Login    commands.LoginCmd    `cmd:"" help:"Sign in to the storefront"`
		Register commands.RegisterCmd `cmd:"" help:"Create a new account"`
		Logout   commands.LogoutCmd   `cmd:"" help:"Sign out"`
		Whoami   commands.WhoamiCmd   `cmd:"" help:"Show the signed-in user"`
		Password commands.PasswordCmd `cmd:"" help:"Manage account passwords"`
		Products commands.ProductsCmd `cmd:"" help:"Browse the catalog"`
		Admin    commands.AdminCmd    `cmd:"" help:"Administrative back-office"`
		Debug    bool                 `help:"Enable debug mode."`
		Profile  string               `help:"Profile directory (default ~/.shopctl)."`
		Version  kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Profile: cli.Profile, Version: version})
	cmd.FatalIfErrorf(err)
}
