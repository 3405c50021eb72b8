package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/pkgdocs/cmd/pkgdocs/commands"
	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("pkgdocs"),
		kong.Description("Generate static-hosting-ready API documentation for a multi-target Swift package"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
	)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(commands.NormalizeArgs(os.Args[1:]))
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = kctx.Run(&commands.Global{Context: ctx}, cli)
	stop()
	if err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
