package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"

	"git.home.luguber.info/inful/mdlinkcheck/cmd/mdlinkcheck/commands"
	ferrors "git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/mdlinkcheck/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &commands.CLI{}
	global := &commands.Global{Context: ctx, Stdout: os.Stdout}
	parser := kong.Parse(cli,
		kong.Name("mdlinkcheck"),
		kong.Description("Find broken links, images and anchors in Markdown documentation."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	err := parser.Run()
	if err == nil {
		return
	}
	stop()
	if errors.Is(err, commands.ErrFindings) {
		os.Exit(1)
	}
	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
