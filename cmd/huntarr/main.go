package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/Fiala06/Huntarr.io/internal/app"
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	cmd := &cli.Command{
		Name:    "huntarr-tui",
		Usage:   "Terminal dashboard for a Huntarr server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "override config path (default ~/.config/huntarr-tui/config.toml)",
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Huntarr server URL (overrides config)",
			},
			&cli.StringFlag{
				Name:  "prefs",
				Usage: "override preferences path",
			},
			&cli.IntFlag{
				Name:  "poll",
				Usage: "stats refresh interval in seconds",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return app.Run(ctx, app.Options{
				ConfigPath: cmd.String("config"),
				PrefsPath:  cmd.String("prefs"),
				ServerURL:  cmd.String("server"),
				PollEvery:  int(cmd.Int("poll")),
			})
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "huntarr-tui: %v\n", err)
		return 1
	}
	return 0
}
