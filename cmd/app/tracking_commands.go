package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/parceltrack/cmd/app/commands"
	"github.com/allisson/parceltrack/internal/app"
	"github.com/allisson/parceltrack/internal/config"
)

func getTrackingCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "track",
			Usage:     "Look up a tracking code at the carrier",
			ArgsUsage: "<tracking-code>",
			Flags:     []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				trackingUseCase, err := container.TrackingUseCase()
				if err != nil {
					return err
				}

				return commands.RunTrack(
					ctx,
					trackingUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Args().First(),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "reconcile",
			Usage: "Run one reconciliation pass over every tracked order",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show the detected status changes without applying them",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				orderUseCase, err := container.OrderUseCase()
				if err != nil {
					return err
				}

				reconciler, err := container.Reconciler()
				if err != nil {
					return err
				}

				return commands.RunReconcile(
					ctx,
					orderUseCase,
					reconciler,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "clean-tracking-history",
			Usage: "Delete tracking lookup history older than specified days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Delete history entries older than this many days",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many entries would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				trackingUseCase, err := container.TrackingUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanTrackingHistory(
					ctx,
					trackingUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
