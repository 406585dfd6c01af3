package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/convy/flow/pkg/clients"
	flowcmd "github.com/convy/flow/pkg/cmd"
	"github.com/convy/flow/pkg/log"
	"github.com/convy/flow/pkg/registry"
)

const defaultPort = 9091

func main() {
	cmd := &cli.Command{
		Name:                  "flow-api",
		Usage:                 "Manage workflows and ingest inbound conversation events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Storage URL (file://./data or redis://host:6379)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("flow-api")

			logger.InfoContext(ctx, "Initializing flow API")

			persist := flowcmd.NewPersistence(command.String("database-url"))
			defer func() {
				if err := persist.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := flowcmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			reg := registry.NewRegistry(logger)
			registry.RegisterDefaults(reg, registry.Dependencies{
				Messenger: clients.NewLogMessenger(logger),
				AI:        clients.NewLogAIClient(logger),
				CRM:       clients.NewLogCRMService(logger),
				Billing:   clients.NewLogBillingService(logger),
				Notifier:  clients.NewLogNotifier(logger),
			})

			api := NewAPI(logger, persist, reg, eventBus)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
