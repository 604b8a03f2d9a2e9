package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"creatorflow/contexts/campaign-fulfillment/fulfillment-service/domain/entities"
	"creatorflow/internal/app/bootstrap"
	"creatorflow/internal/platform/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type runtimeOpener func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*bootstrap.Runtime, error)

type cli struct {
	v    *viper.Viper
	open runtimeOpener
}

// newRootCmd builds the operator CLI. Settings come from flags, then
// FULFILLMENTCTL_* variables, then an optional config file, and finally the
// service environment read by the config package.
func newRootCmd(open runtimeOpener) *cobra.Command {
	c := &cli{v: viper.New(), open: open}
	var cfgFile string

	root := &cobra.Command{
		Use:           "fulfillmentctl",
		Short:         "Operate campaign fulfillment: shipments, payments and payouts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile == "" {
				return nil
			}
			c.v.SetConfigFile(cfgFile)
			if err := c.v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "optional config file (yaml, json or toml)")
	flags.Bool("json", false, "print JSON instead of tables")
	flags.String("actor", "ops-cli", "operations actor id recorded in the audit log")
	flags.String("database-driver", "", "postgres or sqlite")
	flags.String("postgres-dsn", "", "PostgreSQL DSN")
	flags.String("sqlite-path", "", "SQLite database file")
	flags.String("event-bus", "", "inprocess or nats")
	flags.String("nats-url", "", "NATS server URL")

	for key, name := range map[string]string{
		"json":                  "json",
		"actor":                 "actor",
		"database.driver":       "database-driver",
		"database.postgres_dsn": "postgres-dsn",
		"database.sqlite_path":  "sqlite-path",
		"events.bus":            "event-bus",
		"events.nats_url":       "nats-url",
	} {
		_ = c.v.BindPFlag(key, flags.Lookup(name))
	}
	c.v.SetEnvPrefix("FULFILLMENTCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(
		c.migrateCmd(),
		c.relayCmd(),
		c.paymentsCmd(),
		c.payoutsCmd(),
		c.shipmentsCmd(),
		c.tasksCmd(),
	)
	return root
}

// config layers CLI overrides over the service environment.
func (c *cli) config() (config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return config.Config{}, err
	}
	if value := c.v.GetString("database.driver"); value != "" {
		cfg.DatabaseDriver = value
	}
	if value := c.v.GetString("database.postgres_dsn"); value != "" {
		cfg.PostgresDSN = value
	}
	if value := c.v.GetString("database.sqlite_path"); value != "" {
		cfg.SQLitePath = value
	}
	if value := c.v.GetString("events.bus"); value != "" {
		cfg.EventBus = value
	}
	if value := c.v.GetString("events.nats_url"); value != "" {
		cfg.NATSURL = value
	}
	cfg.Normalize()
	return cfg, cfg.Validate()
}

func (c *cli) actor() entities.Actor {
	return entities.Actor{ActorID: c.v.GetString("actor"), Role: entities.ActorRoleOperations}
}

func (c *cli) withRuntime(cmd *cobra.Command, run func(ctx context.Context, rt *bootstrap.Runtime) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	rt, err := c.open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	runErr := run(cmd.Context(), rt)
	if closeErr := rt.Close(); closeErr != nil && runErr == nil {
		return closeErr
	}
	return runErr
}

func (c *cli) printJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func requireArg(args []string, name string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New(name + " is required")
	}
	return strings.TrimSpace(args[0]), nil
}
