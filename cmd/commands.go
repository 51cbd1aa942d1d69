// FilePath: cmd/commands.go
package main

import (
	"context"
	"fmt"

	"github.com/secador-solar/sensorhub/internal/config"
	"github.com/secador-solar/sensorhub/internal/database"
	"github.com/secador-solar/sensorhub/internal/logging"
	"github.com/secador-solar/sensorhub/internal/models"
	"github.com/secador-solar/sensorhub/internal/server"
	"github.com/spf13/cobra"
)

const serviceName = "sensorhub"

type cliState struct {
	configPath string
	cfg        *config.Config
}

// rootCommand builds the sensorhub CLI. Running it without a subcommand
// serves the API.
func rootCommand() *cobra.Command {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Sensor hub for solar dryer controllers",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.serve(true)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&state.configPath, "config", "c", "", "path to a config file (default ./config/config.yaml)")

	rootCmd.AddCommand(
		serveCommand(state),
		migrateCommand(state),
		userCommand(state),
	)
	return rootCmd
}

func (s *cliState) load() error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logging.Init(cfg.Monitoring.LogLevel, serviceName); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	s.cfg = cfg
	return nil
}

func (s *cliState) serve(banner bool) error {
	if banner {
		// Clear console and draw logo
		ClearConsole()
		DrawLogo()
	}
	logging.L.Infof("[Main] Starting Sensor Hub v%s", Version)

	srv := server.New(s.cfg, Version)
	if err := srv.Start(); err != nil {
		logging.L.Errorf("[Main] Server error: %v", err)
		return err
	}
	return nil
}

func serveCommand(state *cliState) *cobra.Command {
	var noBanner bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.serve(!noBanner)
		},
	}
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "do not clear the console and draw the logo")
	return cmd
}

func migrateCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := database.Open(ctx, state.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.Migrate(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s); schema at version %d\n", applied, database.LatestVersion())
			return nil
		},
	}
}

func userCommand(state *cliState) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts",
	}

	var in models.UserCreate
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register an operator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := server.OpenDatabase(ctx, state.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			svc, err := server.NewHubService(state.cfg, db, nil, nil)
			if err != nil {
				return err
			}

			user, err := svc.Register(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&in.Username, "username", "u", "", "username")
	createCmd.Flags().StringVarP(&in.Email, "email", "e", "", "email address")
	createCmd.Flags().StringVarP(&in.Password, "password", "p", "", "password")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createCmd)
	return userCmd
}
