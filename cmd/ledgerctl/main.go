package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rental-ledger-backend/internal/config"
	"rental-ledger-backend/internal/logger"
)

const (
	flagConfig  = "config"
	flagEnvFile = "env-file"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ledgerctl: %v\n", err)
		os.Exit(1)
	}
}

// cliState carries the loaded configuration from the root command to its subcommands
type cliState struct {
	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	state := &cliState{}
	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operator tool for the rental ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.load(cmd)
		},
	}

	cmd.PersistentFlags().String(flagConfig, "config/config.dev.yaml", "Path to configuration file")
	cmd.PersistentFlags().String(flagEnvFile, ".env", "Optional dotenv file loaded before the configuration")

	cmd.AddCommand(
		newMigrateCommand(state),
		newReconcileCommand(state),
		newDepositCommand(state),
		newPaymentLogsCommand(state),
		newTokenCommand(state),
	)
	return cmd
}

func (s *cliState) load(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString(flagEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	path, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	// stdout is reserved for command output
	logger.InitializeWithWriter(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	s.cfg = cfg
	return nil
}
