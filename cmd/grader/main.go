// Command grader scores a folder of answer sheets against a reference from
// the command line and mints API access tokens.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mrstrict/internal/config"
	"mrstrict/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("grader failed")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "grader",
		Short:         "MR.Strict answer sheet grader",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			logger.Setup(loaded.Log)
			cfg = loaded
			return nil
		},
	}

	configFn := func() *config.Config { return cfg }
	rootCmd.AddCommand(newEvaluateCmd(configFn))
	rootCmd.AddCommand(newTokenCmd(configFn))
	return rootCmd
}
