package main

import (
	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/service/installer"
	"github.com/sandevgo/chatgate/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Create the runtime directory and its .env interactively",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()

		// run wizard (includes save step)
		if _, err := installer.RunWizard(runtimePath); err != nil {
			return err
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Installation complete! You can now run 'chatgate start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
