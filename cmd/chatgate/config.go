package main

import (
	"fmt"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/pkg/env"
	"github.com/spf13/cobra"
)

var showSecrets bool

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration",
	Long:         `Prints every setting as .env lines, after loading the runtime .env file. Secrets are masked unless --secrets is given.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		sections := []struct {
			name string
			cfg  any
		}{
			{"App", config.NewAppConfig(ctx)},
			{"Gate", config.NewGateConfig(ctx)},
			{"Memory", config.NewMemoryConfig(ctx)},
			{"Bot", config.NewBotConfig(ctx)},
			{"LLM", config.NewLLMConfig(ctx)},
			{"Embedding", config.NewEmbeddingConfig(ctx)},
			{"Health", config.NewHealthConfig(ctx)},
		}

		out := cmd.OutOrStdout()
		for _, s := range sections {
			body, err := env.MarshalEnv(s.cfg, !showSecrets)
			if err != nil {
				return fmt.Errorf("render %s config: %w", s.name, err)
			}
			fmt.Fprintf(out, "# %s\n%s\n", s.name, body)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&showSecrets, "secrets", false, "print secret values unmasked")
	rootCmd.AddCommand(configCmd)
}
