package main

import (
	"errors"
	"fmt"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/service/memory"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:          "profile <user-id>",
	Short:        "Print what the bot remembers about a user",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		appCfg := config.NewAppConfig(ctx)
		if appCfg.StoreBackend == config.StoreMemory {
			return errors.New("the memory store keeps nothing between runs")
		}

		repo, closeRepo, err := initStorage(ctx, appCfg)
		if err != nil {
			return err
		}
		defer closeRepo()

		store := memory.NewStore(repo)
		if err := store.LoadUser(ctx, args[0]); err != nil {
			return err
		}

		state, ok := store.User(args[0])
		if !ok {
			return fmt.Errorf("no stored state for user %s", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "messages: %d, turns: %d, embeddings: %d\n",
			len(state.RawMessages), len(state.Conversations), len(state.Embeddings))
		if state.Profile == nil {
			fmt.Fprintln(out, "no profile yet")
			return nil
		}
		fmt.Fprintln(out, memory.FormatProfile(state.Profile))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
