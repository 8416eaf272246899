package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/reqvault/reqvault/pkg/query"
	"github.com/reqvault/reqvault/pkg/replay"
)

var replayTarget string

// replayCmd is the Cobra command for "reqvault replay".
var replayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Re-issue a captured request against a live endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cfg, logger, err := newEngine()
		if err != nil {
			return err
		}

		target := cfg.Replay.Target
		if replayTarget != "" {
			target = replayTarget
		}
		if target == "" {
			return errors.New("no replay target: set replay.target in the config file or pass --target")
		}

		entry, err := query.New(engine, logger).Find(args[0])
		if err != nil {
			return err
		}

		result, err := replay.New(target, nil).Replay(cmd.Context(), entry)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayTarget, "target", "", "base URL to replay against (overrides config)")
	rootCmd.AddCommand(replayCmd)
}
