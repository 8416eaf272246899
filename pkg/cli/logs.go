package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// logsCmd is the Cobra command for "reqvault logs".
var logsCmd = &cobra.Command{
	Use:   "logs [segment]",
	Short: "Print the entries of a segment",
	Long: `Print the captured entries of a segment as JSON. Without an argument
the current segment (highest numeric suffix) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, _, err := newEngine()
		if err != nil {
			return err
		}

		segment := ""
		if len(args) == 1 {
			segment = args[0]
		}

		entries, err := engine.Retrieve(segment)
		if err != nil {
			return err
		}
		return printJSON(cmd, entries)
	},
}

// segmentsCmd is the Cobra command for "reqvault segments".
var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "List the segments in the storage directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, _, err := newEngine()
		if err != nil {
			return err
		}
		for _, name := range engine.Segments() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(segmentsCmd)
}
