package cli

import (
	"github.com/spf13/cobra"

	"github.com/reqvault/reqvault/pkg/query"
)

var queryJSONPath string

// queryCmd is the Cobra command for "reqvault query".
var queryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Search captured entries with a filter expression",
	Long: `Search every stored segment with a boolean filter expression.

The expression sees the fields id, method, ip, occurred, body, queryParams
and headers. Examples:

  reqvault query 'method == "POST"'
  reqvault query 'body.user == "ana" && queryParams.src == "web"'
  reqvault query 'occurred > date("2026-01-01T00:00:00Z")' -p '$.body.user'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, logger, err := newEngine()
		if err != nil {
			return err
		}

		matches, err := query.New(engine, logger).Search(args[0])
		if err != nil {
			return err
		}

		if queryJSONPath != "" {
			projected, err := query.Project(matches, queryJSONPath)
			if err != nil {
				return err
			}
			return printJSON(cmd, projected)
		}
		return printJSON(cmd, matches)
	},
}

// findCmd is the Cobra command for "reqvault find".
var findCmd = &cobra.Command{
	Use:   "find <id>",
	Short: "Look up one entry by id through the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, logger, err := newEngine()
		if err != nil {
			return err
		}

		entry, err := query.New(engine, logger).Find(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, entry)
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryJSONPath, "jsonpath", "p", "", "project results through a JSONPath expression")
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(findCmd)
}
