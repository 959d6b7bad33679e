package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search initiative documents (case-insensitive)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&directoryFlag, "directory", "d", "", "Configured directory name (default directory if empty)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	results, err := openService().Search(cmd.Context(), query, directoryFlag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No matches for %q.\n", query)
		return nil
	}
	for _, res := range results {
		fmt.Fprintf(out, "%s/%s\n", res.Initiative, res.File)
		for _, m := range res.Matches {
			fmt.Fprintf(out, "  %4d: %s\n", m.LineNum, m.Text)
		}
	}
	return nil
}
