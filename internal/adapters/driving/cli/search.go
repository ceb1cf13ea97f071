package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var searchK int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve the segments most similar to a query",
	Long: `Embeds the query and prints the most similar indexed segments with
their similarity scores. No answer is synthesized; this is the raw
retrieval step, useful for inspecting what 'ask' would ground on.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "top-k", "k", 0, "number of segments to retrieve (default from config, 7)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	svc := queryService
	if svc == nil {
		built, closer, err := buildQueryService(cmd, false)
		if err != nil {
			return err
		}
		defer func() { _ = closer() }()
		svc = built
	}

	results, err := svc.Retrieve(cmd.Context(), query, searchK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s page %d (%.3f)\n", i+1, filepath.Base(r.Segment.Source), r.Segment.Page+1, r.Score)
		cmd.Printf("      %s\n", snippet(r.Segment.Text, 120))
		cmd.Println()
	}
	return nil
}

// snippet truncates text to at most n characters on a single line.
func snippet(text string, n int) string {
	out := make([]rune, 0, n)
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
		if len(out) >= n {
			return string(out) + "..."
		}
	}
	return string(out)
}
