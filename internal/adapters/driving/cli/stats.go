package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index contents",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	svc := queryService
	if svc == nil {
		built, closer, err := buildQueryService(cmd, false)
		if err != nil {
			return err
		}
		defer func() { _ = closer() }()
		svc = built
	}

	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}

	cmd.Printf("Segments:  %d\n", stats.Segments)
	cmd.Printf("Pages:     %d\n", stats.Pages)
	cmd.Printf("Model:     %s\n", stats.Model)
	return nil
}
