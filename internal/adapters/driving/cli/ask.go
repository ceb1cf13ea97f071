package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/services"
)

var askK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the segments most relevant to the question, asks the
answer model to respond using only that context, and prints the answer
followed by the source pages it was grounded in.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of segments to retrieve (default from config, 7)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	svc := queryService
	if svc == nil {
		var opts []services.QueryOption
		if askK > 0 {
			opts = append(opts, services.WithTopK(askK))
		}
		built, closer, err := buildQueryService(cmd, true, opts...)
		if err != nil {
			return err
		}
		defer func() { _ = closer() }()
		svc = built
	}

	answer, err := svc.Answer(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	printAnswer(cmd, answer)
	return nil
}

// printAnswer renders the answer text followed by the deduplicated
// source block.
func printAnswer(cmd *cobra.Command, answer domain.Answer) {
	cmd.Printf("\n%s\n\n", answer.Text)
	cmd.Println("--- Sources ---")
	for _, c := range answer.Citations {
		cmd.Println(c.Display)
	}
	cmd.Println(strings.Repeat("-", 20))
}
