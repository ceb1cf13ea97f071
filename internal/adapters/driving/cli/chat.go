package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/beck40/insight/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question session",
	Long: `Launch an interactive session against the indexed documents.
Each question is answered from the index with cited sources.

Controls:
  Enter  - Ask the typed question
  Esc    - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Recover panics so the terminal is restored with a stack trace.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	svc := queryService
	if svc == nil {
		built, closer, err := buildQueryService(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = closer() }()
		svc = built
	}

	model := tui.NewChat(svc)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session: %w", err)
	}
	return nil
}
