package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beck40/insight/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_HasTopKFlag(t *testing.T) {
	flag := askCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	_, _, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	_, query, cleanup := setupTestServices(t)
	defer cleanup()
	query.answer = domain.Answer{
		Text: "Net revenue was $10M, up 12% year over year.",
		Citations: []domain.Citation{
			{Display: " report.pdf (Page 3)"},
			{Display: " https://example.com/q3"},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "what was revenue?"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Net revenue was $10M")
	assert.Contains(t, out, "--- Sources ---")
	assert.Contains(t, out, " report.pdf (Page 3)")
	assert.Contains(t, out, " https://example.com/q3")
}

func TestAskCmd_SurfacesModelMismatch(t *testing.T) {
	_, query, cleanup := setupTestServices(t)
	defer cleanup()
	query.err = fmt.Errorf("%w: index built with \"a\", query uses \"b\"", domain.ErrModelMismatch)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelMismatch)
}
