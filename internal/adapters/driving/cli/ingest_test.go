package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beck40/insight/internal/core/domain"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file]", ingestCmd.Use)
}

func TestIngestCmd_RequiresExactlyOneArg(t *testing.T) {
	_, _, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestIngestCmd_HasFlags(t *testing.T) {
	for _, name := range []string{"chunk-size", "chunk-overlap", "batch-size", "watch"} {
		assert.NotNil(t, ingestCmd.Flags().Lookup(name), "expected flag %q", name)
	}
}

func TestIngestCmd_ReportsStats(t *testing.T) {
	ingest, _, cleanup := setupTestServices(t)
	defer cleanup()
	ingest.stats = domain.IndexStats{Pages: 12, Segments: 48, Model: "all-minilm"}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "report.pdf"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "report.pdf", ingest.gotPath)
	assert.Contains(t, buf.String(), "12 pages")
	assert.Contains(t, buf.String(), "48 segments")
	assert.Contains(t, buf.String(), "all-minilm")
}

func TestIngestCmd_SurfacesFailure(t *testing.T) {
	ingest, _, cleanup := setupTestServices(t)
	defer cleanup()
	ingest.err = errors.New("no such file")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "missing.pdf"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
	assert.Contains(t, err.Error(), "no such file")
}
