package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/beck40/insight/internal/adapters/driven/config/file"
	"github.com/beck40/insight/internal/adapters/driven/embedding/ollama"
	"github.com/beck40/insight/internal/adapters/driven/embedding/openai"
	"github.com/beck40/insight/internal/adapters/driven/index/sqlite"
	"github.com/beck40/insight/internal/adapters/driven/synthesizer/groq"
	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/ports/driven"
	"github.com/beck40/insight/internal/core/ports/driving"
	"github.com/beck40/insight/internal/core/services"
	"github.com/beck40/insight/internal/logger"
)

// version is injected by Execute.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Injected services. Commands construct the real ones on demand when
// these are nil; tests inject mocks.
var (
	cfg           driven.ConfigStore
	ingestService driving.IngestService
	queryService  driving.QueryService
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Ask questions over your PDF documents",
	Long: `Insight builds a local semantic index over PDF documents and answers
questions against it, citing the pages the answer came from.

Typical workflow:
  insight ingest report.pdf    Build the index from a document
  insight ask "..."            One-shot question with cited sources
  insight chat                 Interactive question session`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cfg == nil {
			store, err := file.NewConfigStore(configDir)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg = store
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.insight)")
}

// Execute runs the root command with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// baseDir returns the directory holding config, prompts and the index.
func baseDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".insight"), nil
}

// indexPath returns the configured index location, defaulting to
// index.db under the base directory.
func indexPath() (string, error) {
	if p := cfg.GetString(file.KeyIndexPath); p != "" {
		return p, nil
	}
	dir, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "index.db"), nil
}

// resolveAPIKey looks up an API key in the config store, then the
// environment, and finally prompts for it without echo when attached
// to a terminal. A prompted key is persisted for subsequent runs.
func resolveAPIKey(cmd *cobra.Command, cfgKey, envVar string) (string, error) {
	if key := cfg.GetString(cfgKey); key != "" {
		return key, nil
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: set %s or %s in %s", domain.ErrConfig, envVar, cfgKey, cfg.Path())
	}

	cmd.Printf("Enter %s: ", envVar)
	secret, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", envVar, err)
	}

	key := strings.TrimSpace(string(secret))
	if key == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrConfig, envVar)
	}
	if err := cfg.Set(cfgKey, key); err != nil {
		logger.Warn("persist %s: %v", cfgKey, err)
	}
	return key, nil
}

// buildEmbedder constructs the configured embedding service. The
// default is a local Ollama instance; "openai" selects the hosted API.
func buildEmbedder(cmd *cobra.Command) (driven.EmbeddingService, error) {
	provider := cfg.GetString(file.KeyEmbeddingProvider)
	switch provider {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.GetString(file.KeyEmbeddingBaseURL),
			Model:   cfg.GetString(file.KeyEmbeddingModel),
		}), nil
	case "openai":
		key, err := resolveAPIKey(cmd, file.KeyEmbeddingAPIKey, "OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  key,
			BaseURL: cfg.GetString(file.KeyEmbeddingBaseURL),
			Model:   cfg.GetString(file.KeyEmbeddingModel),
		})
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfig, provider)
	}
}

// buildSynthesizer constructs the Groq-backed answer synthesizer with
// the user-editable prompt store.
func buildSynthesizer(cmd *cobra.Command) (driven.Synthesizer, error) {
	key, err := resolveAPIKey(cmd, file.KeySynthAPIKey, "GROQ_API_KEY")
	if err != nil {
		return nil, err
	}

	dir, err := baseDir()
	if err != nil {
		return nil, err
	}
	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, err
	}

	return groq.NewSynthesizer(groq.Config{
		APIKey:  key,
		BaseURL: cfg.GetString(file.KeySynthBaseURL),
		Model:   cfg.GetString(file.KeySynthesizerModel),
	}, prompts)
}

// buildQueryService opens the persisted index and assembles the query
// service around it. The returned closer releases the index handle.
// withSynth controls whether a synthesizer is wired in; retrieval-only
// commands skip it so they never prompt for an API key.
func buildQueryService(cmd *cobra.Command, withSynth bool, extra ...services.QueryOption) (driving.QueryService, func() error, error) {
	path, err := indexPath()
	if err != nil {
		return nil, nil, err
	}

	index, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := buildEmbedder(cmd)
	if err != nil {
		_ = index.Close()
		return nil, nil, err
	}

	var synth driven.Synthesizer
	if withSynth {
		synth, err = buildSynthesizer(cmd)
		if err != nil {
			_ = index.Close()
			return nil, nil, err
		}
	}

	opts := []services.QueryOption{}
	if k := cfg.GetInt(file.KeyTopK); k > 0 {
		opts = append(opts, services.WithTopK(k))
	}
	opts = append(opts, extra...)

	svc := services.NewQueryService(index, embedder, synth, opts...)
	closer := func() error {
		if err := embedder.Close(); err != nil {
			logger.Warn("close embedder: %v", err)
		}
		return index.Close()
	}
	return svc, closer, nil
}
