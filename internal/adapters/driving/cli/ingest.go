package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/beck40/insight/internal/adapters/driven/config/file"
	"github.com/beck40/insight/internal/adapters/driven/index/sqlite"
	"github.com/beck40/insight/internal/chunker"
	"github.com/beck40/insight/internal/core/ports/driving"
	"github.com/beck40/insight/internal/core/services"
	"github.com/beck40/insight/internal/extractors/pdf"
	"github.com/beck40/insight/internal/logger"
)

var (
	ingestChunkSize    int
	ingestChunkOverlap int
	ingestBatchSize    int
	ingestWatch        bool
)

// watchDebounce coalesces bursts of file events into one rebuild.
const watchDebounce = 500 * time.Millisecond

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Build the index from a PDF document",
	Long: `Extracts text from the PDF page by page, splits it into overlapping
segments, embeds each segment and rebuilds the index. The previous
index is replaced atomically: a failed run leaves it untouched.

With --watch the command keeps running and rebuilds the index whenever
the file changes on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "segment size in characters (default from config, 1500)")
	ingestCmd.Flags().IntVar(&ingestChunkOverlap, "chunk-overlap", 0, "overlap between segments in characters (default from config, 400)")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "segments per embedding request")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "rebuild the index whenever the file changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	svc := ingestService
	if svc == nil {
		built, err := buildIngestService(cmd)
		if err != nil {
			return err
		}
		svc = built
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ingestOnce(ctx, cmd, svc, path); err != nil {
		return err
	}

	if !ingestWatch {
		return nil
	}
	return watchAndRebuild(ctx, cmd, svc, path)
}

// buildIngestService assembles the real ingestion pipeline from
// configuration and flags.
func buildIngestService(cmd *cobra.Command) (driving.IngestService, error) {
	size := ingestChunkSize
	if size <= 0 {
		size = cfg.GetInt(file.KeyChunkSize)
	}
	if size <= 0 {
		size = chunker.DefaultChunkSize
	}
	overlap := ingestChunkOverlap
	if overlap <= 0 {
		overlap = cfg.GetInt(file.KeyChunkOverlap)
	}
	if overlap <= 0 {
		overlap = chunker.DefaultChunkOverlap
	}

	splitter, err := chunker.New(size, overlap)
	if err != nil {
		return nil, err
	}

	embedder, err := buildEmbedder(cmd)
	if err != nil {
		return nil, err
	}

	path, err := indexPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	var bar *progressbar.ProgressBar
	opts := []services.IngestOption{
		services.WithProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("embedding"),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}),
	}
	if ingestBatchSize > 0 {
		opts = append(opts, services.WithEmbedBatchSize(ingestBatchSize))
	}

	return services.NewIngestService(pdf.New(), splitter, embedder, sqlite.NewWriter(path), opts...), nil
}

func ingestOnce(ctx context.Context, cmd *cobra.Command, svc driving.IngestService, path string) error {
	stats, err := svc.Rebuild(ctx, path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %s: %d pages, %d segments (model %s)\n",
		filepath.Base(path), stats.Pages, stats.Segments, stats.Model)
	return nil
}

// watchAndRebuild blocks, rebuilding the index whenever the watched
// file is written. Editors often replace files via rename, so the
// parent directory is watched and events filtered by name.
func watchAndRebuild(ctx context.Context, cmd *cobra.Command, svc driving.IngestService, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	cmd.Printf("Watching %s for changes (Ctrl-C to stop)\n", path)

	var timer *time.Timer
	rebuild := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected: %s", event)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case <-rebuild:
			if _, err := os.Stat(abs); err != nil {
				logger.Warn("skipping rebuild: %v", err)
				continue
			}
			if err := ingestOnce(ctx, cmd, svc, path); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				// Keep watching; a failed rebuild leaves the
				// previous index intact.
				cmd.PrintErrf("rebuild failed: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}
