package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a file or directory into the knowledge base",
	Long: `Extracts text from the given file or directory, splits it into
overlapping chunks, embeds each chunk and stores the vectors.
Re-ingesting unchanged content overwrites existing entries instead of
duplicating them.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !info.IsDir() {
		res := ingestionService.Ingest(ctx, path)
		if !res.Success() {
			return fmt.Errorf("ingest %s: %w", path, res.Err)
		}
		cmd.Printf("Ingested %s: %d chunks stored", path, res.ChunksStored)
		if res.ChunksDegraded > 0 {
			cmd.Printf(" (%d degraded)", res.ChunksDegraded)
		}
		cmd.Println()
		return nil
	}

	run, err := ingestionService.IngestDir(ctx, path)
	if err != nil {
		return fmt.Errorf("ingest directory: %w", err)
	}

	cmd.Printf("Run %s finished\n", run.ID)
	cmd.Printf("  Documents: %d ok, %d failed\n", run.DocumentsProcessed, run.DocumentsFailed)
	cmd.Printf("  Chunks:    %d stored", run.ChunksStored)
	if run.ChunksDegraded > 0 {
		cmd.Printf(", %d degraded", run.ChunksDegraded)
	}
	cmd.Println()
	if run.Cancelled {
		cmd.Println("  Run was cancelled before completion")
	}
	for _, f := range run.Failed {
		cmd.Printf("  Failed: %s (%s)\n", f.Path, f.Reason)
	}
	return nil
}
