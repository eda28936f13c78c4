package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/acervo-ai/acervo-cli/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and re-ingest files as they change",
	Long: `Performs an initial ingestion of the directory, then keeps running
and re-ingests files on every write. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := ingestionService.IngestDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("initial ingestion: %w", err)
	}
	cmd.Printf("Initial ingestion: %d documents, %d failed\n",
		run.DocumentsProcessed, run.DocumentsFailed)

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	return watch.New(ingestionService).Watch(ctx, dir)
}
