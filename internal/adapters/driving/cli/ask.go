package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the ingested documents",
	Long: `Retrieves relevant chunks and synthesises an attributed answer.
With answer generation disabled or unavailable, the answer is assembled
directly from the retrieved text.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	answer, err := askService.Ask(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)
	if answer.Templated && len(answer.Sources) > 0 {
		cmd.Println("\n(answer assembled from retrieved text; generation unavailable)")
	}

	if len(answer.Sources) > 0 {
		cmd.Printf("\nConfidence: %.2f\n", answer.Confidence)
		cmd.Println("Sources:")
		for _, s := range answer.Sources {
			cmd.Printf("  - %s (%.2f)\n", s.SourcePath, s.Similarity)
		}
	}
	return nil
}
