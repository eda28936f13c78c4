package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acervo-ai/acervo-cli/internal/core/domain"
)

var (
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve the most relevant chunks for a query",
	Long: `Embeds the query text and returns the most similar stored chunks,
ranked by cosine similarity. Results below the configured similarity
threshold are filtered out.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	topK := queryTopK
	if topK <= 0 {
		topK = appConfig.Retrieval.TopK
	}

	resp, err := retrievalService.Query(context.Background(), args[0], topK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, resp)
	}
	return outputQueryText(cmd, resp)
}

func outputQueryJSON(cmd *cobra.Command, resp *domain.RankedResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, resp *domain.RankedResponse) error {
	if resp.Empty() {
		cmd.Println("No relevant results found.")
		return nil
	}

	cmd.Printf("Confidence: %.2f\n\n", resp.Confidence)
	for i, r := range resp.Results {
		att := r.Attribution()
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, att.SourcePath, r.Similarity)
		cmd.Printf("      %s\n\n", att.Preview)
	}
	return nil
}
