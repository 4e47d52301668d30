// ABOUTME: CLI command to query the owner's documents
// ABOUTME: Prints ranked chunks with ascending distance scores
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

var (
	searchTopK int
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the owner's documents",
		Long: `Search the owner's indexed documents by semantic similarity.

Results are ranked by ascending distance: the first result is the
closest match. An owner with no ingested documents gets an empty
result, not an error.

Examples:
  recall search "quarterly revenue"
  recall search --top-k 10 "error handling"
  recall search --format json "deployment steps"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchTopK, "top-k", 3, "Maximum results to return (1-20)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if err := validateTopK(searchTopK); err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	results, err := rt.engine.QueryDocuments(cmd.Context(), resolveOwner(), args[0], searchTopK)
	if err != nil {
		return fmt.Errorf("searching documents: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No results for query: %s\n", args[0])
		}
		return nil
	}

	for i, result := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. [doc %s chunk %d] distance %.4f\n",
			i+1, truncate(result.Metadata.DocumentID, 11), result.Metadata.ChunkIndex, result.RelevanceScore)
		fmt.Fprintf(cmd.OutOrStdout(), "   %s\n", truncate(result.Text, 200))
	}
	return nil
}
