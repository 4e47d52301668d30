// ABOUTME: CLI command to ingest a document file
// ABOUTME: Copies the upload, extracts text, and indexes it for the owner
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Ingest a document",
		Long: `Ingest a document: extract its text, split it into overlapping
chunks, embed each chunk, and append them to the owner's index.

Supported formats: .txt, .md, .markdown, .pdf

Re-adding the same file indexes it again as a new document; ingestion
is not de-duplicated.

Examples:
  recall add notes.txt
  recall add --owner alice paper.pdf
  recall add --format json report.md`,
		Args: cobra.ExactArgs(1),
		RunE: runAdd,
	}

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	owner := resolveOwner()
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Ingesting %s for owner %s (chunk size %d, overlap %d)\n",
			args[0], owner, rt.cfg.MaxChunkSize, rt.cfg.ChunkOverlap)
	}

	doc, err := rt.library.IngestFile(cmd.Context(), owner, args[0])
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s as %s (%d chunks)\n",
			doc.Filename, doc.ID, doc.ChunkCount)
	}
	return nil
}
