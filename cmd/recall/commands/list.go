// ABOUTME: CLI command to list the owner's document records
// ABOUTME: Tabular output with chunk counts and ingestion times
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listLimit int
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		Long: `List the owner's ingested documents, newest first.

Examples:
  recall list
  recall list --limit 10
  recall list --format json`,
		RunE: runList,
	}

	cmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum documents to show")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntimeWithoutProvider()
	if err != nil {
		return err
	}
	defer rt.Close()

	docs, err := rt.library.List(resolveOwner(), listLimit)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if len(docs) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No documents for owner %s\n", resolveOwner())
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tTYPE\tCHUNKS\tADDED")
	for _, doc := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			truncate(doc.ID, 11), truncate(doc.Filename, 32), doc.FileType,
			doc.ChunkCount, formatTime(doc.CreatedAt))
	}
	return w.Flush()
}
