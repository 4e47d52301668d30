// ABOUTME: CLI command to delete a document record
// ABOUTME: Optionally rebuilds the owner's index to purge the document's vectors
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/recall/internal/docstore"
)

var (
	deleteRebuild bool
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document",
		Long: `Delete a document's metadata record and stored upload.

By default the document's vectors stay in the owner's index as orphans
(the index is append-only). Pass --rebuild to rewrite the index from
the owner's remaining documents, purging the deleted chunks.

Examples:
  recall delete 3f8a1c02-...
  recall delete --rebuild 3f8a1c02-...`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	cmd.Flags().BoolVar(&deleteRebuild, "rebuild", false, "Rebuild the index without the deleted document's chunks")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	rt, err := newRuntimeWithoutProvider()
	if err != nil {
		return err
	}
	defer rt.Close()

	documentID := args[0]
	if err := rt.library.Delete(resolveOwner(), documentID, deleteRebuild); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("document %s not found for owner %s", documentID, resolveOwner())
		}
		return fmt.Errorf("deleting document: %w", err)
	}

	if !quiet {
		if deleteRebuild {
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s and rebuilt the index\n", documentID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (indexed chunks remain until a rebuild)\n", documentID)
		}
	}
	return nil
}
