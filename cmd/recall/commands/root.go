// ABOUTME: Root command wiring for the recall CLI
// ABOUTME: Holds persistent flags shared by all subcommands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	ownerID      string
	outputFormat string
	quiet        bool
	verbose      bool
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Per-user document retrieval engine",
		Long: `recall ingests documents, indexes them per owner, and answers
semantic queries over them, directly or as grounding context for chat.

Each owner's documents live in a separate persisted index; one owner's
content is never visible in another owner's results.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&ownerID, "owner", "", "Owner identity scoping all operations (default: $RECALL_OWNER or \"local\")")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	cmd.AddCommand(
		NewAddCmd(),
		NewSearchCmd(),
		NewListCmd(),
		NewDeleteCmd(),
		NewChatCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}
