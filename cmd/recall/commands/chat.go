// ABOUTME: CLI command for interactive grounded chat
// ABOUTME: Streams responses and keeps conversation history for the session
package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/recall/internal/models"
	"github.com/joho/godotenv"
)

var (
	chatTopK int
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat grounded in the owner's documents",
		Long: `Chat with responses grounded in the owner's indexed documents.

Each message retrieves the most relevant chunks, injects them as
context ahead of the conversation, and streams the generated reply.
With a message argument, answers once and exits; without one, starts
an interactive session (exit with "quit" or Ctrl-D).

Examples:
  recall chat "What does the contract say about termination?"
  recall chat --top-k 5
  recall chat --owner alice`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}

	cmd.Flags().IntVar(&chatTopK, "top-k", 3, "Number of chunks to ground on (1-20)")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if err := validateTopK(chatTopK); err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	owner := resolveOwner()
	out := cmd.OutOrStdout()

	ask := func(history []models.ChatMessage, message string) (string, error) {
		var response strings.Builder
		err := rt.chat.GenerateGroundedResponse(cmd.Context(), owner, message, history, chatTopK,
			func(fragment string) error {
				response.WriteString(fragment)
				_, err := fmt.Fprint(out, fragment)
				return err
			})
		fmt.Fprintln(out)
		if err != nil && response.Len() > 0 {
			return response.String(), fmt.Errorf("response incomplete: %w", err)
		}
		return response.String(), err
	}

	// One-shot mode
	if len(args) == 1 {
		_, err := ask(nil, args[0])
		return err
	}

	// Interactive session: history lives for the session only
	if !quiet {
		fmt.Fprintf(out, "Chatting as %s. Type quit to exit.\n", owner)
	}

	var history []models.ChatMessage
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "quit" || message == "exit" {
			break
		}

		response, err := ask(history, message)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}

		history = append(history,
			models.ChatMessage{Role: "user", Content: message},
			models.ChatMessage{Role: "assistant", Content: response},
		)
	}
	return scanner.Err()
}
