// ABOUTME: Context assembler rendering ranked retrieval results into a grounding block
// ABOUTME: Output becomes the system message ahead of any conversational history
package core

import (
	"fmt"
	"strings"

	"github.com/harper/recall/internal/models"
)

const noContextInstruction = "You are a helpful assistant. Respond concisely and accurately to the user's questions."

const contextPreamble = `You are a helpful assistant with access to the following document context.
Use this information to answer the user's questions accurately and cite the source when possible.
If the documents don't contain relevant information, answer based on your knowledge but make it clear you're not using the document context.`

const contextEpilogue = "Answer the user's questions based on the above context when relevant, or use your general knowledge otherwise."

// BuildContext renders retrieved chunks, in the given rank order, into a
// single grounding text block. Empty results yield a generic assistant
// instruction with no document framing.
func BuildContext(results []models.RetrievalResult) string {
	if len(results) == 0 {
		return noContextInstruction
	}

	blocks := make([]string, 0, len(results))
	for _, result := range results {
		blocks = append(blocks, fmt.Sprintf("[Document %s - Chunk %d]\n%s",
			shortID(result.Metadata.DocumentID), result.Metadata.ChunkIndex, result.Text))
	}

	return fmt.Sprintf("%s\n\nDOCUMENT CONTEXT:\n%s\n\n%s",
		contextPreamble, strings.Join(blocks, "\n\n"), contextEpilogue)
}

// shortID truncates a document identifier for display in context labels
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
