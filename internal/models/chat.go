// ABOUTME: Chat message structure for grounded generation
// ABOUTME: Conversation history is passed in by the caller, not persisted here
package models

// ChatMessage is one prior conversational turn supplied by the caller.
// Role is "user" or "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
