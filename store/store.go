// Package store persists conversation history per chat.
// The chat ID is taken from the chatmodel context.
package store

import (
	"context"

	"github.com/effective-security/xlog"
	"github.com/tmc/langchaingo/llms"
)

var logger = xlog.NewPackageLogger("github.com/amd/gaia", "store")

// MessageStore keeps the conversation history for the chat identified
// by the context.
type MessageStore interface {
	Messages(ctx context.Context) []llms.ChatMessage
	Add(ctx context.Context, msgs ...llms.ChatMessage) error
	Reset(ctx context.Context) error
}

// ToChatMessages converts serialized models back to chat messages.
func ToChatMessages(models []llms.ChatMessageModel) []llms.ChatMessage {
	if len(models) == 0 {
		return nil
	}
	messages := make([]llms.ChatMessage, 0, len(models))
	for _, m := range models {
		messages = append(messages, m.ToChatMessage())
	}
	return messages
}
