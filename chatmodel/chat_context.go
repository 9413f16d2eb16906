// Package chatmodel provides the chat context plumbing shared by the agent
// engine and the message stores: a per-conversation ChatContext carried on the
// request context, with a chat ID and arbitrary metadata.
package chatmodel

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/google/uuid"
)

// ErrInvalidChatContext is returned when a chat ID is required but the context
// does not carry a ChatContext.
var ErrInvalidChatContext = errors.New("invalid chat context")

// ChatContext is the context for one conversation with an agent.
type ChatContext interface {
	GetChatID() string
	// AppData returns immutable app data
	AppData() any
	// GetMetadata retrieves metadata by key
	GetMetadata(key string) (value any, ok bool)
	// SetMetadata sets metadata by key
	SetMetadata(key string, value any)
}

type chatContext struct {
	chatID   string
	metadata sync.Map
	appData  any
}

func (c *chatContext) GetChatID() string {
	return c.chatID
}

func (c *chatContext) AppData() any {
	return c.appData
}

func (c *chatContext) GetMetadata(key string) (value any, ok bool) {
	return c.metadata.Load(key)
}

func (c *chatContext) SetMetadata(key string, value any) {
	c.metadata.Store(key, value)
}

// NewChatContext creates a ChatContext with the given chat ID,
// or a new ID if empty.
func NewChatContext(chatID string, appData any) ChatContext {
	return &chatContext{
		chatID:   values.StringsCoalesce(chatID, NewChatID()),
		appData:  appData,
		metadata: sync.Map{},
	}
}

// NewChatID returns a new unique chat ID.
func NewChatID() string {
	return uuid.NewString()
}

type contextKey int

const (
	keyContext contextKey = iota
)

// WithChatContext returns a new context with ChatContext value
func WithChatContext(ctx context.Context, chatCtx ChatContext) context.Context {
	return context.WithValue(ctx, keyContext, chatCtx)
}

// GetChatContext returns the ChatContext from the context, or nil.
func GetChatContext(ctx context.Context) ChatContext {
	chatCtx, _ := ctx.Value(keyContext).(ChatContext)
	return chatCtx
}

// GetChatID returns the chat ID from the context,
// or ErrInvalidChatContext if the context does not carry one.
func GetChatID(ctx context.Context) (string, error) {
	chatCtx := GetChatContext(ctx)
	if chatCtx == nil || chatCtx.GetChatID() == "" {
		return "", errors.WithStack(ErrInvalidChatContext)
	}
	return chatCtx.GetChatID(), nil
}
