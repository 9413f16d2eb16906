package store

import (
	"context"
	"sync"

	"github.com/effective-security/xlog"
	"github.com/tmc/langchaingo/llms"

	"github.com/amd/gaia/chatmodel"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]llms.ChatMessage
}

func NewMemoryStore() MessageStore {
	return &inMemory{}
}

func (m *inMemory) Messages(ctx context.Context) []llms.ChatMessage {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "GetChatID", "err", err.Error())
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil
	}
	return m.storage[chatID]
}

func (m *inMemory) Add(ctx context.Context, msgs ...llms.ChatMessage) error {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]llms.ChatMessage)
	}
	m.storage[chatID] = append(m.storage[chatID], msgs...)
	return nil
}

func (m *inMemory) Reset(ctx context.Context) error {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, chatID)
	}
	return nil
}
