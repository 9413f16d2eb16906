package store

import (
	"context"
	"encoding/json"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
	"github.com/tmc/langchaingo/llms"

	"github.com/amd/gaia/chatmodel"
)

// maxStoredMessages bounds the history kept per chat.
const maxStoredMessages = 50

// The redis store keeps chat history in a Redis list per chat ID, under
// `<prefix>/chatstore/messages/<chatID>`. The list is trimmed to the
// most recent maxStoredMessages entries on every write.
type redisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) MessageStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (m *redisStore) messagesKey(chatID string) string {
	return path.Join(m.prefix, "chatstore", "messages", chatID)
}

func (m *redisStore) Messages(ctx context.Context) []llms.ChatMessage {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "GetChatID", "err", err.Error())
		return nil
	}

	key := m.messagesKey(chatID)
	data, err := m.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "LRange", "key", key, "err", err.Error())
		return nil
	}

	var models []llms.ChatMessageModel
	for _, item := range data {
		var msg llms.ChatMessageModel
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "unmarshal message", "err", err.Error())
			continue
		}
		models = append(models, msg)
	}
	return ToChatMessages(models)
}

func (m *redisStore) Add(ctx context.Context, msgs ...llms.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return err
	}

	key := m.messagesKey(chatID)
	pipe := m.client.Pipeline()
	for _, msg := range msgs {
		model := llms.ConvertChatMessageToModel(msg)
		data, err := json.Marshal(model)
		if err != nil {
			return errors.Wrap(err, "failed to marshal message")
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.LTrim(ctx, key, -maxStoredMessages, -1)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to store messages in Redis")
	}
	return nil
}

func (m *redisStore) Reset(ctx context.Context) error {
	chatID, err := chatmodel.GetChatID(ctx)
	if err != nil {
		return err
	}

	err = m.client.Del(ctx, m.messagesKey(chatID)).Err()
	if err != nil {
		return errors.Wrap(err, "failed to reset chat in Redis")
	}
	return nil
}
