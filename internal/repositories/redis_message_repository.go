package repositories

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	messageKeyPrefix          = "message:"
	messagesByConversationKey = "conversation:messages:"
)

// RedisMessageRepository implements MessageRepository using Redis.
// Messages are indexed per conversation in a list preserving insertion
// order, which is also chronological order.
type RedisMessageRepository struct {
	client *redis.Client
}

// NewRedisMessageRepository creates a new Redis-based message repository.
func NewRedisMessageRepository(client *redis.Client) *RedisMessageRepository {
	return &RedisMessageRepository{
		client: client,
	}
}

// Create stores a new message and appends it to the conversation index.
func (r *RedisMessageRepository) Create(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return NewConversationRepositoryError("create_message", msg.ConversationID, err, "failed to marshal message")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, messageKeyPrefix+msg.ID, msgJSON, 0)
	pipe.RPush(ctx, messagesByConversationKey+msg.ConversationID, msg.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return NewConversationRepositoryError("create_message", msg.ConversationID, err, "failed to execute transaction")
	}

	return nil
}

// ListByConversation returns one page ordered oldest to newest.
func (r *RedisMessageRepository) ListByConversation(ctx context.Context, conversationID string, page, limit int) ([]*Message, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	indexKey := messagesByConversationKey + conversationID

	total, err := r.client.LLen(ctx, indexKey).Result()
	if err != nil {
		return nil, 0, NewConversationRepositoryError("list_messages", conversationID, err, "")
	}

	start := int64((page - 1) * limit)
	stop := start + int64(limit) - 1

	msgIDs, err := r.client.LRange(ctx, indexKey, start, stop).Result()
	if err != nil {
		return nil, 0, NewConversationRepositoryError("list_messages", conversationID, err, "")
	}

	msgs, err := r.getBatch(ctx, conversationID, msgIDs)
	if err != nil {
		return nil, 0, err
	}

	return msgs, int(total), nil
}

// CountByConversation returns the number of persisted messages.
func (r *RedisMessageRepository) CountByConversation(ctx context.Context, conversationID string) (int, error) {
	total, err := r.client.LLen(ctx, messagesByConversationKey+conversationID).Result()
	if err != nil {
		return 0, NewConversationRepositoryError("count_messages", conversationID, err, "")
	}
	return int(total), nil
}

// LastN returns the newest n messages ordered oldest to newest.
func (r *RedisMessageRepository) LastN(ctx context.Context, conversationID string, n int) ([]*Message, error) {
	if n <= 0 {
		return []*Message{}, nil
	}

	msgIDs, err := r.client.LRange(ctx, messagesByConversationKey+conversationID, int64(-n), -1).Result()
	if err != nil {
		return nil, NewConversationRepositoryError("last_messages", conversationID, err, "")
	}

	return r.getBatch(ctx, conversationID, msgIDs)
}

// DeleteByConversation removes every message of a conversation.
func (r *RedisMessageRepository) DeleteByConversation(ctx context.Context, conversationID string) (int, error) {
	indexKey := messagesByConversationKey + conversationID

	msgIDs, err := r.client.LRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return 0, NewConversationRepositoryError("delete_messages", conversationID, err, "")
	}

	pipe := r.client.TxPipeline()
	for _, id := range msgIDs {
		pipe.Del(ctx, messageKeyPrefix+id)
	}
	pipe.Del(ctx, indexKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, NewConversationRepositoryError("delete_messages", conversationID, err, "failed to execute transaction")
	}

	return len(msgIDs), nil
}

func (r *RedisMessageRepository) getBatch(ctx context.Context, conversationID string, msgIDs []string) ([]*Message, error) {
	if len(msgIDs) == 0 {
		return []*Message{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(msgIDs))
	for i, id := range msgIDs {
		cmds[i] = pipe.Get(ctx, messageKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, NewConversationRepositoryError("get_messages", conversationID, err, "")
	}

	msgs := make([]*Message, 0, len(msgIDs))
	for _, cmd := range cmds {
		msgJSON, err := cmd.Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, NewConversationRepositoryError("get_messages", conversationID, err, "")
		}
		var msg Message
		if err := json.Unmarshal([]byte(msgJSON), &msg); err != nil {
			return nil, NewConversationRepositoryError("get_messages", conversationID, err, "failed to unmarshal message")
		}
		msgs = append(msgs, &msg)
	}

	sortMessagesByCreatedAt(msgs)
	return msgs, nil
}

// sortMessagesByCreatedAt orders messages oldest to newest.
func sortMessagesByCreatedAt(msgs []*Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}
