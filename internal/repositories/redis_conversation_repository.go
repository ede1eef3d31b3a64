package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	conversationKeyPrefix  = "conversation:"
	conversationsByUserKey = "user:conversations:"
)

// RedisConversationRepository implements ConversationRepository using Redis.
// Conversations are indexed per user in a sorted set scored by UpdatedAt
// so listing newest-first is a range query.
type RedisConversationRepository struct {
	client *redis.Client
}

// NewRedisConversationRepository creates a new Redis-based conversation repository.
func NewRedisConversationRepository(client *redis.Client) *RedisConversationRepository {
	return &RedisConversationRepository{
		client: client,
	}
}

// Create stores a new conversation.
func (r *RedisConversationRepository) Create(ctx context.Context, conv *Conversation) error {
	if err := conv.Validate(); err != nil {
		return err
	}

	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	convJSON, err := json.Marshal(conv)
	if err != nil {
		return NewConversationRepositoryError("create", conv.ID, err, "failed to marshal conversation")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, conversationKeyPrefix+conv.ID, convJSON, 0)
	pipe.ZAdd(ctx, conversationsByUserKey+conv.UserID, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: conv.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return NewConversationRepositoryError("create", conv.ID, err, "failed to execute transaction")
	}

	return nil
}

// Get retrieves a conversation by ID.
func (r *RedisConversationRepository) Get(ctx context.Context, conversationID string) (*Conversation, error) {
	convJSON, err := r.client.Get(ctx, conversationKeyPrefix+conversationID).Result()
	if err == redis.Nil {
		return nil, ConversationNotFoundError(conversationID)
	}
	if err != nil {
		return nil, NewConversationRepositoryError("get", conversationID, err, "")
	}

	var conv Conversation
	if err := json.Unmarshal([]byte(convJSON), &conv); err != nil {
		return nil, NewConversationRepositoryError("get", conversationID, err, "failed to unmarshal conversation")
	}

	return &conv, nil
}

// ListByUser returns one page of the user's conversations, newest first.
func (r *RedisConversationRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]*Conversation, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	indexKey := conversationsByUserKey + userID

	total, err := r.client.ZCard(ctx, indexKey).Result()
	if err != nil {
		return nil, 0, NewConversationRepositoryError("list_by_user", "", err, "")
	}

	start := int64((page - 1) * limit)
	stop := start + int64(limit) - 1

	convIDs, err := r.client.ZRevRange(ctx, indexKey, start, stop).Result()
	if err != nil {
		return nil, 0, NewConversationRepositoryError("list_by_user", "", err, "")
	}

	convs := make([]*Conversation, 0, len(convIDs))
	for _, id := range convIDs {
		conv, err := r.Get(ctx, id)
		if err != nil {
			if IsConversationNotFound(err) {
				continue
			}
			return nil, 0, err
		}
		convs = append(convs, conv)
	}

	return convs, int(total), nil
}

// Touch bumps UpdatedAt and the per-user index score.
func (r *RedisConversationRepository) Touch(ctx context.Context, conversationID string, at time.Time) error {
	conv, err := r.Get(ctx, conversationID)
	if err != nil {
		return err
	}

	conv.UpdatedAt = at
	convJSON, err := json.Marshal(conv)
	if err != nil {
		return NewConversationRepositoryError("touch", conversationID, err, "failed to marshal conversation")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, conversationKeyPrefix+conversationID, convJSON, 0)
	pipe.ZAdd(ctx, conversationsByUserKey+conv.UserID, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: conversationID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return NewConversationRepositoryError("touch", conversationID, err, "failed to execute transaction")
	}

	return nil
}

// Delete removes a conversation and its index entry. Messages are removed
// separately through the message repository.
func (r *RedisConversationRepository) Delete(ctx context.Context, conversationID string) error {
	conv, err := r.Get(ctx, conversationID)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, conversationKeyPrefix+conversationID)
	pipe.ZRem(ctx, conversationsByUserKey+conv.UserID, conversationID)

	if _, err := pipe.Exec(ctx); err != nil {
		return NewConversationRepositoryError("delete", conversationID, err, "failed to execute transaction")
	}

	return nil
}
