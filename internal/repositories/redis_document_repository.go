package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	documentKeyPrefix = "document:"
	documentIndexKey  = "documents:index"
	documentActiveKey = "documents:active"
)

// RedisDocumentRepository implements DocumentRepository using Redis.
type RedisDocumentRepository struct {
	client *redis.Client
}

// NewRedisDocumentRepository creates a new Redis-based document repository.
func NewRedisDocumentRepository(client *redis.Client) *RedisDocumentRepository {
	return &RedisDocumentRepository{
		client: client,
	}
}

// Create stores a new document in the registry.
func (r *RedisDocumentRepository) Create(ctx context.Context, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	exists, err := r.Exists(ctx, doc.ID)
	if err != nil {
		return NewDocumentRepositoryError("create", doc.ID, err, "")
	}
	if exists {
		return DocumentAlreadyExistsError(doc.ID)
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return NewDocumentRepositoryError("create", doc.ID, err, "failed to marshal document")
	}

	// Transaction keeps the document and its indexes consistent
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, documentKeyPrefix+doc.ID, docJSON, 0)
	pipe.SAdd(ctx, documentIndexKey, doc.ID)
	if doc.Active {
		pipe.SAdd(ctx, documentActiveKey, doc.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return NewDocumentRepositoryError("create", doc.ID, err, "failed to execute transaction")
	}

	return nil
}

// Get retrieves a document by ID.
func (r *RedisDocumentRepository) Get(ctx context.Context, documentID string) (*Document, error) {
	docJSON, err := r.client.Get(ctx, documentKeyPrefix+documentID).Result()
	if err == redis.Nil {
		return nil, DocumentNotFoundError(documentID)
	}
	if err != nil {
		return nil, NewDocumentRepositoryError("get", documentID, err, "")
	}

	var doc Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, NewDocumentRepositoryError("get", documentID, err, "failed to unmarshal document")
	}

	return &doc, nil
}

// List retrieves all documents ordered by creation time.
func (r *RedisDocumentRepository) List(ctx context.Context) ([]*Document, error) {
	docIDs, err := r.client.SMembers(ctx, documentIndexKey).Result()
	if err != nil {
		return nil, NewDocumentRepositoryError("list", "", err, "")
	}
	return r.getBatch(ctx, "list", docIDs)
}

// ListActive retrieves only documents flagged active, content included.
func (r *RedisDocumentRepository) ListActive(ctx context.Context) ([]*Document, error) {
	docIDs, err := r.client.SMembers(ctx, documentActiveKey).Result()
	if err != nil {
		return nil, NewDocumentRepositoryError("list_active", "", err, "")
	}
	return r.getBatch(ctx, "list_active", docIDs)
}

// Update modifies document fields and bumps UpdatedAt.
func (r *RedisDocumentRepository) Update(ctx context.Context, documentID string, updates map[string]interface{}) error {
	doc, err := r.Get(ctx, documentID)
	if err != nil {
		return err
	}

	for key, value := range updates {
		switch key {
		case "title":
			if v, ok := value.(string); ok {
				doc.Title = v
			}
		case "content":
			if v, ok := value.(string); ok {
				doc.Content = v
			}
		case "filename":
			if v, ok := value.(string); ok {
				doc.Filename = v
			}
		case "active":
			if v, ok := value.(bool); ok {
				doc.Active = v
			}
		}
	}
	doc.UpdatedAt = time.Now()

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return NewDocumentRepositoryError("update", documentID, err, "failed to marshal document")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, documentKeyPrefix+documentID, docJSON, 0)
	if doc.Active {
		pipe.SAdd(ctx, documentActiveKey, documentID)
	} else {
		pipe.SRem(ctx, documentActiveKey, documentID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return NewDocumentRepositoryError("update", documentID, err, "failed to execute transaction")
	}

	return nil
}

// SetActive flips the active flag and maintains the active index.
func (r *RedisDocumentRepository) SetActive(ctx context.Context, documentID string, active bool) error {
	return r.Update(ctx, documentID, map[string]interface{}{"active": active})
}

// Delete removes a document from the registry.
func (r *RedisDocumentRepository) Delete(ctx context.Context, documentID string) error {
	if _, err := r.Get(ctx, documentID); err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, documentKeyPrefix+documentID)
	pipe.SRem(ctx, documentIndexKey, documentID)
	pipe.SRem(ctx, documentActiveKey, documentID)

	if _, err := pipe.Exec(ctx); err != nil {
		return NewDocumentRepositoryError("delete", documentID, err, "failed to execute transaction")
	}

	return nil
}

// Exists checks whether a document is registered.
func (r *RedisDocumentRepository) Exists(ctx context.Context, documentID string) (bool, error) {
	count, err := r.client.Exists(ctx, documentKeyPrefix+documentID).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ping checks the Redis connection.
func (r *RedisDocumentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (r *RedisDocumentRepository) Close() error {
	return r.client.Close()
}

func (r *RedisDocumentRepository) getBatch(ctx context.Context, op string, docIDs []string) ([]*Document, error) {
	if len(docIDs) == 0 {
		return []*Document{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(docIDs))
	for i, id := range docIDs {
		cmds[i] = pipe.Get(ctx, documentKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, NewDocumentRepositoryError(op, "", err, "")
	}

	docs := make([]*Document, 0, len(docIDs))
	for _, cmd := range cmds {
		docJSON, err := cmd.Result()
		if err == redis.Nil {
			// Index entry without a document key; skip stale reference
			continue
		}
		if err != nil {
			return nil, NewDocumentRepositoryError(op, "", err, "")
		}
		var doc Document
		if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
			return nil, NewDocumentRepositoryError(op, "", err, "failed to unmarshal document")
		}
		docs = append(docs, &doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})

	return docs, nil
}
