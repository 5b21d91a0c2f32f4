package repository

import (
	"context"
	"sort"
	"sync"

	"mediqa/casesim/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AttemptRepo archives completed cases for the history view
type AttemptRepo interface {
	Save(ctx context.Context, attempt *model.Attempt) error
	ListByTab(ctx context.Context, tabID string, limit int) ([]*model.Attempt, error)
}

type attemptRepo struct {
	attempts *mongo.Collection
}

// NewAttemptRepo creates a MongoDB-backed attempt archive
func NewAttemptRepo(db *mongo.Database) AttemptRepo {
	return &attemptRepo{
		attempts: db.Collection("case_attempts"),
	}
}

func (r *attemptRepo) Save(ctx context.Context, attempt *model.Attempt) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.attempts.ReplaceOne(ctx, bson.M{"_id": attempt.ID}, attempt, opts)
	return err
}

func (r *attemptRepo) ListByTab(ctx context.Context, tabID string, limit int) ([]*model.Attempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.attempts.Find(ctx, bson.M{"tabId": tabID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	attempts := make([]*model.Attempt, 0)
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

type memoryAttemptRepo struct {
	mu       sync.RWMutex
	attempts map[string]*model.Attempt
}

// NewMemoryAttemptRepo creates an in-process attempt archive
func NewMemoryAttemptRepo() AttemptRepo {
	return &memoryAttemptRepo{attempts: make(map[string]*model.Attempt)}
}

func (r *memoryAttemptRepo) Save(_ context.Context, attempt *model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *attempt
	r.attempts[attempt.ID] = &cp
	return nil
}

func (r *memoryAttemptRepo) ListByTab(_ context.Context, tabID string, limit int) ([]*model.Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Attempt, 0)
	for _, a := range r.attempts {
		if a.TabID == tabID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
