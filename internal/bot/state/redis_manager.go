package state

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisManager persists conversational state in Redis so an in-flight CSV
// clarification survives a restart or redeploy.
type RedisManager struct {
	client *redis.Client
}

// stateTTL auto-expires stale states; nobody answers a "which bank?" prompt
// a day later.
const stateTTL = 24 * time.Hour

func NewRedisManager(redisHost, redisPort string) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		Password:     "",
		DB:           0,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisManager{client: client}, nil
}

func stateKey(userID int64) string {
	return fmt.Sprintf("user:%d:state", userID)
}

func csvKey(userID int64) string {
	return fmt.Sprintf("user:%d:csv", userID)
}

func (m *RedisManager) SetState(userID int64, state string) {
	m.client.Set(context.Background(), stateKey(userID), state, stateTTL)
}

func (m *RedisManager) State(userID int64) string {
	result := m.client.Get(context.Background(), stateKey(userID))
	if result.Err() != nil {
		return None
	}
	return result.Val()
}

func (m *RedisManager) ClearState(userID int64) {
	ctx := context.Background()
	m.client.Del(ctx, stateKey(userID))
	m.client.Del(ctx, csvKey(userID))
}

func (m *RedisManager) StashCSV(userID int64, content string) {
	m.client.Set(context.Background(), csvKey(userID), content, stateTTL)
}

func (m *RedisManager) TakeCSV(userID int64) string {
	ctx := context.Background()
	result := m.client.Get(ctx, csvKey(userID))
	if result.Err() != nil {
		return ""
	}
	m.client.Del(ctx, csvKey(userID))
	return result.Val()
}
