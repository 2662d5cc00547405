package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Abhishekshinde12/Conv-AI/internal/cache"
	"github.com/Abhishekshinde12/Conv-AI/internal/config"
	"github.com/Abhishekshinde12/Conv-AI/internal/domain"
	"github.com/Abhishekshinde12/Conv-AI/internal/hub"
	"github.com/Abhishekshinde12/Conv-AI/internal/repository"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.UserModel{},
		&domain.ConversationModel{},
		&domain.MessageModel{},
	))

	return db
}

func seedUser(t *testing.T, repo repository.UserRepository, first, last, role string) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:     fmt.Sprintf("%s.%s.%s@example.com", first, last, uuid.New().String()[:8]),
		FirstName: first,
		LastName:  last,
		Role:      role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
	}
}

// memCache is an in-memory TranscriptCache for tests.
type memCache struct {
	mu          sync.Mutex
	data        map[string][]domain.Message
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]domain.Message)}
}

func (c *memCache) Get(_ context.Context, conversationID string) ([]domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msgs, ok := c.data[conversationID]; ok {
		return msgs, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *memCache) Set(_ context.Context, conversationID string, messages []domain.Message, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[conversationID] = messages
	return nil
}

func (c *memCache) Invalidate(_ context.Context, conversationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, conversationID)
	c.invalidated = append(c.invalidated, conversationID)
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

func receive(t *testing.T, c *hub.Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
		return nil
	}
}

func assertNoDelivery(t *testing.T, c *hub.Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected delivery: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}
