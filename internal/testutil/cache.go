package testutil

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCache 内存版缓存，实现 AsyncCacheService 与 Locker
// SubmitTask 同步执行，测试中缓存失效立即可见；不处理过期
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]string

	Sets    int // Set 调用次数
	Deletes int // Delete 调用次数
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]string)}
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.Sets++
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.Deletes++
	return nil
}

func (m *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
		}
	}
	return nil
}

func (m *MemoryCache) SubmitTask(action func()) {
	action()
}

func (m *MemoryCache) TryLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.data[key]; held {
		return "", false, nil
	}
	token := uuid.NewString()
	m.data[key] = token
	return token, true, nil
}

func (m *MemoryCache) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[key] == token {
		delete(m.data, key)
	}
	return nil
}

// Has 判断 key 是否存在
func (m *MemoryCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}
