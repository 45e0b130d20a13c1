// internal/storage/memory_store.go
package storage

import (
	"sync"

	"github.com/google/uuid"
)

// 存储使用的ID前缀
const (
	SessionPrefix = "session"
	ArticlePrefix = "article"
)

// Cloneable 存储的记录必须能深拷贝，读者拿到的永远是副本
type Cloneable[T any] interface {
	Clone() T
}

// MemoryStore 进程内只追加的记录存储：只有创建和读取，没有更新和删除
type MemoryStore[T Cloneable[T]] struct {
	prefix string
	items  map[string]T
	order  []string // 创建顺序
	mutex  sync.RWMutex
	newID  func() string
}

// NewMemoryStore 创建指定ID前缀的存储
func NewMemoryStore[T Cloneable[T]](prefix string) *MemoryStore[T] {
	return &MemoryStore[T]{
		prefix: prefix,
		items:  make(map[string]T),
		newID:  func() string { return uuid.NewString() },
	}
}

// NewSessionStore 会话存储
func NewSessionStore[T Cloneable[T]]() *MemoryStore[T] {
	return NewMemoryStore[T](SessionPrefix)
}

// NewArticleStore 文章存储
func NewArticleStore[T Cloneable[T]]() *MemoryStore[T] {
	return NewMemoryStore[T](ArticlePrefix)
}

// Create 分配新ID，由 build 构造记录并保存副本；已有ID永不覆盖
func (s *MemoryStore[T]) Create(build func(id string) T) T {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.nextID()
	for {
		if _, exists := s.items[id]; !exists {
			break
		}
		id = s.nextID()
	}

	record := build(id)
	s.items[id] = record.Clone()
	s.order = append(s.order, id)

	return record.Clone()
}

// Get 按ID读取记录副本
func (s *MemoryStore[T]) Get(id string) (T, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return record.Clone(), true
}

// List 按创建顺序返回所有记录副本
func (s *MemoryStore[T]) List() []T {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	records := make([]T, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.items[id].Clone())
	}
	return records
}

// Len 记录数量
func (s *MemoryStore[T]) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.order)
}

func (s *MemoryStore[T]) nextID() string {
	return s.prefix + "-" + s.newID()
}
