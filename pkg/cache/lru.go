package cache

import (
	"container/list"
	"sync"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a fixed-capacity map that evicts the least recently used key.
// A capacity of zero or less disables caching: Put is a no-op.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	lruList  *list.List
	items    map[K]*list.Element
}

func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	return &LRU[K, V]{
		capacity: capacity,
		lruList:  list.New(),
		items:    make(map[K]*list.Element),
	}
}

func (l *LRU[K, V]) Get(key K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	elem, ok := l.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	l.lruList.MoveToFront(elem)
	return elem.Value.(*entry[K, V]).value, true
}

// Put inserts or refreshes key and evicts from the back when full.
func (l *LRU[K, V]) Put(key K, value V) {
	if l.capacity <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if elem, ok := l.items[key]; ok {
		elem.Value.(*entry[K, V]).value = value
		l.lruList.MoveToFront(elem)
		return
	}
	l.items[key] = l.lruList.PushFront(&entry[K, V]{key: key, value: value})
	for l.lruList.Len() > l.capacity {
		back := l.lruList.Back()
		l.lruList.Remove(back)
		delete(l.items, back.Value.(*entry[K, V]).key)
	}
}

func (l *LRU[K, V]) Remove(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if elem, ok := l.items[key]; ok {
		l.lruList.Remove(elem)
		delete(l.items, key)
	}
}

func (l *LRU[K, V]) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lruList.Init()
	clear(l.items)
}

func (l *LRU[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lruList.Len()
}
