package cache

import (
	"container/list"
	"sync"
)

// NamespaceLRU is a size-bounded LRU cache whose keys are scoped by namespace.
// Rendered QR codes are cached per output format, one namespace each.
type NamespaceLRU struct {
	capacity int
	items    map[string]*list.Element
	queue    *list.List
	mutex    sync.Mutex
}

type entry struct {
	compositeKey string
	value        interface{}
}

// NewNamespaceLRU creates a cache holding at most capacity entries across
// all namespaces. A capacity below 1 is treated as 1.
func NewNamespaceLRU(capacity int) *NamespaceLRU {
	if capacity < 1 {
		capacity = 1
	}
	return &NamespaceLRU{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		queue:    list.New(),
	}
}

func compositeKey(namespace, key string) string {
	return namespace + "\x00" + key
}

// Set adds or updates a value and marks it most recently used
func (c *NamespaceLRU) Set(namespace, key string, value interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ck := compositeKey(namespace, key)
	if element, exists := c.items[ck]; exists {
		c.queue.MoveToFront(element)
		element.Value.(*entry).value = value
		return
	}

	c.items[ck] = c.queue.PushFront(&entry{
		compositeKey: ck,
		value:        value,
	})

	for c.queue.Len() > c.capacity {
		c.evict()
	}
}

// Get returns the cached value and marks it most recently used
func (c *NamespaceLRU) Get(namespace, key string) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	element, exists := c.items[compositeKey(namespace, key)]
	if !exists {
		return nil, false
	}

	c.queue.MoveToFront(element)
	return element.Value.(*entry).value, true
}

// Size returns the number of cached entries
func (c *NamespaceLRU) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.queue.Len()
}

// evict drops the least recently used entry. Callers hold the mutex.
func (c *NamespaceLRU) evict() {
	element := c.queue.Back()
	if element == nil {
		return
	}
	c.queue.Remove(element)
	delete(c.items, element.Value.(*entry).compositeKey)
}
