package store

import (
	"container/list"
	"time"
)

type cacheEntry struct {
	key      string
	value    any
	storedAt time.Time
}

// ttlCache is a bounded cache with a fixed time to live. Once full, the
// oldest inserted entry is evicted; reads do not refresh position. Callers
// hold the store lock.
type ttlCache struct {
	ttl      time.Duration
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

func newTTLCache(ttl time.Duration, capacity int) *ttlCache {
	return &ttlCache{
		ttl:      ttl,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// get returns the value for key. An entry older than ttl counts as a miss
// and is evicted.
func (c *ttlCache) get(key string, now time.Time) (any, bool) {
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if now.Sub(entry.storedAt) >= c.ttl {
		c.removeElement(elem)
		return nil, false
	}
	return entry.value, true
}

func (c *ttlCache) set(key string, value any, now time.Time) {
	if c.capacity <= 0 {
		return
	}
	if elem, ok := c.entries[key]; ok {
		c.removeElement(elem)
	}
	c.entries[key] = c.order.PushBack(&cacheEntry{key: key, value: value, storedAt: now})
	for c.order.Len() > c.capacity {
		c.removeElement(c.order.Front())
	}
}

func (c *ttlCache) invalidate(keys ...string) {
	for _, key := range keys {
		if elem, ok := c.entries[key]; ok {
			c.removeElement(elem)
		}
	}
}

func (c *ttlCache) len() int {
	return c.order.Len()
}

func (c *ttlCache) removeElement(elem *list.Element) {
	entry := c.order.Remove(elem).(*cacheEntry)
	delete(c.entries, entry.key)
}

func idKey(id string) string           { return "id:" + id }
func aliasKey(alias string) string     { return "alias:" + alias }
func contactKey(contact string) string { return "contact:" + contact }
func statusKey(status Status) string   { return "status:" + string(status) }
