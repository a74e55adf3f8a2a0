package deckfill

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTemplateCache_Basic(t *testing.T) {
	cache := NewTemplateCache(10, 0)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("a", []byte("one"))
	data, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("one"), data)

	cache.Set("a", []byte("two"))
	data, _ = cache.Get("a")
	assert.Equal(t, []byte("two"), data)
	assert.Equal(t, 1, cache.Size())

	cache.Remove("a")
	assert.Equal(t, 0, cache.Size())
}

func TestTemplateCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewTemplateCache(2, 0)
	cache.Set("a", []byte("a"))
	cache.Set("b", []byte("b"))
	cache.Get("a")
	cache.Set("c", []byte("c"))

	_, okA := cache.Get("a")
	_, okB := cache.Get("b")
	_, okC := cache.Get("c")
	assert.True(t, okA)
	assert.False(t, okB, "b was least recently used")
	assert.True(t, okC)
	assert.Equal(t, 2, cache.Size())
}

func TestTemplateCache_TTL(t *testing.T) {
	cache := NewTemplateCache(10, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("a", []byte("a"))
	now = now.Add(30 * time.Second)
	_, ok := cache.Get("a")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())
}

func TestTemplateCache_Disabled(t *testing.T) {
	cache := NewTemplateCache(0, 0)
	cache.Set("a", []byte("a"))
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestTemplateCache_Clear(t *testing.T) {
	cache := NewTemplateCache(10, 0)
	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprint(i), []byte{byte(i)})
	}
	cache.Clear()
	assert.Equal(t, 0, cache.Size())
	cache.Set("x", []byte("x"))
	assert.Equal(t, 1, cache.Size())
}

func TestTemplateCache_Concurrent(t *testing.T) {
	cache := NewTemplateCache(16, time.Hour)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", (g+i)%32)
				cache.Set(key, []byte(key))
				if data, ok := cache.Get(key); ok {
					assert.Equal(t, key, string(data))
				}
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Size(), 16)
}
