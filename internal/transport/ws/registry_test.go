package ws

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakePusher struct {
	mu     sync.Mutex
	frames [][]byte
	full   bool
}

func (p *fakePusher) Push(data []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.full {
		return false
	}
	p.frames = append(p.frames, data)
	return true
}

func (p *fakePusher) pushed() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.New()
	conn := &fakePusher{}

	_, ok := registry.Lookup(userID)
	req.False(ok)

	registry.Register(userID, conn)

	got, ok := registry.Lookup(userID)
	req.True(ok)
	req.Same(conn, got.(*fakePusher))
	req.Equal(1, registry.Len())
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.New()
	first := &fakePusher{}
	second := &fakePusher{}

	registry.Register(userID, first)
	registry.Register(userID, second)

	got, ok := registry.Lookup(userID)
	req.True(ok)
	req.Same(second, got.(*fakePusher))
	req.Equal(1, registry.Len())
}

func TestRegistry_UnregisterAbsentIsNoop(t *testing.T) {
	registry := NewRegistry()
	registry.Unregister(uuid.New())
	require.Equal(t, 0, registry.Len())
}

func TestRegistry_ReleaseKeepsSuccessor(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.New()
	stale := &fakePusher{}
	current := &fakePusher{}

	registry.Register(userID, stale)
	registry.Register(userID, current)

	// the replaced session's teardown must not evict the new connection
	registry.Release(userID, stale)
	got, ok := registry.Lookup(userID)
	req.True(ok)
	req.Same(current, got.(*fakePusher))

	registry.Release(userID, current)
	_, ok = registry.Lookup(userID)
	req.False(ok)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	users := make([]uuid.UUID, 8)
	for i := range users {
		users[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := users[i%len(users)]
			registry.Register(userID, &fakePusher{})
			registry.Lookup(userID)
			if i%3 == 0 {
				registry.Unregister(userID)
			}
		}(i)
	}
	wg.Wait()
}
