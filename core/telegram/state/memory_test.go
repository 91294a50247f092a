package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	step    string
	answers []string
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore[*session]()

	_, ok := store.Get(1)
	assert.False(t, ok)

	created := store.GetOrCreate(1, func() *session { return &session{step: "language"} })
	again := store.GetOrCreate(1, func() *session { return &session{step: "other"} })
	assert.Same(t, created, again)

	store.Save(1, &session{step: "user_name"})
	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "user_name", got.step)
	assert.Equal(t, 1, store.Len())

	store.Delete(1)
	store.Delete(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestMemoryStoreSerializesPerUser(t *testing.T) {
	store := NewMemoryStore[session]()
	const users, turns = 8, 200

	var wg sync.WaitGroup
	for u := int64(1); u <= users; u++ {
		for i := 0; i < turns; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				unlock := store.Lock(id)
				defer unlock()
				s, _ := store.Get(id)
				s.answers = append(append([]string(nil), s.answers...), "x")
				store.Save(id, s)
			}(u)
		}
	}
	wg.Wait()

	for u := int64(1); u <= users; u++ {
		s, ok := store.Get(u)
		require.True(t, ok)
		assert.Len(t, s.answers, turns, "user %d", u)
	}
}

func TestMemoryStoreNegativeIDs(t *testing.T) {
	store := NewMemoryStore[int]()
	unlock := store.Lock(-1001234567890)
	store.Save(-1001234567890, 3)
	unlock()
	v, ok := store.Get(-1001234567890)
	require.True(t, ok)
	assert.Equal(t, 3, v)
}
