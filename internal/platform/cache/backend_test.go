package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]func(t *testing.T) Backend {
	t.Helper()
	return map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend {
			return NewMemory()
		},
		"redis": func(t *testing.T) Backend {
			server := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: server.Addr()})
			backend := NewRedisFromClient(client, "test")
			t.Cleanup(func() { _ = backend.Close() })
			return backend
		},
	}
}

func TestBackendFillAfterMiss(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			_, ticket, found, err := backend.Lookup(ctx, "users:id", "1")
			require.NoError(t, err)
			assert.False(t, found)

			applied, err := backend.Fill(ctx, "users:id", "1", ticket, []byte(`{"id":1}`), 1)
			require.NoError(t, err)
			assert.True(t, applied)

			entry, _, found, err := backend.Lookup(ctx, "users:id", "1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, `{"id":1}`, string(entry.Payload))
			assert.Equal(t, int64(1), entry.Version)
		})
	}
}

func TestBackendRejectsFillAfterEvict(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			_, ticket, _, err := backend.Lookup(ctx, "cards:id", "7")
			require.NoError(t, err)

			// a writer commits and evicts while the reader is still loading
			require.NoError(t, backend.Evict(ctx, "cards:id", "7", 2))

			applied, err := backend.Fill(ctx, "cards:id", "7", ticket, []byte(`"stale"`), 1)
			require.NoError(t, err)
			assert.False(t, applied)

			_, _, found, err := backend.Lookup(ctx, "cards:id", "7")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestBackendRejectsFillAfterPut(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			_, ticket, _, err := backend.Lookup(ctx, "users:id", "3")
			require.NoError(t, err)

			applied, err := backend.Put(ctx, "users:id", "3", []byte(`"v2"`), 2)
			require.NoError(t, err)
			require.True(t, applied)

			applied, err = backend.Fill(ctx, "users:id", "3", ticket, []byte(`"v1"`), 1)
			require.NoError(t, err)
			assert.False(t, applied)

			entry, _, found, err := backend.Lookup(ctx, "users:id", "3")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, `"v2"`, string(entry.Payload))
		})
	}
}

func TestBackendPutKeepsNewestVersion(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			applied, err := backend.Put(ctx, "users:id", "1", []byte(`"v3"`), 3)
			require.NoError(t, err)
			require.True(t, applied)

			applied, err = backend.Put(ctx, "users:id", "1", []byte(`"v2"`), 2)
			require.NoError(t, err)
			assert.False(t, applied)

			entry, _, found, err := backend.Lookup(ctx, "users:id", "1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, `"v3"`, string(entry.Payload))
			assert.Equal(t, int64(3), entry.Version)
		})
	}
}

func TestBackendTombstoneBlocksOlderPut(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			require.NoError(t, backend.Evict(ctx, "cards:id", "9", 5))

			applied, err := backend.Put(ctx, "cards:id", "9", []byte(`"old"`), 4)
			require.NoError(t, err)
			assert.False(t, applied)

			applied, err = backend.Put(ctx, "cards:id", "9", []byte(`"new"`), 5)
			require.NoError(t, err)
			assert.True(t, applied)
		})
	}
}

func TestBackendClearInvalidatesTickets(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			_, err := backend.Put(ctx, "cards:owner", "1", []byte(`[]`), 0)
			require.NoError(t, err)
			_, err = backend.Put(ctx, "users:id", "1", []byte(`"u"`), 1)
			require.NoError(t, err)

			_, ticket, _, err := backend.Lookup(ctx, "cards:owner", "2")
			require.NoError(t, err)

			require.NoError(t, backend.Clear(ctx, "cards:owner"))

			applied, err := backend.Fill(ctx, "cards:owner", "2", ticket, []byte(`[]`), 0)
			require.NoError(t, err)
			assert.False(t, applied)

			_, _, found, err := backend.Lookup(ctx, "cards:owner", "1")
			require.NoError(t, err)
			assert.False(t, found)

			_, _, found, err = backend.Lookup(ctx, "users:id", "1")
			require.NoError(t, err)
			assert.True(t, found, "other spaces survive Clear")
		})
	}
}

func TestBackendFlushDropsEverything(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			_, err := backend.Put(ctx, "users:id", "1", []byte(`"u"`), 1)
			require.NoError(t, err)
			_, err = backend.Put(ctx, "cards:id", "1", []byte(`"c"`), 1)
			require.NoError(t, err)
			_, ticket, _, err := backend.Lookup(ctx, "cards:id", "2")
			require.NoError(t, err)

			require.NoError(t, backend.Flush(ctx))

			for _, space := range []string{"users:id", "cards:id"} {
				_, _, found, err := backend.Lookup(ctx, space, "1")
				require.NoError(t, err)
				assert.False(t, found, space)
			}
			applied, err := backend.Fill(ctx, "cards:id", "2", ticket, []byte(`"c2"`), 1)
			require.NoError(t, err)
			assert.False(t, applied)
		})
	}
}

func TestBackendClearKeepsVersionFloor(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			_, err := backend.Put(ctx, "cards:id", "7", []byte(`"v3"`), 3)
			require.NoError(t, err)
			require.NoError(t, backend.Evict(ctx, "cards:id", "8", 5))
			require.NoError(t, backend.Clear(ctx, "cards:id"))

			applied, err := backend.Put(ctx, "cards:id", "7", []byte(`"v2"`), 2)
			require.NoError(t, err)
			assert.False(t, applied, "late write older than the cleared entry")
			_, _, found, err := backend.Lookup(ctx, "cards:id", "7")
			require.NoError(t, err)
			assert.False(t, found)

			_, ticket, _, err := backend.Lookup(ctx, "cards:id", "8")
			require.NoError(t, err)
			applied, err = backend.Fill(ctx, "cards:id", "8", ticket, []byte(`"v4"`), 4)
			require.NoError(t, err)
			assert.False(t, applied, "tombstone survives Clear")

			applied, err = backend.Put(ctx, "cards:id", "7", []byte(`"v4"`), 4)
			require.NoError(t, err)
			assert.True(t, applied)
			entry, _, found, err := backend.Lookup(ctx, "cards:id", "7")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, int64(4), entry.Version)
		})
	}
}

func TestBackendFlushKeepsVersionFloor(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			_, err := backend.Put(ctx, "users:id", "1", []byte(`"v3"`), 3)
			require.NoError(t, err)
			require.NoError(t, backend.Flush(ctx))

			applied, err := backend.Put(ctx, "users:id", "1", []byte(`"v1"`), 1)
			require.NoError(t, err)
			assert.False(t, applied)

			applied, err = backend.Put(ctx, "users:id", "1", []byte(`"v3"`), 3)
			require.NoError(t, err)
			assert.True(t, applied)
		})
	}
}

func TestBackendConcurrentWritersKeepNewestVersion(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := newBackend(t)

			var wg sync.WaitGroup
			for version := int64(1); version <= 20; version++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					_, _ = backend.Put(ctx, "users:id", "1", []byte(strconv.FormatInt(version, 10)), version)
				}()
				go func() {
					defer wg.Done()
					_, ticket, found, err := backend.Lookup(ctx, "users:id", "1")
					if err != nil || found {
						return
					}
					_, _ = backend.Fill(ctx, "users:id", "1", ticket, []byte("0"), 0)
				}()
			}
			wg.Wait()

			entry, _, found, err := backend.Lookup(ctx, "users:id", "1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, int64(20), entry.Version)
			assert.Equal(t, "20", string(entry.Payload))
		})
	}
}

func TestMemoryClosed(t *testing.T) {
	backend := NewMemory()
	require.NoError(t, backend.Close())

	_, _, _, err := backend.Lookup(context.Background(), "users:id", "1")
	assert.ErrorIs(t, err, ErrClosed)
}
