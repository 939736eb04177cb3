package layout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/pdfblocks/model"
)

func TestPoolPullRelease(t *testing.T) {
	pool := NewGroupPool(4)
	ctx := context.Background()

	handles, err := pool.Pull(ctx, 3)
	require.NoError(t, err)
	require.Len(t, handles, 3)
	assert.Equal(t, 1, pool.Available())

	g := pool.Group(handles[0])
	require.NotNil(t, g)
	require.NoError(t, g.Push(makeText("a", 0, 0, 10, 10)))

	require.NoError(t, pool.Release(handles...))
	assert.Equal(t, 4, pool.Available())
	assert.Equal(t, 0, g.Len(), "released groups are reset")
}

func TestPoolRequestLargerThanCapacity(t *testing.T) {
	pool := NewGroupPool(2)
	_, err := pool.Pull(context.Background(), 3)
	assert.True(t, errors.Is(err, ErrPoolExhausted))
	assert.Equal(t, 2, pool.Available())
}

func TestPoolStaleHandles(t *testing.T) {
	pool := NewGroupPool(1)
	ctx := context.Background()

	first, err := pool.Pull(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, pool.Release(first...))

	err = pool.Release(first...)
	assert.True(t, errors.Is(err, ErrStaleGroup), "double release")

	second, err := pool.Pull(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first[0].Index(), second[0].Index())
	assert.NotEqual(t, first[0].Generation(), second[0].Generation())

	assert.Nil(t, pool.Group(first[0]), "old handle must not resolve")
	assert.True(t, errors.Is(pool.Release(first...), ErrStaleGroup))
	assert.Equal(t, 0, pool.Available(), "stale release must not free the new owner's group")

	require.NoError(t, pool.Release(second...))
}

func TestPoolPullWaitsForRelease(t *testing.T) {
	pool := NewGroupPool(2)
	ctx := context.Background()

	held, err := pool.Pull(ctx, 2)
	require.NoError(t, err)

	got := make(chan []GroupHandle)
	go func() {
		h, err := pool.Pull(ctx, 1)
		if err != nil {
			close(got)
			return
		}
		got <- h
	}()

	select {
	case <-got:
		t.Fatal("Pull returned while the pool was empty")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, pool.Release(held[0]))
	h, ok := <-got
	require.True(t, ok)
	require.Len(t, h, 1)
	require.NoError(t, pool.Release(append(h, held[1])...))
	assert.Equal(t, 2, pool.Available())
}

func TestPoolPullCancelled(t *testing.T) {
	pool := NewGroupPool(1)
	held, err := pool.Pull(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = pool.Pull(ctx, 1)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	require.NoError(t, pool.Release(held...))
	assert.Equal(t, 1, pool.Available())
}

func TestPoolConcurrentUse(t *testing.T) {
	pool := NewGroupPool(8)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				handles, err := pool.Pull(ctx, 3)
				if err != nil {
					t.Error(err)
					return
				}
				for _, h := range handles {
					if g := pool.Group(h); g == nil || g.Len() != 0 {
						t.Error("pulled group is not empty")
					}
				}
				if err := pool.Release(handles...); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, pool.Available())
}

func TestMergeReleasesGroups(t *testing.T) {
	pool := NewGroupPool(8)
	strategy := NewOverlapStrategy(pool)

	blocks := []*model.Block{
		makeText("a", 0, 0, 10, 10),
		makeText("b", 5, 0, 10, 10),
		makeText("c", 100, 0, 10, 10),
	}
	_, err := strategy.Merge(context.Background(), blocks)
	require.NoError(t, err)
	assert.Equal(t, 8, pool.Available())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = strategy.Merge(ctx, blocks)
	assert.Error(t, err)
	assert.Equal(t, 8, pool.Available())
}
