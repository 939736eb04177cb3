package layout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultPoolCapacity is the number of groups a pool holds when no
// capacity is configured
const DefaultPoolCapacity = 4096

var (
	// ErrPoolExhausted is returned when a single request asks for more
	// groups than the pool will ever hold
	ErrPoolExhausted = errors.New("group pool capacity exceeded")

	// ErrStaleGroup is returned when a handle is released twice or after
	// its slot was handed out again
	ErrStaleGroup = errors.New("stale group handle")
)

// GroupHandle identifies a group pulled from a GroupPool. The generation
// changes every time the slot is handed out, so an old handle can never
// release a group that now belongs to someone else.
type GroupHandle struct {
	index      int
	generation uint64
}

// Index returns the slot index of the handle
func (h GroupHandle) Index() int { return h.index }

// Generation returns the slot generation the handle was issued for
func (h GroupHandle) Generation() uint64 { return h.generation }

type poolSlot struct {
	group      TextGroup
	generation uint64
	held       bool
}

// GroupPool is a fixed arena of reusable TextGroups. Pull blocks while the
// pool lacks free groups; Release returns them.
//
// A pool is owned by one extractor; strategies receive it explicitly.
type GroupPool struct {
	sem      *semaphore.Weighted
	capacity int

	mu    sync.Mutex
	slots []poolSlot
	free  []int
}

// NewGroupPool creates a pool holding capacity groups
func NewGroupPool(capacity int) *GroupPool {
	if capacity < 1 {
		capacity = DefaultPoolCapacity
	}
	p := &GroupPool{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
		slots:    make([]poolSlot, capacity),
		free:     make([]int, capacity),
	}
	for i := range p.free {
		p.free[i] = capacity - 1 - i
	}
	return p
}

// Capacity returns the total number of groups in the pool
func (p *GroupPool) Capacity() int {
	return p.capacity
}

// Available returns the number of groups not currently held
func (p *GroupPool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Pull reserves n empty groups, waiting until they are available or ctx is
// done. Requests larger than the pool capacity fail immediately.
func (p *GroupPool) Pull(ctx context.Context, n int) ([]GroupHandle, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > p.capacity {
		return nil, fmt.Errorf("%w: requested %d groups, capacity is %d", ErrPoolExhausted, n, p.capacity)
	}
	if err := p.sem.Acquire(ctx, int64(n)); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	handles := make([]GroupHandle, n)
	for i := range handles {
		idx := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]

		slot := &p.slots[idx]
		slot.generation++
		slot.held = true
		handles[i] = GroupHandle{index: idx, generation: slot.generation}
	}
	return handles, nil
}

// Group resolves a handle. It returns nil for stale handles.
func (p *GroupPool) Group(h GroupHandle) *TextGroup {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.valid(h) {
		return nil
	}
	return &p.slots[h.index].group
}

// Release resets the groups behind handles and returns them to the pool.
// Stale handles are skipped and reported with ErrStaleGroup.
func (p *GroupPool) Release(handles ...GroupHandle) error {
	p.mu.Lock()
	released := 0
	stale := 0
	for _, h := range handles {
		if !p.valid(h) {
			stale++
			continue
		}
		slot := &p.slots[h.index]
		slot.group.reset()
		slot.held = false
		p.free = append(p.free, h.index)
		released++
	}
	p.mu.Unlock()

	if released > 0 {
		p.sem.Release(int64(released))
	}
	if stale > 0 {
		return fmt.Errorf("%w: %d handle(s)", ErrStaleGroup, stale)
	}
	return nil
}

func (p *GroupPool) valid(h GroupHandle) bool {
	if h.index < 0 || h.index >= len(p.slots) {
		return false
	}
	slot := &p.slots[h.index]
	return slot.held && slot.generation == h.generation
}
