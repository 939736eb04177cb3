package model

import "github.com/google/uuid"

// Walk visits blocks and their descendants in pre-order. Returning false
// from fn skips the children of the visited block.
func Walk(blocks []*Block, fn func(*Block) bool) {
	stack := make([]*Block, 0, len(blocks))
	for i := len(blocks) - 1; i >= 0; i-- {
		stack = append(stack, blocks[i])
	}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b == nil || !fn(b) {
			continue
		}
		for i := len(b.Children) - 1; i >= 0; i-- {
			stack = append(stack, b.Children[i])
		}
	}
}

// Flatten returns blocks and all their descendants in pre-order
func Flatten(blocks []*Block) []*Block {
	var out []*Block
	Walk(blocks, func(b *Block) bool {
		out = append(out, b)
		return true
	})
	return out
}

// Leaves returns the descendants of blocks without children, distinct by UID
func Leaves(blocks []*Block) []*Block {
	seen := make(map[uuid.UUID]bool)
	var out []*Block
	Walk(blocks, func(b *Block) bool {
		if b.IsLeaf() && !seen[b.UID] {
			seen[b.UID] = true
			out = append(out, b)
		}
		return true
	})
	return out
}

// Index maps every block in the trees to its UID
func Index(blocks []*Block) map[uuid.UUID]*Block {
	idx := make(map[uuid.UUID]*Block)
	Walk(blocks, func(b *Block) bool {
		idx[b.UID] = b
		return true
	})
	return idx
}
