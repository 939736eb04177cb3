package layout

import (
	"context"
	"errors"
	"fmt"

	"github.com/tsawler/pdfblocks/model"
)

// MaxApplyIterations bounds the number of rounds Apply runs before it
// returns the working set as is.
const MaxApplyIterations = 50

// ErrInvariant reports a strategy that returned more blocks than it was
// given. It is a programming error, never a property of the input.
var ErrInvariant = errors.New("merge strategy grew the block set")

// Strategy merges the subset of blocks it manages. Merge must return at most
// as many blocks as it received and must not modify its inputs.
type Strategy interface {
	Manages(b *model.Block) bool
	Merge(ctx context.Context, blocks []*model.Block) ([]*model.Block, error)
}

// ApplyOptions controls Apply
type ApplyOptions struct {
	// SinglePass runs every strategy once instead of looping until no
	// strategy reduces the block count
	SinglePass bool
}

// Apply runs strategies in order over blocks. Each strategy takes the blocks
// it manages out of the working set and puts back its merge result; blocks
// no strategy manages pass through untouched. Rounds repeat while any
// strategy reduced the count, up to MaxApplyIterations.
func Apply(ctx context.Context, strategies []Strategy, blocks []*model.Block, opts ApplyOptions) ([]*model.Block, error) {
	working := make([]*model.Block, len(blocks))
	copy(working, blocks)

	for round := 0; round < MaxApplyIterations; round++ {
		reduced := false

		for _, s := range strategies {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			managed, rest := partition(working, s)
			if len(managed) == 0 {
				continue
			}

			merged, err := s.Merge(ctx, managed)
			if err != nil {
				return nil, fmt.Errorf("%T failed: %w", s, err)
			}
			if len(merged) > len(managed) {
				return nil, fmt.Errorf("%w: %T returned %d blocks for %d", ErrInvariant, s, len(merged), len(managed))
			}
			if len(merged) < len(managed) {
				reduced = true
			}

			working = append(rest, merged...)
		}

		if !reduced || opts.SinglePass {
			break
		}
	}

	return working, nil
}

func partition(blocks []*model.Block, s Strategy) (managed, rest []*model.Block) {
	for _, b := range blocks {
		if s.Manages(b) {
			managed = append(managed, b)
		} else {
			rest = append(rest, b)
		}
	}
	return managed, rest
}

// managesText is the predicate shared by every text strategy
func managesText(b *model.Block) bool {
	return b.IsText()
}
