package round

import (
	"slices"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
	"github.com/louisbranch/arithmetic/internal/random"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/rules"
)

const (
	// TargetMin and TargetMax bound generated targets, inclusive.
	TargetMin = 101
	TargetMax = 999
	// OperandCount is the number of tiles drawn per round.
	OperandCount = 6
)

// largeWeights is the chance of drawing 0, 1, 2, 3 or 4 large tiles.
var largeWeights = []float64{.01, .4, .5, .08, .01}

var (
	largeTiles = []int{25, 50, 75, 100}
	smallTiles = []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10}
)

// ErrGeneratorExhausted is returned when a draw runs out of tiles.
var ErrGeneratorExhausted = apperrors.New(apperrors.CodeGeneratorExhausted, "tile pool exhausted")

// Draw produces a target and six tiles, sorted descending, from rng.
//
// The order of draws is fixed: the target, then the large tile count, then
// one pool index per tile. Changing it changes every round of every game.
func Draw(rng *random.Source) (int, []int, error) {
	target := rng.Int(TargetMin, TargetMax)
	largeCount := rng.Weighted(largeWeights)
	if largeCount < 0 {
		return 0, nil, ErrGeneratorExhausted
	}

	large := slices.Clone(largeTiles)
	small := slices.Clone(smallTiles)
	operands := make([]int, 0, OperandCount)
	for i := 0; i < OperandCount; i++ {
		var (
			tile int
			err  error
		)
		if i < largeCount {
			tile, large, err = take(rng, large)
		} else {
			tile, small, err = take(rng, small)
		}
		if err != nil {
			return 0, nil, err
		}
		operands = append(operands, tile)
	}
	return target, rules.SortDescending(operands), nil
}

// Generate creates a fresh round from a seed.
func Generate(seed string) (*Round, error) {
	target, operands, err := Draw(random.New(seed))
	if err != nil {
		return nil, err
	}
	return New(target, operands), nil
}

func take(rng *random.Source, pool []int) (int, []int, error) {
	if len(pool) == 0 {
		return 0, nil, ErrGeneratorExhausted
	}
	i := rng.Int(0, len(pool)-1)
	tile := pool[i]
	return tile, slices.Delete(pool, i, i+1), nil
}
