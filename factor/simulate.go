package factor

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/aouyang1/go-densematrix/dense"
)

var ErrInvalidDensity = errors.New("density must be in (0, 1]")

// Simulate generates users by items implicit feedback with two planted
// communities. Users in the first half mostly interact with items in the first
// half and vice versa, so a factor model has structure to recover. density is
// the expected fraction of positive cells.
func Simulate(users, items int, density float64, seed uint64) (*dense.Dense[uint8], error) {
	if density <= 0 || density > 1 || math.IsNaN(density) {
		return nil, fmt.Errorf("%f, %w", density, ErrInvalidDensity)
	}
	feedback, err := dense.New[uint8](users, items)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate feedback, %w", err)
	}

	pIn := math.Min(1.0, 1.6*density)
	pOut := math.Min(1.0, 0.4*density)

	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for u := 0; u < users; u++ {
		row, err := feedback.RowView(u)
		if err != nil {
			return nil, err
		}
		userGroup := u * 2 / users
		for i := range row {
			p := pOut
			if i*2/items == userGroup {
				p = pIn
			}
			if r.Float64() < p {
				row[i] = 1
			}
		}
	}
	return feedback, nil
}
