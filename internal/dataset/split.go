package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// InvalidRatioError reports a split request that cannot be satisfied.
type InvalidRatioError struct {
	Ratio float64
	Rows  int
}

func (e *InvalidRatioError) Error() string {
	return fmt.Sprintf("invalid split: ratio=%g rows=%d (ratio must be in (0,1), dataset needs at least 2 rows)", e.Ratio, e.Rows)
}

// Split partitions the dataset into train and eval subsets. ratio is the
// fraction of rows assigned to eval. The partition depends only on
// (dataset order, ratio, seed): the same inputs always produce the same
// subsets. No row appears in both.
func Split(d *Dataset, ratio float64, seed int64) (train, eval *Dataset, err error) {
	if ratio <= 0 || ratio >= 1 || d.Len() < 2 {
		return nil, nil, &InvalidRatioError{Ratio: ratio, Rows: d.Len()}
	}

	n := d.Len()
	nEval := int(math.Round(float64(n) * ratio))
	if nEval < 1 {
		nEval = 1
	}
	if nEval > n-1 {
		nEval = n - 1
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	evalIdx := append([]int(nil), perm[:nEval]...)
	trainIdx := append([]int(nil), perm[nEval:]...)

	// Keep original row order within each subset.
	sort.Ints(evalIdx)
	sort.Ints(trainIdx)

	return d.subset(trainIdx), d.subset(evalIdx), nil
}
