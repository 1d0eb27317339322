// Package alias implements Vose's alias method (component G): O(1)
// weighted sampling over a discrete distribution, rebuilt on demand
// whenever the scheduler's reinit_table flag is set.
package alias

import "math/rand"

// Table is a built alias table over n outcomes.
type Table struct {
	prob  []float64 // alias_probability[i]
	alias []int     // alias_table[i]
	n     int
	rng   *rand.Rand
}

// Build constructs a Table from raw (unnormalized) weights. A weight of
// zero (as for a disabled seed) guarantees that index never wins a draw.
func Build(weights []float64, rng *rand.Rand) *Table {
	n := len(weights)
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	t := &Table{
		prob:  make([]float64, n),
		alias: make([]int, n),
		n:     n,
		rng:   rng,
	}
	if n == 0 {
		return t
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		// every weight zero: leave every slot with probability 1 and
		// self-alias, matching "residual indices receive probability 1".
		for i := range t.prob {
			t.prob[i] = 1
			t.alias[i] = i
		}
		return t
	}

	scaled := make([]float64, n)
	for i, w := range weights {
		scaled[i] = w * float64(n) / sum
	}

	var small, large []int
	for i, p := range scaled {
		if p < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		t.prob[s] = scaled[s]
		t.alias[s] = l

		scaled[l] = scaled[l] - (1 - scaled[s])
		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	for _, l := range large {
		t.prob[l] = 1
		t.alias[l] = l
	}
	for _, s := range small {
		t.prob[s] = 1
		t.alias[s] = s
	}

	return t
}

// Size returns the number of outcomes the table was built over.
func (t *Table) Size() int { return t.n }

// Draw performs one O(1) weighted draw.
func (t *Table) Draw() int {
	if t.n == 0 {
		return -1
	}
	s := t.rng.Intn(t.n)
	u := t.rng.Float64()
	if u < t.prob[s] {
		return s
	}
	return t.alias[s]
}
