package alias

import (
	"math/rand"
	"testing"
)

func TestDistributionWithinTolerance(t *testing.T) {
	weights := []float64{1, 1, 2, 4}
	want := []float64{0.125, 0.125, 0.25, 0.5}

	table := Build(weights, rand.New(rand.NewSource(42)))

	const draws = 1_000_000
	counts := make([]int, len(weights))
	for i := 0; i < draws; i++ {
		counts[table.Draw()]++
	}

	for i, w := range want {
		got := float64(counts[i]) / float64(draws)
		if diff := got - w; diff > 0.01 || diff < -0.01 {
			t.Fatalf("outcome %d: freq %f, want %f +/- 0.01", i, got, w)
		}
	}
}

func TestDisabledSeedNeverWins(t *testing.T) {
	weights := []float64{0, 5, 5}
	table := Build(weights, rand.New(rand.NewSource(7)))
	for i := 0; i < 10000; i++ {
		if table.Draw() == 0 {
			t.Fatal("zero-weight outcome won a draw")
		}
	}
}

func TestBuildDeterministicGivenSameWeights(t *testing.T) {
	weights := []float64{3, 1, 1, 5}
	a := Build(weights, nil)
	b := Build(weights, nil)
	for i := range weights {
		if a.prob[i] != b.prob[i] || a.alias[i] != b.alias[i] {
			t.Fatalf("index %d: tables diverge", i)
		}
	}
}

func TestProbabilitySumInvariant(t *testing.T) {
	weights := []float64{2, 3, 5, 7, 11}
	table := Build(weights, nil)
	sum := 0.0
	for i := 0; i < table.Size(); i++ {
		sum += table.prob[i] + (1 - table.prob[i])
	}
	if diff := sum - float64(table.Size()); diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("sum = %f, want %d", sum, table.Size())
	}
}
