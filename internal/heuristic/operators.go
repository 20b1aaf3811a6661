package heuristic

import "math/rand"

// Crossover performs single-point crossover over the concatenated 2L
// genome (spec §4.6): genes before the cut point come from a, genes from
// the cut point onward come from b. Neither parent is modified.
func Crossover(a, b Genome, rng *rand.Rand) Genome {
	l := a.L()
	flat := make([]int, 0, 2*l)
	flat = append(flat, a.Prop...)
	flat = append(flat, a.Slot...)

	bFlat := make([]int, 0, 2*l)
	bFlat = append(bFlat, b.Prop...)
	bFlat = append(bFlat, b.Slot...)

	n := len(flat)
	if n < 2 {
		return a.Clone()
	}
	cut := 1 + rng.Intn(n-1)

	child := make([]int, n)
	copy(child, flat[:cut])
	copy(child[cut:], bFlat[cut:])

	return Genome{Prop: append([]int(nil), child[:l]...), Slot: append([]int(nil), child[l:]...)}
}

// Mutate applies per-gene uniform mutation at rate, reassigning a mutated
// gene to a fresh uniformly-random value within its own family. g is not
// modified; a fresh genome is returned.
func Mutate(g Genome, rate float64, rng *rand.Rand) Genome {
	out := g.Clone()
	for i := range out.Prop {
		if rng.Float64() < rate {
			out.Prop[i] = rng.Intn(NumProposalHeuristics)
		}
	}
	for i := range out.Slot {
		if rng.Float64() < rate {
			out.Slot[i] = rng.Intn(NumSlotHeuristics)
		}
	}
	return out
}

// TournamentSelect picks the best (lowest-fitness, since the
// hyper-heuristic minimizes) of tournamentSize individuals sampled
// uniformly with replacement from the population, per spec §4.6.
func TournamentSelect(fitnesses []int, tournamentSize int, rng *rand.Rand) int {
	best := rng.Intn(len(fitnesses))
	for i := 1; i < tournamentSize; i++ {
		candidate := rng.Intn(len(fitnesses))
		if fitnesses[candidate] < fitnesses[best] {
			best = candidate
		}
	}
	return best
}
