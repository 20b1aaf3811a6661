package optimizer

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/ska-sa/obssched/internal/schedule"
	"github.com/ska-sa/obssched/internal/schederr"
)

// DirectParams are the direct-encoding optimizer's hyper-parameters,
// defaulting to the values in spec §4.5.
type DirectParams struct {
	PopulationSize  int
	Generations     int
	CrossoverRate   float64
	MutationRate    float64
	ElitismFraction float64
}

// DefaultDirectParams returns the spec-mandated defaults; callers override
// PopulationSize and Generations from CLI/API input.
func DefaultDirectParams() DirectParams {
	return DirectParams{
		CrossoverRate:   0.2,
		MutationRate:    0.1,
		ElitismFraction: 0.75,
	}
}

// DirectResult is the outcome of a direct-encoding optimizer run.
type DirectResult struct {
	Best    *schedule.Schedule
	History []float64 // best fitness at the end of each generation
}

// RunDirect executes the direct-encoding genetic optimizer (C5): population
// of schedules, generational evolution via crossover, mutation, and
// elitism. It honors cooperative cancellation at generation boundaries,
// returning the current best individual instead of an error when ctx is
// done (spec §5, §7 — Cancelled is not an error to the caller).
func RunDirect(ctx context.Context, oc Context, params DirectParams) (*DirectResult, error) {
	if params.PopulationSize <= 0 {
		return nil, schederr.ErrEmptyPopulation
	}

	rng := oc.NewRand(0)
	pop := initialPopulation(oc, params.PopulationSize, rng)

	if err := evaluateAll(ctx, pop); err != nil {
		return bestResult(pop, nil), nil
	}
	sortByFitnessDescending(pop)

	history := []float64{pop[0].Fitness()}

	for gen := 0; gen < params.Generations; gen++ {
		select {
		case <-ctx.Done():
			return bestResult(pop, history), nil
		default:
		}

		pop = evolveOneGeneration(ctx, oc, pop, params, rng)
		if err := evaluateAll(ctx, pop); err != nil {
			return bestResult(pop, history), nil
		}
		sortByFitnessDescending(pop)
		history = append(history, pop[0].Fitness())
	}

	return bestResult(pop, history), nil
}

func initialPopulation(oc Context, n int, rng *rand.Rand) []*Individual {
	pop := make([]*Individual, n)
	for i := range pop {
		s := schedule.NewRandom(oc.Proposals, oc.Horizon, oc.Site, oc.Antennas, rng)
		pop[i] = NewIndividual(s)
	}
	return pop
}

func sortByFitnessDescending(pop []*Individual) {
	sort.Slice(pop, func(i, j int) bool { return pop[i].Fitness() > pop[j].Fitness() })
}

// evolveOneGeneration applies the per-generation protocol of spec §4.5:
// elitism preserves the top slice verbatim, and the trailing
// crossover_rate-sized slice is replaced by offspring of elite parents.
func evolveOneGeneration(ctx context.Context, oc Context, pop []*Individual, params DirectParams, rng *rand.Rand) []*Individual {
	n := len(pop)
	eliteCount := int(float64(n) * params.ElitismFraction)
	if eliteCount < 1 {
		eliteCount = 1
	}
	elite := pop[:eliteCount]

	replaceCount := int(float64(n) * params.CrossoverRate)
	startIdx := n - replaceCount - 1
	if startIdx < 0 {
		startIdx = 0
	}

	next := make([]*Individual, n)
	copy(next, pop)

	for i := startIdx; i < n; i++ {
		parentA := elite[rng.Intn(len(elite))]
		parentB := elite[rng.Intn(len(elite))]
		next[i] = reproduceOffspring(oc, parentA, parentB, params.MutationRate, rng)
	}

	return next
}

// reproduceOffspring produces k in [4,8] offspring from two parents by
// gene-wise crossover plus per-offspring mutation, ranks them by fitness,
// and returns one sampled uniformly from the top max(2, floor(k*0.4)).
func reproduceOffspring(oc Context, parentA, parentB *Individual, mutationRate float64, rng *rand.Rand) *Individual {
	k := 4 + rng.Intn(5) // [4,8]
	offspring := make([]*Individual, k)
	for i := 0; i < k; i++ {
		child := schedule.Crossover(parentA.Schedule, parentB.Schedule, rng)
		child = schedule.Mutate(child, mutationRate, oc.Horizon, oc.Site, oc.Antennas, rng)
		offspring[i] = NewIndividual(child)
	}

	sort.Slice(offspring, func(i, j int) bool { return offspring[i].Fitness() > offspring[j].Fitness() })

	topN := int(math.Floor(float64(k) * 0.4))
	if topN < 2 {
		topN = 2
	}
	if topN > k {
		topN = k
	}
	return offspring[rng.Intn(topN)]
}

func bestResult(pop []*Individual, history []float64) *DirectResult {
	if len(pop) == 0 {
		return &DirectResult{History: history}
	}
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Fitness() > best.Fitness() {
			best = ind
		}
	}
	return &DirectResult{Best: best.Schedule, History: history}
}
