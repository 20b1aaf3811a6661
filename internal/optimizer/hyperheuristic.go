package optimizer

import (
	"context"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ska-sa/obssched/internal/heuristic"
	"github.com/ska-sa/obssched/internal/schederr"
)

// HyperHeuristicParams are the hyper-heuristic optimizer's hyper-
// parameters (spec §4.6).
type HyperHeuristicParams struct {
	PopulationSize int
	Generations    int
	GenomeLength   int // L
	MutationRate   float64
	TournamentSize int
	SlotDuration   time.Duration
}

// DefaultHyperHeuristicParams returns the spec-mandated defaults.
func DefaultHyperHeuristicParams() HyperHeuristicParams {
	return HyperHeuristicParams{
		MutationRate:   0.1,
		TournamentSize: 3,
		SlotDuration:   heuristic.DefaultSlotDuration,
	}
}

// HyperHeuristicResult is the outcome of a hyper-heuristic optimizer run.
type HyperHeuristicResult struct {
	Best    *heuristic.DecodeResult
	History []int // best (minimized) fitness at the end of each generation
}

// hhIndividual pairs a genome with its (lazily computed) decode and
// fitness.
type hhIndividual struct {
	genome   heuristic.Genome
	decoded  *heuristic.DecodeResult
	fitness  int
	computed bool
}

func (ind *hhIndividual) evaluate(oc Context, preFiltered map[int64]bool, slotDuration time.Duration, rng *rand.Rand) {
	if ind.computed {
		return
	}
	result := heuristic.Decode(ind.genome, oc.Proposals, preFiltered, oc.Horizon, oc.Site, oc.Antennas, slotDuration, rng)
	ind.decoded = &result
	ind.fitness = heuristic.Fitness(result)
	ind.computed = true
}

// RunHyperHeuristic executes the hyper-heuristic optimizer (C6): a
// population of heuristic-index genomes, decoded by greedy construction
// each generation, selected by tournament, and evolved by single-point
// crossover plus per-gene mutation. The optimizer minimizes F_h.
func RunHyperHeuristic(ctx context.Context, oc Context, params HyperHeuristicParams) (*HyperHeuristicResult, error) {
	if params.PopulationSize <= 0 {
		return nil, schederr.ErrEmptyPopulation
	}
	if params.SlotDuration <= 0 {
		params.SlotDuration = heuristic.DefaultSlotDuration
	}

	rng := oc.NewRand(1)
	preFiltered := infeasibilityShortCircuit(oc, params.SlotDuration, rng)

	pop := make([]*hhIndividual, params.PopulationSize)
	for i := range pop {
		pop[i] = &hhIndividual{genome: heuristic.NewRandomGenome(params.GenomeLength, rng)}
	}
	evaluateAllHH(pop, oc, preFiltered, params.SlotDuration, rng)

	best := bestHH(pop)
	history := []int{best.fitness}

	for gen := 0; gen < params.Generations; gen++ {
		select {
		case <-ctx.Done():
			return &HyperHeuristicResult{Best: best.decoded, History: history}, nil
		default:
		}

		next := make([]*hhIndividual, len(pop))
		next[0] = best // 1-elitism, mirroring the direct encoding's elitist preservation

		fitnesses := make([]int, len(pop))
		for i, ind := range pop {
			fitnesses[i] = ind.fitness
		}

		for i := 1; i < len(pop); i++ {
			aIdx := heuristic.TournamentSelect(fitnesses, params.TournamentSize, rng)
			bIdx := heuristic.TournamentSelect(fitnesses, params.TournamentSize, rng)
			child := heuristic.Crossover(pop[aIdx].genome, pop[bIdx].genome, rng)
			child = heuristic.Mutate(child, params.MutationRate, rng)
			next[i] = &hhIndividual{genome: child}
		}

		pop = next
		evaluateAllHH(pop, oc, preFiltered, params.SlotDuration, rng)
		best = bestHH(pop)
		history = append(history, best.fitness)
	}

	return &HyperHeuristicResult{Best: best.decoded, History: history}, nil
}

// evaluateAllHH decodes and scores every individual in pop across a
// bounded worker pool. Each worker derives its own thread-local RNG from
// the context's seed and the individual's index, so a run's outcome is
// reproducible regardless of scheduling order (spec §5, §9).
func evaluateAllHH(pop []*hhIndividual, oc Context, preFiltered map[int64]bool, slotDuration time.Duration, _ *rand.Rand) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(pop) {
		workers = len(pop)
	}
	if workers < 1 {
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, ind := range pop {
		i, ind := i, ind
		g.Go(func() error {
			workerRng := oc.NewRand(int64(i) + 1000)
			ind.evaluate(oc, preFiltered, slotDuration, workerRng)
			return nil
		})
	}
	_ = g.Wait()
}

func bestHH(pop []*hhIndividual) *hhIndividual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.fitness < best.fitness {
			best = ind
		}
	}
	return best
}

// infeasibilityShortCircuit runs the cheapest first-fit placement on each
// proposal against an empty schedule to separate impossible-to-place
// proposals before evolution begins (spec §4.6).
func infeasibilityShortCircuit(oc Context, slotDuration time.Duration, rng *rand.Rand) map[int64]bool {
	impossible := make(map[int64]bool)
	for _, p := range oc.Proposals {
		candidates := heuristic.CandidateInstants(p, oc.Horizon, oc.Site, slotDuration)
		if _, ok := heuristic.SelectSlot(heuristic.FirstValid, p, candidates, oc.Site, oc.Antennas, nil, rng); !ok {
			impossible[p.ID] = true
		}
	}
	return impossible
}
