package heuristic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ska-sa/obssched/internal/proposal"
)

const (
	skaLatDeg = -30 - 42.0/60 - 39.8/3600
	skaLonDeg = 21 + 26.0/60 + 38.0/3600
)

var skaSite = proposal.ObserverSite{LatitudeDeg: skaLatDeg, LongitudeDeg: skaLonDeg}

func sampleProposals() []*proposal.Proposal {
	return []*proposal.Proposal{
		{ID: 1, LSTStart: 0, LSTStartEnd: 11.99, Duration: 3600 * time.Second, MinimumAntennas: 4, Score: 1},
		{ID: 2, LSTStart: 12, LSTStartEnd: 23.9833, Duration: 1800 * time.Second, MinimumAntennas: 4, Score: 1},
	}
}

func testHorizon(t *testing.T) proposal.Horizon {
	t.Helper()
	h, err := proposal.NewHorizon(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return h
}

func TestNewRandomGenome_GenesWithinFamilyBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := NewRandomGenome(5, rng)
	require.Len(t, g.Prop, 5)
	require.Len(t, g.Slot, 5)
	for _, v := range g.Prop {
		assert.True(t, v >= 0 && v < NumProposalHeuristics)
	}
	for _, v := range g.Slot {
		assert.True(t, v >= 0 && v < NumSlotHeuristics)
	}
}

func TestDecode_PlacesFeasibleProposals(t *testing.T) {
	props := sampleProposals()
	h := testHorizon(t)
	rng := rand.New(rand.NewSource(2))
	genome := Genome{Prop: []int{int(Shortest)}, Slot: []int{int(FirstValid)}}

	result := Decode(genome, props, nil, h, skaSite, proposal.ConstantAntennaAvailability(64), DefaultSlotDuration, rng)
	require.NotNil(t, result.Schedule)

	scheduledCount := 0
	for _, b := range result.Schedule.Bindings {
		if !b.Unscheduled {
			scheduledCount++
		}
	}
	assert.Greater(t, scheduledCount, 0)
}

func TestDecode_PreFilteredProposalsCountAsUnplaceable(t *testing.T) {
	props := sampleProposals()
	h := testHorizon(t)
	rng := rand.New(rand.NewSource(3))
	genome := Genome{Prop: []int{int(Shortest)}, Slot: []int{int(FirstValid)}}

	pre := map[int64]bool{props[0].ID: true, props[1].ID: true}
	result := Decode(genome, props, pre, h, skaSite, proposal.ConstantAntennaAvailability(64), DefaultSlotDuration, rng)
	assert.Equal(t, 2, result.Unplaceable)
}

func TestFitness_PenalizesUnplaceableHeavily(t *testing.T) {
	withUnplaceable := DecodeResult{Unplaceable: 1, EmptySlots: 0}
	withoutUnplaceable := DecodeResult{Unplaceable: 0, EmptySlots: 5000}
	assert.Greater(t, Fitness(withUnplaceable), Fitness(withoutUnplaceable))
}

func TestCrossover_PreservesGenomeLength(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	a := NewRandomGenome(6, rng)
	b := NewRandomGenome(6, rng)
	child := Crossover(a, b, rng)
	assert.Len(t, child.Prop, 6)
	assert.Len(t, child.Slot, 6)
}

func TestMutate_DoesNotChangeLength(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := NewRandomGenome(6, rng)
	mutated := Mutate(g, 1.0, rng)
	assert.Len(t, mutated.Prop, 6)
	assert.Len(t, mutated.Slot, 6)
}

func TestTournamentSelect_PicksMinimum(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	fitnesses := []int{50, 10, 30, 5, 90}
	counts := make(map[int]int)
	for i := 0; i < 200; i++ {
		counts[TournamentSelect(fitnesses, 3, rng)]++
	}
	assert.Greater(t, counts[3], counts[4])
}
