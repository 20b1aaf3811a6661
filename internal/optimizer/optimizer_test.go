package optimizer

import (
	"context"
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

func singleWideOpenProposal() []*proposal.Proposal {
	return []*proposal.Proposal{
		{ID: 1, LSTStart: 0, LSTStartEnd: 23.9833, Duration: 3600 * time.Second, MinimumAntennas: 4, Score: 1},
	}
}

func testContext(t *testing.T, props []*proposal.Proposal) Context {
	t.Helper()
	h, err := proposal.NewHorizon(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return Context{
		Proposals: props,
		Horizon:   h,
		Site:      proposal.ObserverSite{LatitudeDeg: skaLatDeg, LongitudeDeg: skaLonDeg},
		Antennas:  proposal.ConstantAntennaAvailability(64),
		Seed:      42,
	}
}

func TestRunDirect_RejectsEmptyPopulation(t *testing.T) {
	oc := testContext(t, singleWideOpenProposal())
	params := DefaultDirectParams()
	params.PopulationSize = 0
	params.Generations = 1

	_, err := RunDirect(context.Background(), oc, params)
	assert.Error(t, err)
}

func TestRunDirect_ReachesFullFitnessOnTrivialInput(t *testing.T) {
	oc := testContext(t, singleWideOpenProposal())
	params := DefaultDirectParams()
	params.PopulationSize = 20
	params.Generations = 30

	result, err := RunDirect(context.Background(), oc, params)
	require.NoError(t, err)
	require.NotNil(t, result.Best)

	assert.InDelta(t, 1.0, result.History[len(result.History)-1], 1e-6)
}

func TestRunDirect_BestFitnessIsMonotonicNonDecreasing(t *testing.T) {
	oc := testContext(t, singleWideOpenProposal())
	params := DefaultDirectParams()
	params.PopulationSize = 20
	params.Generations = 15

	result, err := RunDirect(context.Background(), oc, params)
	require.NoError(t, err)

	for i := 1; i < len(result.History); i++ {
		assert.GreaterOrEqual(t, result.History[i], result.History[i-1])
	}
}

func TestRunDirect_HonorsCancellation(t *testing.T) {
	oc := testContext(t, singleWideOpenProposal())
	params := DefaultDirectParams()
	params.PopulationSize = 10
	params.Generations = 1000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunDirect(ctx, oc, params)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestRunHyperHeuristic_RejectsEmptyPopulation(t *testing.T) {
	oc := testContext(t, singleWideOpenProposal())
	params := DefaultHyperHeuristicParams()
	params.PopulationSize = 0
	params.Generations = 1
	params.GenomeLength = 2

	_, err := RunHyperHeuristic(context.Background(), oc, params)
	assert.Error(t, err)
}

func TestRunHyperHeuristic_BestFitnessIsMonotonicNonIncreasing(t *testing.T) {
	oc := testContext(t, singleWideOpenProposal())
	params := DefaultHyperHeuristicParams()
	params.PopulationSize = 15
	params.Generations = 10
	params.GenomeLength = 3

	result, err := RunHyperHeuristic(context.Background(), oc, params)
	require.NoError(t, err)
	require.NotNil(t, result.Best)

	for i := 1; i < len(result.History); i++ {
		assert.LessOrEqual(t, result.History[i], result.History[i-1])
	}
}
