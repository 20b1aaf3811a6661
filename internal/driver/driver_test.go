package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ska-sa/obssched/internal/optimizer"
	"github.com/ska-sa/obssched/internal/proposal"
)

const (
	skaLatDeg = -30 - 42.0/60 - 39.8/3600
	skaLonDeg = 21 + 26.0/60 + 38.0/3600
)

var skaSite = proposal.ObserverSite{LatitudeDeg: skaLatDeg, LongitudeDeg: skaLonDeg}

func twoNonOverlappingProposals() []*proposal.Proposal {
	return []*proposal.Proposal{
		{ID: 1, LSTStart: 0, LSTStartEnd: 11.99, Duration: 18407 * time.Second, MinimumAntennas: 4, Score: 1},
		{ID: 2, LSTStart: 12, LSTStartEnd: 23.9833, Duration: 18124 * time.Second, MinimumAntennas: 4, Score: 1},
	}
}

func TestRun_DirectEncodingProducesClashFreeSchedule(t *testing.T) {
	h, err := proposal.NewHorizon(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	req := Request{
		Horizon:   h,
		Proposals: twoNonOverlappingProposals(),
		Site:      skaSite,
		Antennas:  proposal.ConstantAntennaAvailability(64),
		Encoding:  DirectEncoding,
		Seed:      7,
		Direct: func() optimizer.DirectParams {
			p := optimizer.DefaultDirectParams()
			p.PopulationSize = 30
			p.Generations = 25
			return p
		}(),
	}

	result, err := Run(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Schedule)
	assert.Zero(t, result.Schedule.ClashSeconds())
}

func TestRun_DropsProposalsThatFailSchedulability(t *testing.T) {
	h, err := proposal.NewHorizon(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	props := twoNonOverlappingProposals()
	props = append(props, &proposal.Proposal{
		ID: 99, LSTStart: 0, LSTStartEnd: 23.9833, Duration: time.Hour, MinimumAntennas: 1_000_000, Score: 1,
	})

	req := Request{
		Horizon:   h,
		Proposals: props,
		Site:      skaSite,
		Antennas:  proposal.ConstantAntennaAvailability(64),
		Encoding:  DirectEncoding,
		Seed:      9,
		Direct: func() optimizer.DirectParams {
			p := optimizer.DefaultDirectParams()
			p.PopulationSize = 10
			p.Generations = 3
			return p
		}(),
	}

	result, err := Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DroppedCount)
	assert.Equal(t, 2, result.AcceptedCount)
}

func TestRun_HyperHeuristicProducesSchedule(t *testing.T) {
	h, err := proposal.NewHorizon(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	req := Request{
		Horizon:   h,
		Proposals: twoNonOverlappingProposals(),
		Site:      skaSite,
		Antennas:  proposal.ConstantAntennaAvailability(64),
		Encoding:  HyperHeuristicEncoding,
		Seed:      11,
		HyperHeuristic: func() optimizer.HyperHeuristicParams {
			p := optimizer.DefaultHyperHeuristicParams()
			p.PopulationSize = 10
			p.Generations = 5
			p.GenomeLength = 3
			return p
		}(),
	}

	result, err := Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, result.Schedule)
}
