package schedule

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

func twoNonOverlappingProposals() []*proposal.Proposal {
	return []*proposal.Proposal{
		{ID: 1, LSTStart: 0, LSTStartEnd: 11.99, Duration: 18407 * time.Second, MinimumAntennas: 8, Score: 1},
		{ID: 2, LSTStart: 12, LSTStartEnd: 23.9833, Duration: 18124 * time.Second, MinimumAntennas: 8, Score: 1},
	}
}

func testHorizon(t *testing.T) proposal.Horizon {
	t.Helper()
	h, err := proposal.NewHorizon(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return h
}

func TestNewRandom_CoversEveryProposalExactlyOnce(t *testing.T) {
	props := twoNonOverlappingProposals()
	h := testHorizon(t)
	rng := rand.New(rand.NewSource(1))

	s := NewRandom(props, h, skaSite, proposal.ConstantAntennaAvailability(64), rng)
	require.Len(t, s.Bindings, len(props))
	for i, p := range props {
		assert.Equal(t, p.ID, s.Bindings[i].ProposalID)
	}
}

func TestClashSeconds_ZeroWhenNoOverlap(t *testing.T) {
	props := twoNonOverlappingProposals()
	s := &Schedule{
		Proposals: props,
		Bindings: []Binding{
			{ProposalID: 1, Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{ProposalID: 2, Start: time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)},
		},
	}
	assert.Zero(t, s.ClashSeconds())
	assert.Empty(t, s.ClashPairs())
}

func TestClashSeconds_DetectsOverlap(t *testing.T) {
	props := twoNonOverlappingProposals()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Schedule{
		Proposals: props,
		Bindings: []Binding{
			{ProposalID: 1, Start: start},
			{ProposalID: 2, Start: start.Add(time.Hour)}, // overlaps first binding
		},
	}
	assert.Greater(t, s.ClashSeconds(), 0.0)
	assert.Len(t, s.ClashPairs(), 1)
}

func TestRepair_EliminatesAllOverlaps(t *testing.T) {
	props := twoNonOverlappingProposals()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Schedule{
		Proposals: props,
		Bindings: []Binding{
			{ProposalID: 1, Start: start},
			{ProposalID: 2, Start: start.Add(time.Hour)},
		},
	}
	rng := rand.New(rand.NewSource(2))
	s.Repair(rng)
	assert.Zero(t, s.ClashSeconds())
}

func TestRepair_IsIdempotent(t *testing.T) {
	props := twoNonOverlappingProposals()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Schedule{
		Proposals: props,
		Bindings: []Binding{
			{ProposalID: 1, Start: start},
			{ProposalID: 2, Start: start.Add(time.Hour)},
		},
	}
	rng := rand.New(rand.NewSource(3))
	s.Repair(rng)
	before := append([]Binding(nil), s.Bindings...)
	s.Repair(rng)
	assert.Equal(t, before, s.Bindings)
}

func TestCrossover_ProducesCoverageValidChild(t *testing.T) {
	props := twoNonOverlappingProposals()
	h := testHorizon(t)
	rng := rand.New(rand.NewSource(4))
	a := NewRandom(props, h, skaSite, proposal.ConstantAntennaAvailability(64), rng)
	b := NewRandom(props, h, skaSite, proposal.ConstantAntennaAvailability(64), rng)

	child := Crossover(a, b, rng)
	require.Len(t, child.Bindings, len(props))
	for i, p := range props {
		assert.Equal(t, p.ID, child.Bindings[i].ProposalID)
	}
}

func TestCrossover_DoesNotMutateParents(t *testing.T) {
	props := twoNonOverlappingProposals()
	h := testHorizon(t)
	rng := rand.New(rand.NewSource(5))
	a := NewRandom(props, h, skaSite, proposal.ConstantAntennaAvailability(64), rng)
	b := NewRandom(props, h, skaSite, proposal.ConstantAntennaAvailability(64), rng)
	aBefore := append([]Binding(nil), a.Bindings...)
	bBefore := append([]Binding(nil), b.Bindings...)

	Crossover(a, b, rng)

	assert.Equal(t, aBefore, a.Bindings)
	assert.Equal(t, bBefore, b.Bindings)
}

func TestMutate_RewritesOnlyASubsetAndPreservesCoverage(t *testing.T) {
	props := twoNonOverlappingProposals()
	h := testHorizon(t)
	rng := rand.New(rand.NewSource(6))
	s := NewRandom(props, h, skaSite, proposal.ConstantAntennaAvailability(64), rng)

	child := Mutate(s, 0.1, h, skaSite, proposal.ConstantAntennaAvailability(64), rng)
	require.Len(t, child.Bindings, len(props))
	for i, p := range props {
		assert.Equal(t, p.ID, child.Bindings[i].ProposalID)
	}
}

func TestClone_IsIndependentOfOriginal(t *testing.T) {
	props := twoNonOverlappingProposals()
	s := &Schedule{
		Proposals: props,
		Bindings: []Binding{
			{ProposalID: 1, Unscheduled: true},
			{ProposalID: 2, Unscheduled: true},
		},
	}
	clone := s.Clone()
	clone.Bindings[0] = Binding{ProposalID: 1, Start: time.Now().UTC()}
	assert.True(t, s.Bindings[0].Unscheduled)
}
