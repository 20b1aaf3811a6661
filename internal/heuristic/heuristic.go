// Package heuristic implements the hyper-heuristic genome: fixed families
// of proposal-selection and slot-selection heuristics, referenced by index
// from a HeuristicGenome, and the greedy decoder that turns a genome into
// a schedule (C6). Per spec §9's "tagged variant" redesign note, each
// heuristic is a tag (an index into a family) plus one dispatch function —
// genomes never carry function pointers, only indices, so they serialize
// and compare like any other integer vector.
package heuristic

import (
	"math/rand"

	"github.com/ska-sa/obssched/internal/proposal"
)

// ProposalHeuristic identifies a proposal-selection strategy.
type ProposalHeuristic int

const (
	Shortest ProposalHeuristic = iota
	Longest
	MinAntennas
	MaxAntennas
	EarliestLSTStart
	LatestLSTStart
	Random
	RandomNightOnly
	ShortestNightOnly
	LongestNightOnly
	EarliestNightOnly
	LatestNightOnly
	numProposalHeuristics
)

// NumProposalHeuristics is the size of the proposal-selection family.
const NumProposalHeuristics = int(numProposalHeuristics)

// SlotHeuristic identifies a slot-selection strategy.
type SlotHeuristic int

const (
	FirstValid SlotHeuristic = iota
	LastValid
	RandomValid
	TightestFit
	LoosestFit
	numSlotHeuristics
)

// NumSlotHeuristics is the size of the slot-selection family.
const NumSlotHeuristics = int(numSlotHeuristics)

// Genome is the hyper-heuristic chromosome: 2*L integers, the first L
// indexing ProposalHeuristic and the second L indexing SlotHeuristic.
type Genome struct {
	Prop []int
	Slot []int
}

// NewRandomGenome builds a genome of length L with every gene drawn
// uniformly from its family.
func NewRandomGenome(l int, rng *rand.Rand) Genome {
	g := Genome{Prop: make([]int, l), Slot: make([]int, l)}
	for i := 0; i < l; i++ {
		g.Prop[i] = rng.Intn(NumProposalHeuristics)
		g.Slot[i] = rng.Intn(NumSlotHeuristics)
	}
	return g
}

// L returns the genome's per-family length.
func (g Genome) L() int { return len(g.Prop) }

// Clone returns an independent copy of g.
func (g Genome) Clone() Genome {
	out := Genome{Prop: make([]int, len(g.Prop)), Slot: make([]int, len(g.Slot))}
	copy(out.Prop, g.Prop)
	copy(out.Slot, g.Slot)
	return out
}

// selectProposal applies heuristic h to pick the next proposal from
// remaining. Returns nil if remaining is empty.
func selectProposal(h ProposalHeuristic, remaining []*proposal.Proposal, rng *rand.Rand) *proposal.Proposal {
	if len(remaining) == 0 {
		return nil
	}

	nightOnly := func(p *proposal.Proposal) bool { return p.NightObs }

	pick := func(better func(a, b *proposal.Proposal) bool, filter func(*proposal.Proposal) bool) *proposal.Proposal {
		var best *proposal.Proposal
		for _, p := range remaining {
			if filter != nil && !filter(p) {
				continue
			}
			if best == nil || better(p, best) {
				best = p
			}
		}
		return best
	}

	switch h {
	case Shortest:
		return pick(func(a, b *proposal.Proposal) bool { return a.Duration < b.Duration }, nil)
	case Longest:
		return pick(func(a, b *proposal.Proposal) bool { return a.Duration > b.Duration }, nil)
	case MinAntennas:
		return pick(func(a, b *proposal.Proposal) bool { return a.MinimumAntennas < b.MinimumAntennas }, nil)
	case MaxAntennas:
		return pick(func(a, b *proposal.Proposal) bool { return a.MinimumAntennas > b.MinimumAntennas }, nil)
	case EarliestLSTStart:
		return pick(func(a, b *proposal.Proposal) bool { return a.LSTStart < b.LSTStart }, nil)
	case LatestLSTStart:
		return pick(func(a, b *proposal.Proposal) bool { return a.LSTStart > b.LSTStart }, nil)
	case Random:
		return remaining[rng.Intn(len(remaining))]
	case RandomNightOnly:
		candidates := filterProposals(remaining, nightOnly)
		if len(candidates) == 0 {
			return nil
		}
		return candidates[rng.Intn(len(candidates))]
	case ShortestNightOnly:
		return pick(func(a, b *proposal.Proposal) bool { return a.Duration < b.Duration }, nightOnly)
	case LongestNightOnly:
		return pick(func(a, b *proposal.Proposal) bool { return a.Duration > b.Duration }, nightOnly)
	case EarliestNightOnly:
		return pick(func(a, b *proposal.Proposal) bool { return a.LSTStart < b.LSTStart }, nightOnly)
	case LatestNightOnly:
		return pick(func(a, b *proposal.Proposal) bool { return a.LSTStart > b.LSTStart }, nightOnly)
	default:
		return remaining[0]
	}
}

func filterProposals(in []*proposal.Proposal, keep func(*proposal.Proposal) bool) []*proposal.Proposal {
	var out []*proposal.Proposal
	for _, p := range in {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
