// Package driver implements the orchestration layer (C7): it loads a
// proposal batch, pre-filters it against the horizon, runs one of the two
// optimizers, repairs the result, and hands back a schedule ready for
// export. Nothing downstream of this package touches raw ingestion input
// directly.
package driver

import (
	"context"
	"math/rand"

	"github.com/ska-sa/obssched/internal/optimizer"
	"github.com/ska-sa/obssched/internal/proposal"
	"github.com/ska-sa/obssched/internal/schedule"
)

// cumulativeDurationCapDirect and cumulativeDurationCapHyperHeuristic are
// the alpha factors from spec §4.7: the driver accepts proposals into the
// optimizer input while their cumulative duration stays under
// alpha * horizon_seconds.
const (
	cumulativeDurationCapDirect         = 1.0
	cumulativeDurationCapHyperHeuristic = 0.85
)

// Encoding selects which optimizer the driver runs.
type Encoding int

const (
	DirectEncoding Encoding = iota
	HyperHeuristicEncoding
)

// Request bundles everything the driver needs for one run.
type Request struct {
	Horizon   proposal.Horizon
	Proposals []*proposal.Proposal
	Site      proposal.ObserverSite
	Antennas  proposal.AntennaAvailabilityFunc

	Encoding Encoding
	Seed     int64

	Direct        optimizer.DirectParams
	HyperHeuristic optimizer.HyperHeuristicParams
}

// Result is the driver's output: the best schedule found, repaired to be
// clash-free, plus bookkeeping about what was dropped along the way.
type Result struct {
	Schedule      *schedule.Schedule
	History       []float64
	DroppedCount  int // proposals that failed schedulable(P,H) or the duration cap
	AcceptedCount int
}

// Run executes the full C7 pipeline: shuffle, pre-filter, optimize, repair.
func Run(ctx context.Context, req Request) (*Result, error) {
	rng := rand.New(rand.NewSource(req.Seed))

	shuffled := shuffle(req.Proposals, rng)
	accepted, dropped := preFilter(shuffled, req.Horizon, req.Site, req.Antennas, capFor(req.Encoding))

	oc := optimizer.Context{
		Proposals: accepted,
		Horizon:   req.Horizon,
		Site:      req.Site,
		Antennas:  req.Antennas,
		Seed:      req.Seed,
	}

	var best *schedule.Schedule
	var history []float64

	switch req.Encoding {
	case HyperHeuristicEncoding:
		params := req.HyperHeuristic
		hhResult, err := optimizer.RunHyperHeuristic(ctx, oc, params)
		if err != nil {
			return nil, err
		}
		if hhResult.Best != nil {
			best = hhResult.Best.Schedule
		}
		history = intHistoryToFloat(hhResult.History)
	default:
		params := req.Direct
		directResult, err := optimizer.RunDirect(ctx, oc, params)
		if err != nil {
			return nil, err
		}
		best = directResult.Best
		history = directResult.History
	}

	if best != nil {
		best.Repair(rng)
	}

	return &Result{
		Schedule:      best,
		History:       history,
		DroppedCount:  len(dropped),
		AcceptedCount: len(accepted),
	}, nil
}

func capFor(e Encoding) float64 {
	if e == HyperHeuristicEncoding {
		return cumulativeDurationCapHyperHeuristic
	}
	return cumulativeDurationCapDirect
}

func shuffle(in []*proposal.Proposal, rng *rand.Rand) []*proposal.Proposal {
	out := make([]*proposal.Proposal, len(in))
	copy(out, in)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// preFilter keeps proposals that are schedulable somewhere in the horizon
// and whose cumulative duration stays under alpha*horizon_seconds (spec
// §4.7, step 3).
func preFilter(in []*proposal.Proposal, h proposal.Horizon, site proposal.ObserverSite, antennas proposal.AntennaAvailabilityFunc, alpha float64) (accepted, dropped []*proposal.Proposal) {
	durationCap := alpha * h.Seconds()
	var cumulative float64

	for _, p := range in {
		if !proposal.Schedulable(p, h, site, antennas) {
			dropped = append(dropped, p)
			continue
		}
		if cumulative+p.Duration.Seconds() > durationCap {
			dropped = append(dropped, p)
			continue
		}
		cumulative += p.Duration.Seconds()
		accepted = append(accepted, p)
	}
	return accepted, dropped
}

func intHistoryToFloat(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
