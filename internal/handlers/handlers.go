package handlers

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ska-sa/obssched/internal/cache"
	"github.com/ska-sa/obssched/internal/config"
	"github.com/ska-sa/obssched/internal/driver"
	"github.com/ska-sa/obssched/internal/optimizer"
	"github.com/ska-sa/obssched/internal/proposal"
	"github.com/ska-sa/obssched/internal/services"
)

// defaultAvailableAntennas is the fleet size assumed available at every
// instant when the API doesn't have a live antenna-allocation feed to
// consult, matching the CSV ingestion default (spec's original_source
// convention, see internal/ingest/csv.go).
const defaultAvailableAntennas = 64

// Handlers bundles everything the HTTP layer needs: the in-memory
// timetable store, the optional run cache, the optimizer defaults, and
// the rate limiter guarding submission.
type Handlers struct {
	store       *Store
	cacheClient *cache.Cache
	rateLimiter *services.RateLimiter
	cleanup     *services.CleanupScheduler
	cfg         config.Config

	runGroup singleflight.Group
}

// New wires a Handlers from process configuration. cacheClient and
// rateLimiter may be nil — both degrade gracefully (no caching, no rate
// limiting) when Redis isn't configured.
func New(cfg config.Config, cacheClient *cache.Cache, rateLimiter *services.RateLimiter) *Handlers {
	return &Handlers{
		store:       NewStore(),
		cacheClient: cacheClient,
		rateLimiter: rateLimiter,
		cfg:         cfg,
	}
}

// PruneStore removes stored timetables created before cutoff. Matches
// services.PruneFunc so it can be handed directly to
// services.NewCleanupScheduler.
func (h *Handlers) PruneStore(ctx context.Context, cutoff time.Time) (int, error) {
	return h.store.PruneOlderThan(cutoff), nil
}

// SetCleanupScheduler wires the periodic retention sweep after
// construction, once main has both the handlers and the scheduler built
// (the scheduler's PruneFunc closes over h.store).
func (h *Handlers) SetCleanupScheduler(s *services.CleanupScheduler) {
	h.cleanup = s
}

// runCached runs the optimizer for (horizon, proposals), first consulting
// the run cache, then coalescing concurrent identical submissions through
// a singleflight group so only one optimizer run executes per distinct
// input — the common case when a client double-submits or retries.
func (h *Handlers) runCached(ctx context.Context, horizon proposal.Horizon, proposals []*proposal.Proposal) (*driver.Result, error) {
	hash := cache.HashRun(horizon, proposals)

	v, err, _ := h.runGroup.Do(hash, func() (any, error) {
		if h.cacheClient != nil {
			if cached, err := h.cacheClient.GetRun(ctx, hash); err == nil && cached != nil {
				result, convErr := resultFromCacheEntry(cached, horizon, proposals)
				if convErr == nil {
					return result, nil
				}
			}
		}

		result, err := driver.Run(ctx, driver.Request{
			Horizon:   horizon,
			Proposals: proposals,
			Site:      h.cfg.Site,
			Antennas:  proposal.ConstantAntennaAvailability(defaultAvailableAntennas),
			Encoding:  driver.DirectEncoding,
			Seed:      1,
			Direct:    defaultDirectParamsFor(h.cfg),
		})
		if err != nil {
			return nil, err
		}

		if h.cacheClient != nil {
			entry, marshalErr := cacheEntryFromResult(result)
			if marshalErr == nil {
				_ = h.cacheClient.SetRun(ctx, hash, entry)
			}
		}

		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*driver.Result), nil
}

func defaultDirectParamsFor(cfg config.Config) optimizer.DirectParams {
	params := optimizer.DefaultDirectParams()
	params.PopulationSize = cfg.DefaultPopulationSize
	params.Generations = cfg.DefaultGenerations
	return params
}

func cacheEntryFromResult(result *driver.Result) (cache.RunEntry, error) {
	data, err := marshalSchedule(result.Schedule)
	if err != nil {
		return cache.RunEntry{}, err
	}
	return cache.RunEntry{ScheduleJSON: data, History: result.History}, nil
}

func resultFromCacheEntry(entry *cache.RunEntry, horizon proposal.Horizon, proposals []*proposal.Proposal) (*driver.Result, error) {
	bindings, err := unmarshalBindings(entry.ScheduleJSON)
	if err != nil {
		return nil, err
	}

	sched, err := bindingsToSchedule(bindings, proposals)
	if err != nil {
		return nil, err
	}

	return &driver.Result{
		Schedule:      sched,
		History:       entry.History,
		AcceptedCount: len(proposals),
	}, nil
}

