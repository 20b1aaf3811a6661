package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ska-sa/obssched/internal/proposal"
	"github.com/ska-sa/obssched/internal/schedule"
)

// cachedBinding is the wire shape of a schedule.Binding inside a cached
// run entry — json-friendly, unlike time.Time's default encoding concerns
// around monotonic readings.
type cachedBinding struct {
	ProposalID  int64     `json:"proposal_id"`
	Start       time.Time `json:"start,omitempty"`
	Unscheduled bool      `json:"unscheduled"`
}

// marshalSchedule encodes a schedule's bindings for caching.
func marshalSchedule(s *schedule.Schedule) ([]byte, error) {
	if s == nil {
		return json.Marshal([]cachedBinding{})
	}
	out := make([]cachedBinding, len(s.Bindings))
	for i, b := range s.Bindings {
		out[i] = cachedBinding{ProposalID: b.ProposalID, Start: b.Start, Unscheduled: b.Unscheduled}
	}
	return json.Marshal(out)
}

// unmarshalBindings decodes a cached run's bindings back into their wire
// representation, to be matched against the resubmitted proposal set.
func unmarshalBindings(data []byte) ([]cachedBinding, error) {
	var out []cachedBinding
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding cached schedule: %w", err)
	}
	return out, nil
}

// bindingsToSchedule rebuilds a schedule.Schedule from cached bindings
// against the resubmitted proposal list, preserving proposal ordering.
// Fails if the cached bindings don't reference exactly the resubmitted
// proposal ids — a hash collision or a stale entry, either way not usable.
func bindingsToSchedule(cached []cachedBinding, proposals []*proposal.Proposal) (*schedule.Schedule, error) {
	if len(cached) != len(proposals) {
		return nil, fmt.Errorf("cached binding count %d does not match proposal count %d", len(cached), len(proposals))
	}

	bindings := make([]schedule.Binding, len(proposals))
	for i, p := range proposals {
		var found *cachedBinding
		for j := range cached {
			if cached[j].ProposalID == p.ID {
				found = &cached[j]
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("cached schedule missing proposal %d", p.ID)
		}
		bindings[i] = schedule.Binding{ProposalID: found.ProposalID, Start: found.Start, Unscheduled: found.Unscheduled}
	}

	return &schedule.Schedule{Proposals: proposals, Bindings: bindings}, nil
}
