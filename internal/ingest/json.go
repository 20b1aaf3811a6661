package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ska-sa/obssched/internal/proposal"
	"github.com/ska-sa/obssched/internal/schederr"
)

// FlexBool accepts either a JSON boolean or the CSV-style "yes"/"no"
// string, since spec §6 documents both forms for night_obs and
// avoid_sunrise_sunset on the JSON submission endpoint.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*b = FlexBool(asBool)
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("expected bool or \"yes\"/\"no\": %w", schederr.ErrInvalidTimeFormat)
	}
	v, err := parseYesNo(asString)
	if err != nil {
		return err
	}
	*b = FlexBool(v)
	return nil
}

// JSONDate unmarshals a "YYYY-MM-DD" date string.
type JSONDate time.Time

func (d *JSONDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected date string: %w", schederr.ErrInvalidTimeFormat)
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	*d = JSONDate(t)
	return nil
}

func (d JSONDate) Time() time.Time { return time.Time(d) }

// ProposalJSON is the wire shape of one Proposal in a submission request
// body (spec §6).
type ProposalJSON struct {
	ID                 int64      `json:"id"`
	OwnerEmail         string     `json:"owner_email"`
	LSTStartTime       string     `json:"lst_start_time"`
	LSTStartEndTime    string     `json:"lst_start_end_time"`
	SimulatedDuration  int        `json:"simulated_duration"`
	NightObs           FlexBool   `json:"night_obs"`
	AvoidSunriseSunset FlexBool   `json:"avoid_sunrise_sunset"`
	MinimumAntennas    int        `json:"minimum_antennas"`
	PreferedDatesStart []JSONDate `json:"prefered_dates_start"`
	PreferedDatesEnd   []JSONDate `json:"prefered_dates_end"`
	AvoidDatesStart    []JSONDate `json:"avoid_dates_start"`
	AvoidDatesEnd      []JSONDate `json:"avoid_dates_end"`
	Score              float64    `json:"score"`
}

// TimetableRequest is the POST /api/v1/timetables request body.
type TimetableRequest struct {
	StartDate JSONDate       `json:"start_date"`
	EndDate   JSONDate       `json:"end_date"`
	Proposals []ProposalJSON `json:"proposals"`
}

// ToProposal converts the wire representation into a validated internal
// Proposal.
func (pj ProposalJSON) ToProposal() (*proposal.Proposal, error) {
	lstStart, err := parseTimeOfDay(pj.LSTStartTime)
	if err != nil {
		return nil, err
	}
	lstStartEnd, err := parseTimeOfDay(pj.LSTStartEndTime)
	if err != nil {
		return nil, err
	}

	preferredDates, err := zipDateRanges(pj.PreferedDatesStart, pj.PreferedDatesEnd)
	if err != nil {
		return nil, err
	}
	avoidDates, err := zipDateRanges(pj.AvoidDatesStart, pj.AvoidDatesEnd)
	if err != nil {
		return nil, err
	}

	score := pj.Score
	if score == 0 {
		score = 1
	}

	p := &proposal.Proposal{
		ID:                 pj.ID,
		OwnerEmail:         pj.OwnerEmail,
		LSTStart:           lstStart,
		LSTStartEnd:        lstStartEnd,
		Duration:           time.Duration(pj.SimulatedDuration) * time.Second,
		NightObs:           bool(pj.NightObs),
		AvoidSunriseSunset: bool(pj.AvoidSunriseSunset),
		MinimumAntennas:    pj.MinimumAntennas,
		Score:              score,
		PreferredDates:     preferredDates,
		AvoidDates:         avoidDates,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func zipDateRanges(starts, ends []JSONDate) ([]proposal.DateRange, error) {
	if len(starts) != len(ends) {
		return nil, fmt.Errorf("mismatched date range list lengths: %w", schederr.ErrInvalidTimeFormat)
	}
	ranges := make([]proposal.DateRange, len(starts))
	for i := range starts {
		ranges[i] = proposal.DateRange{Start: starts[i].Time(), End: ends[i].Time()}
	}
	return ranges, nil
}

// ParseTimetableRequest decodes and converts a full submission request,
// returning the horizon and every successfully-converted proposal.
func ParseTimetableRequest(data []byte) (proposal.Horizon, []*proposal.Proposal, error) {
	var req TimetableRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return proposal.Horizon{}, nil, fmt.Errorf("decoding request body: %w: %w", err, schederr.ErrInvalidTimeFormat)
	}

	horizon, err := proposal.NewHorizon(req.StartDate.Time(), req.EndDate.Time())
	if err != nil {
		return proposal.Horizon{}, nil, err
	}

	proposals := make([]*proposal.Proposal, 0, len(req.Proposals))
	for i, pj := range req.Proposals {
		p, err := pj.ToProposal()
		if err != nil {
			return proposal.Horizon{}, nil, fmt.Errorf("proposal at index %d: %w", i, err)
		}
		proposals = append(proposals, p)
	}

	return horizon, proposals, nil
}
