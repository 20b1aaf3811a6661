package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ska-sa/obssched/internal/proposal"
)

// defaultMinimumAntennas is applied when a CSV row's minimum_antennas cell
// is empty. Grounded on the original source's read_observation_list_file,
// which defaults the same field to 64 for a bare SKA dish count rather
// than rejecting the row.
const defaultMinimumAntennas = 64

var requiredCSVColumns = []string{
	"id", "owner_email", "lst_start", "lst_start_end",
	"simulated_duration", "night_obs", "avoid_sunrise_sunset", "minimum_antennas",
}

// ParseCSV reads a UTF-8 CSV proposal batch with a header row (spec §6).
// Rows with an empty or non-positive simulated_duration, or a non-positive
// minimum_antennas, are skipped with a logged warning rather than failing
// the whole batch. An empty minimum_antennas cell does not skip the row; it
// takes defaultMinimumAntennas.
func ParseCSV(r io.Reader, logger *slog.Logger) ([]*proposal.Proposal, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	col, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var proposals []*proposal.Proposal
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", rowNum, err)
		}
		rowNum++

		p, skip, err := parseCSVRow(record, col, rowNum)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		if skip {
			logger.Warn("skipping csv row", "row", rowNum, "reason", "non-positive duration or antenna count")
			continue
		}
		proposals = append(proposals, p)
	}

	return proposals, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range requiredCSVColumns {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return idx, nil
}

func parseCSVRow(record []string, col map[string]int, rowNum int) (p *proposal.Proposal, skip bool, err error) {
	get := func(name string) string {
		if i, ok := col[name]; ok && i < len(record) {
			return record[i]
		}
		return ""
	}

	durationStr := strings.TrimSpace(get("simulated_duration"))
	if durationStr == "" {
		return nil, true, nil
	}
	durationSeconds, err := strconv.Atoi(durationStr)
	if err != nil {
		return nil, false, fmt.Errorf("simulated_duration: %w", err)
	}
	if durationSeconds <= 0 {
		return nil, true, nil
	}

	antennasStr := strings.TrimSpace(get("minimum_antennas"))
	minimumAntennas := defaultMinimumAntennas
	if antennasStr != "" {
		minimumAntennas, err = strconv.Atoi(antennasStr)
		if err != nil {
			return nil, false, fmt.Errorf("minimum_antennas: %w", err)
		}
		if minimumAntennas <= 0 {
			return nil, true, nil
		}
	}

	id, err := strconv.ParseInt(strings.TrimSpace(get("id")), 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("id: %w", err)
	}

	lstStart, err := parseTimeOfDay(get("lst_start"))
	if err != nil {
		return nil, false, err
	}
	lstStartEnd, err := parseTimeOfDay(get("lst_start_end"))
	if err != nil {
		return nil, false, err
	}
	nightObs, err := parseYesNo(get("night_obs"))
	if err != nil {
		return nil, false, err
	}
	avoidSunriseSunset, err := parseYesNo(get("avoid_sunrise_sunset"))
	if err != nil {
		return nil, false, err
	}

	preferredDates, err := parseRepeatedDateRanges(get, col, "prefered_dates_start_", "prefered_dates_end_")
	if err != nil {
		return nil, false, err
	}
	avoidDates, err := parseRepeatedDateRanges(get, col, "avoid_dates_start_", "avoid_dates_end_")
	if err != nil {
		return nil, false, err
	}

	score := 1.0
	if raw := strings.TrimSpace(get("score")); raw != "" {
		score, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false, fmt.Errorf("score: %w", err)
		}
	}

	prop := &proposal.Proposal{
		ID:                 id,
		OwnerEmail:         strings.TrimSpace(get("owner_email")),
		LSTStart:           lstStart,
		LSTStartEnd:        lstStartEnd,
		Duration:           time.Duration(durationSeconds) * time.Second,
		NightObs:           nightObs,
		AvoidSunriseSunset: avoidSunriseSunset,
		MinimumAntennas:    minimumAntennas,
		Score:              score,
		PreferredDates:     preferredDates,
		AvoidDates:         avoidDates,
	}
	if err := prop.Validate(); err != nil {
		return nil, false, err
	}
	return prop, false, nil
}

func parseRepeatedDateRanges(get func(string) string, col map[string]int, startPrefix, endPrefix string) ([]proposal.DateRange, error) {
	var ranges []proposal.DateRange
	for n := 1; ; n++ {
		startCol := fmt.Sprintf("%s%d", startPrefix, n)
		endCol := fmt.Sprintf("%s%d", endPrefix, n)
		if _, ok := col[startCol]; !ok {
			break
		}
		startRaw := strings.TrimSpace(get(startCol))
		endRaw := strings.TrimSpace(get(endCol))
		if startRaw == "" || endRaw == "" {
			continue
		}
		start, err := parseDate(startRaw)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(endRaw)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, proposal.DateRange{Start: start, End: end})
	}
	return ranges, nil
}
