// Package ingest turns external proposal submissions — CSV batches and
// JSON API requests — into validated internal/proposal.Proposal values.
// Every parse error here is terminal for the offending row/request; it
// never reaches the optimizer (spec §7).
package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ska-sa/obssched/internal/astro"
	"github.com/ska-sa/obssched/internal/schederr"
)

// parseTimeOfDay parses "HH:MM" or "HH:MM:SS" into decimal hours.
func parseTimeOfDay(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("time of day %q: %w", s, schederr.ErrInvalidTimeFormat)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("time of day %q: %w", s, schederr.ErrInvalidTimeFormat)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("time of day %q: %w", s, schederr.ErrInvalidTimeFormat)
	}
	second := 0
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, fmt.Errorf("time of day %q: %w", s, schederr.ErrInvalidTimeFormat)
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("time of day %q out of range: %w", s, schederr.ErrInvalidTimeFormat)
	}

	return astro.HoursOfDay(hour, minute, second), nil
}

// parseYesNo parses the CSV "yes"/"no" boolean convention, case-
// insensitively.
func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("boolean field %q: %w", s, schederr.ErrInvalidTimeFormat)
	}
}

// parseDate parses a "YYYY-MM-DD" calendar date.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, schederr.ErrInvalidTimeFormat)
	}
	return t, nil
}
