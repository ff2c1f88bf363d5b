package store

import (
	"sort"
	"time"

	"macrocli/pkg/contracts/domain"
)

// Merge combines previously persisted observations with freshly fetched ones
// and returns the deduplicated, sorted union.
//
// Records are keyed by (indicator, date). When both slices carry the same key
// the incoming record wins, so provider revisions to already stored values
// take effect on the next collection cycle. Records that fail validation
// (zero date, empty indicator, NaN value) are dropped rather than propagated.
// The result is sorted by date, then indicator, and never contains two
// records with the same key. Inputs are not modified.
func Merge(existing, incoming []domain.Observation) []domain.Observation {
	byKey := make(map[domain.ObservationKey]domain.Observation, len(existing)+len(incoming))
	for _, obs := range existing {
		if !obs.IsValid() {
			continue
		}
		byKey[obs.Key()] = obs
	}
	for _, obs := range incoming {
		if !obs.IsValid() {
			continue
		}
		byKey[obs.Key()] = obs
	}

	merged := make([]domain.Observation, 0, len(byKey))
	for _, obs := range byKey {
		merged = append(merged, obs)
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.Before(merged[j].Date)
		}
		return merged[i].Indicator < merged[j].Indicator
	})
	return merged
}

// ComputeWatermark returns the resume point for an indicator: the day after
// its most recent stored observation. Fetching from the returned time cannot
// re-download a period that is already stored.
//
// The second return is false when the indicator has no stored observations,
// in which case the caller should request the provider's full history.
func ComputeWatermark(existing []domain.Observation, indicator string) (time.Time, bool) {
	var max time.Time
	var found bool
	for _, obs := range existing {
		if obs.Indicator != indicator || obs.Date.IsZero() {
			continue
		}
		if !found || obs.Date.After(max) {
			max = obs.Date
			found = true
		}
	}
	if !found {
		return time.Time{}, false
	}
	return max.AddDate(0, 0, 1), true
}
