// Package insights aggregates stored traces into the analytics served under
// /api/v1/traces/insights: traffic volume and latency, error rates, tool and
// assessment metrics, tag distributions and NPMI correlations.
package insights

import (
	"fmt"

	"tracelens/internal/config"
	"tracelens/pkg/timerange"
)

const defaultMaxValues = 10

// reservedTagPrefix marks tags the system writes for itself; they are
// filtered out of discovery and correlation results.
const reservedTagPrefix = "tracelens."

type Service struct {
	maxValues int
}

func NewService(conf config.InsightsConfig) *Service {
	maxValues := conf.MaxValues
	if maxValues <= 0 {
		maxValues = defaultMaxValues
	}
	return &Service{maxValues: maxValues}
}

// ParseBucket validates a wire-level bucket name. Unlike range tokens, the
// bucket arrives from clients, so a bad value is an error, not a panic.
func ParseBucket(s string) (timerange.Bucket, error) {
	switch timerange.Bucket(s) {
	case timerange.BucketHour, timerange.BucketDay, timerange.BucketWeek:
		return timerange.Bucket(s), nil
	default:
		return "", fmt.Errorf("invalid time_bucket: %q", s)
	}
}

func (s *Service) limit(requested int) int {
	if requested > 0 && requested < s.maxValues {
		return requested
	}
	return s.maxValues
}
