package repository

import "time"

// Interval is one candle granularity tier. It governs both the series key and
// the retention deadline assigned on write.
type Interval string

const (
	Interval1m       Interval = "1m"
	Interval5m       Interval = "5m"
	Interval15m      Interval = "15m"
	Interval1h       Interval = "1h"
	Interval4h       Interval = "4h"
	Interval1d       Interval = "1d"
	IntervalRealtime Interval = "realtime"
)

// IsValidInterval returns true if iv is a supported interval tier.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval1m, Interval5m, Interval15m, Interval1h, Interval4h, Interval1d, IntervalRealtime:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default candle interval.
func DefaultInterval() Interval { return Interval1h }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}

// RetentionTiers maps interval tier to maximum record age. Records older than
// the tier's age are unreachable via reads; backends may reclaim space lazily.
type RetentionTiers map[Interval]time.Duration

// Retention keys for non-candle timelines.
const (
	RetentionNews     Interval = "news"
	RetentionAnalysis Interval = "analysis"
)

// DefaultRetention mirrors the shipped config; Load replaces entries from YAML.
func DefaultRetention() RetentionTiers {
	return RetentionTiers{
		Interval1m:        24 * time.Hour,
		Interval5m:        72 * time.Hour,
		Interval15m:       7 * 24 * time.Hour,
		Interval1h:        30 * 24 * time.Hour,
		Interval4h:        90 * 24 * time.Hour,
		Interval1d:        365 * 24 * time.Hour,
		IntervalRealtime:  24 * time.Hour,
		RetentionNews:     7 * 24 * time.Hour,
		RetentionAnalysis: 30 * 24 * time.Hour,
	}
}

// MaxAge returns the retention age for iv, falling back to one week for
// unknown tiers.
func (r RetentionTiers) MaxAge(iv Interval) time.Duration {
	if d, ok := r[iv]; ok && d > 0 {
		return d
	}
	return 7 * 24 * time.Hour
}
