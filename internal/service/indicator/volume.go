package indicator

import "MarketRadar/internal/domain/models"

// Thresholds for moving-average ratio classification, shared with the
// volatility trend.
const (
	ratioIncreasing = 1.2
	ratioDecreasing = 0.8
)

// minCorrelationPairs is the smallest sample for a reported correlation.
const minCorrelationPairs = 6

// DetectVolumeTrend classifies volume by the same moving-average window
// comparison as price, with explicit 1.2x/0.8x thresholds, and reports the
// Pearson correlation between absolute relative price change and volume.
func DetectVolumeTrend(candles []models.Candle, window int) models.VolumeTrend {
	if window <= 0 {
		window = DefaultWindow
	}
	n := len(candles)
	if n < window {
		return models.VolumeTrend{Trend: models.TrendUnknown}
	}

	vs := volumes(candles)
	out := models.VolumeTrend{Trend: models.TrendUnknown, AvgVolume: mean(vs)}

	if n > window {
		lastSMA, _ := smaAt(vs, n-1, window)
		prevSMA, prevOK := smaAt(vs, n-window, window)
		switch {
		case prevOK && lastSMA > prevSMA*ratioIncreasing:
			out.Trend = models.TrendIncreasing
			out.Strength = 0.5
			if prevSMA > 0 {
				out.Strength = clamp01((lastSMA - prevSMA) / prevSMA)
			}
		case prevOK && lastSMA < prevSMA*ratioDecreasing:
			out.Trend = models.TrendDecreasing
			out.Strength = 0.5
			if prevSMA > 0 {
				out.Strength = clamp01((prevSMA - lastSMA) / prevSMA)
			}
		default:
			out.Trend = models.TrendStable
			out.Strength = 0.1
		}
	}

	// Correlation of per-period absolute relative price change vs volume.
	cs := closes(candles)
	changes := make([]float64, 0, n-1)
	vols := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if cs[i-1] <= 0 {
			continue
		}
		d := cs[i] - cs[i-1]
		if d < 0 {
			d = -d
		}
		changes = append(changes, d/cs[i-1])
		vols = append(vols, vs[i])
	}
	if len(changes) >= minCorrelationPairs {
		out.PriceVolumeCorrelation = pearson(changes, vols)
	}
	return out
}
