package indicator

import (
	"math"

	"MarketRadar/internal/domain/models"
)

const (
	atrPeriod       = 14
	bollingerPeriod = 20
	bollingerWidthK = 2
	recentTRWindow  = 5

	// Annualization factor for period returns, daily scaling convention.
	annualizePeriods = 252
)

// DetectVolatility computes the annualized standard deviation of
// period-over-period returns, the 14-period ATR, 20-period Bollinger bands
// with the latest close's normalized position inside them, and a volatility
// trend from a 5-period true-range average against a lagged 14-period one.
func DetectVolatility(candles []models.Candle) models.Volatility {
	n := len(candles)
	if n < recentTRWindow {
		return models.Volatility{VolatilityTrend: models.TrendUnknown, BollingerPosition: 0.5}
	}

	cs := closes(candles)

	returns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if cs[i-1] <= 0 {
			continue
		}
		returns = append(returns, cs[i]/cs[i-1]-1)
	}
	vol := sampleStd(returns) * math.Sqrt(annualizePeriods)

	trs := trueRanges(candles)
	var atr float64
	if v, ok := smaAt(trs, n-1, atrPeriod); ok {
		atr = v
	}

	out := models.Volatility{
		Volatility:        vol,
		ATR:               atr,
		BollingerPosition: 0.5,
		VolatilityTrend:   models.TrendStable,
	}

	if n >= bollingerPeriod {
		window := cs[n-bollingerPeriod:]
		sma := mean(window)
		std := sampleStd(window)
		upper := sma + bollingerWidthK*std
		lower := sma - bollingerWidthK*std
		if sma > 0 {
			out.BollingerWidth = (upper - lower) / sma
		}
		if width := upper - lower; width > 0 {
			out.BollingerPosition = clamp01((cs[n-1] - lower) / width)
		}
	}

	// Recent vs lagged true-range averages, same thresholds as volume trend.
	recentTR, _ := smaAt(trs, n-1, recentTRWindow)
	olderTR := recentTR
	if n >= atrPeriod+recentTRWindow {
		if v, ok := smaAt(trs, n-recentTRWindow, atrPeriod); ok {
			olderTR = v
		}
	}
	switch {
	case recentTR > olderTR*ratioIncreasing:
		out.VolatilityTrend = models.TrendIncreasing
	case recentTR < olderTR*ratioDecreasing:
		out.VolatilityTrend = models.TrendDecreasing
	}

	return out
}
