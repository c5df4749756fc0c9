package indicator

import "MarketRadar/internal/domain/models"

const (
	rsiPeriod      = 14
	momentumPeriod = 10
	macdFastSpan   = 12
	macdSlowSpan   = 26
	macdSignalSpan = 9

	rsiOverbought = 70
	rsiOversold   = 30
	rsiMidline    = 50
)

// DetectMomentum computes the 14-period RSI, a 10-period rate-of-change
// momentum and MACD(12,26,9), then classifies the momentum zone and the MACD
// state by crossover against the previous period.
func DetectMomentum(candles []models.Candle) models.Momentum {
	n := len(candles)
	if n < rsiPeriod {
		return models.Momentum{MomentumTrend: models.MomentumNeutral, MACDTrend: models.MomentumNeutral}
	}

	cs := closes(candles)

	rsi, rsiOK := rsiAt(cs, n-1)
	prevRSI, prevRSIOK := rsiAt(cs, n-2)

	// Rate-of-change momentum; neutral zero when the reference close is not
	// positive.
	var momentum float64
	if ref := cs[n-momentumPeriod]; ref > 0 {
		momentum = (cs[n-1] - ref) / ref
	}

	macdLine := macdSeries(cs)
	signal := ema(macdLine, macdSignalSpan)
	last, prev := n-1, n-2

	out := models.Momentum{
		RSI:           rsi,
		MACD:          macdLine[last],
		MACDSignal:    signal[last],
		MACDHistogram: macdLine[last] - signal[last],
		Momentum:      momentum,
		MomentumTrend: models.MomentumNeutral,
		MACDTrend:     models.MomentumNeutral,
	}
	if !rsiOK {
		out.RSI = 50
	}

	switch {
	case rsiOK && rsi > rsiOverbought:
		out.MomentumTrend = models.MomentumOverbought
	case rsiOK && rsi < rsiOversold:
		out.MomentumTrend = models.MomentumOversold
	case rsiOK && prevRSIOK && rsi > rsiMidline && prevRSI <= rsiMidline:
		out.MomentumTrend = models.CrossoverBullish
	case rsiOK && prevRSIOK && rsi < rsiMidline && prevRSI >= rsiMidline:
		out.MomentumTrend = models.CrossoverBearish
	}

	switch {
	case macdLine[last] > signal[last] && macdLine[prev] <= signal[prev]:
		out.MACDTrend = models.CrossoverBullish
	case macdLine[last] < signal[last] && macdLine[prev] >= signal[prev]:
		out.MACDTrend = models.CrossoverBearish
	case macdLine[last] > 0:
		out.MACDTrend = models.MACDBullish
	case macdLine[last] < 0:
		out.MACDTrend = models.MACDBearish
	}

	return out
}

// rsiAt computes the RSI from the rsiPeriod differences ending at index end.
// The degenerate flat case (no gains, no losses) reads as the 50 midline; all
// gains read as 100.
func rsiAt(cs []float64, end int) (float64, bool) {
	if end < rsiPeriod {
		return 0, false
	}
	var gain, loss float64
	for i := end - rsiPeriod + 1; i <= end; i++ {
		d := cs[i] - cs[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / rsiPeriod
	avgLoss := loss / rsiPeriod
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, true
		}
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

func macdSeries(cs []float64) []float64 {
	fast := ema(cs, macdFastSpan)
	slow := ema(cs, macdSlowSpan)
	out := make([]float64, len(cs))
	for i := range cs {
		out[i] = fast[i] - slow[i]
	}
	return out
}
