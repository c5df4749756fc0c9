package indicator

import "MarketRadar/internal/domain/models"

// supportLookback is how many trailing records feed support/resistance.
const supportLookback = 20

// strengthScale turns a relative moving-average difference into [0,1].
const strengthScale = 5

// DetectPriceTrend classifies the close-price trend by comparing the latest
// W-period moving average against the one at position length-W. Strength is the
// relative difference scaled by strengthScale and clamped to [0,1]; a zero
// prior average yields the fixed neutral strength 0.5.
func DetectPriceTrend(candles []models.Candle, window int) models.PriceTrend {
	if window <= 0 {
		window = DefaultWindow
	}
	n := len(candles)
	if n < window {
		return models.PriceTrend{Trend: models.TrendUnknown}
	}

	cs := closes(candles)
	out := models.PriceTrend{Trend: models.TrendUnknown}

	if n > window {
		lastSMA, _ := smaAt(cs, n-1, window)
		prevSMA, prevOK := smaAt(cs, n-window, window)
		switch {
		case prevOK && lastSMA > prevSMA:
			out.Trend = models.TrendUptrend
			out.Strength = 0.5
			if prevSMA > 0 {
				out.Strength = clamp01((lastSMA - prevSMA) / prevSMA * strengthScale)
			}
		case prevOK && lastSMA < prevSMA:
			out.Trend = models.TrendDowntrend
			out.Strength = 0.5
			if prevSMA > 0 {
				out.Strength = clamp01((prevSMA - lastSMA) / prevSMA * strengthScale)
			}
		default:
			out.Trend = models.TrendSideways
			out.Strength = 0.1
		}
	}

	// Support and resistance over the trailing records.
	tail := candles
	if n > supportLookback {
		tail = candles[n-supportLookback:]
	}
	support, resistance := tail[0].Low, tail[0].High
	for _, c := range tail[1:] {
		if c.Low < support {
			support = c.Low
		}
		if c.High > resistance {
			resistance = c.High
		}
	}

	lastClose := cs[n-1]
	out.LastClose = lastClose
	out.Support = support
	out.Resistance = resistance
	if lastClose > 0 {
		out.ResistanceDistance = (resistance - lastClose) / lastClose * 100
		out.SupportDistance = (lastClose - support) / lastClose * 100
	}
	return out
}
