// Package indicator derives trend, momentum and volatility signals from
// ordered candle series. All functions are pure and total: input shorter than
// the required lookback yields a neutral result, never an error.
package indicator

import (
	"math"

	"MarketRadar/internal/domain/models"
)

// DefaultWindow is the moving-average window for price and volume trends.
const DefaultWindow = 5

// Analyze computes all signal groups over one ascending candle series.
func Analyze(candles []models.Candle) models.TrendReport {
	return models.TrendReport{
		Price:      DetectPriceTrend(candles, DefaultWindow),
		Volume:     DetectVolumeTrend(candles, DefaultWindow),
		Momentum:   DetectMomentum(candles),
		Volatility: DetectVolatility(candles),
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the n-1 standard deviation; zero when fewer than two samples.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// smaAt returns the w-wide simple moving average ending at index end
// (inclusive), and false when the window does not fit.
func smaAt(xs []float64, end, w int) (float64, bool) {
	if w <= 0 || end < w-1 || end >= len(xs) {
		return 0, false
	}
	return mean(xs[end-w+1 : end+1]), true
}

// ema computes the exponential moving average series with alpha = 2/(span+1),
// seeded from the first value.
func ema(xs []float64, span int) []float64 {
	if len(xs) == 0 {
		return nil
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(xs))
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// pearson is the sample correlation coefficient; zero when either variance
// degenerates.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

func closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func volumes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// trueRanges computes the per-period true range series: max of high-low,
// |high-prior close| and |low-prior close|; the first period has no prior
// close and uses high-low alone.
func trueRanges(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		tr := c.High - c.Low
		if i > 0 {
			prev := candles[i-1].Close
			if hc := math.Abs(c.High - prev); hc > tr {
				tr = hc
			}
			if lc := math.Abs(c.Low - prev); lc > tr {
				tr = lc
			}
		}
		out[i] = tr
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
