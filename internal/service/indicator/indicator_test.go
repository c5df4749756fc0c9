package indicator

import (
	"math"
	"testing"

	"MarketRadar/internal/domain/models"
)

func seriesCandles(closes []float64, volume float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Symbol:    "BTCUSDT",
			Interval:  "1h",
			Open:      c,
			High:      c * 1.001,
			Low:       c * 0.999,
			Close:     c,
			Volume:    volume,
			Timestamp: int64(1700000000 + i*3600),
		}
	}
	return out
}

func rampCloses(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func flatCloses(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDetectPriceTrendUptrend(t *testing.T) {
	candles := seriesCandles(rampCloses(50000, 500, 10), 1000)

	got := DetectPriceTrend(candles, 5)
	if got.Trend != models.TrendUptrend {
		t.Fatalf("expected uptrend, got %q", got.Trend)
	}
	if got.Strength <= 0 || got.Strength > 1 {
		t.Fatalf("strength out of range: %v", got.Strength)
	}
	if got.LastClose != 54500 {
		t.Fatalf("unexpected last close %v", got.LastClose)
	}
	if got.Support >= got.Resistance {
		t.Fatalf("support %v not below resistance %v", got.Support, got.Resistance)
	}
	if got.SupportDistance <= 0 || got.ResistanceDistance <= 0 {
		t.Fatalf("distances should be positive: %v %v", got.SupportDistance, got.ResistanceDistance)
	}
}

func TestDetectPriceTrendDowntrend(t *testing.T) {
	candles := seriesCandles(rampCloses(54500, -500, 10), 1000)

	got := DetectPriceTrend(candles, 5)
	if got.Trend != models.TrendDowntrend {
		t.Fatalf("expected downtrend, got %q", got.Trend)
	}
	if got.Strength <= 0 || got.Strength > 1 {
		t.Fatalf("strength out of range: %v", got.Strength)
	}
}

func TestDetectPriceTrendStrengthArithmetic(t *testing.T) {
	// 10 closes 50000..54500: last SMA 53500 over the final five closes,
	// prior SMA 51500 ending five positions from the end.
	candles := seriesCandles(rampCloses(50000, 500, 10), 1000)

	got := DetectPriceTrend(candles, 5)
	want := (53500.0 - 51500.0) / 51500.0 * 5
	if math.Abs(got.Strength-want) > 1e-9 {
		t.Fatalf("expected strength %.7f, got %.7f", want, got.Strength)
	}
}

func TestDetectPriceTrendDownStrengthArithmetic(t *testing.T) {
	// Mirrored ramp: last SMA 51000, prior SMA 53000.
	candles := seriesCandles(rampCloses(54500, -500, 10), 1000)

	got := DetectPriceTrend(candles, 5)
	want := (53000.0 - 51000.0) / 53000.0 * 5
	if math.Abs(got.Strength-want) > 1e-9 {
		t.Fatalf("expected strength %.7f, got %.7f", want, got.Strength)
	}
}

func TestDetectPriceTrendNoCompletePriorAverage(t *testing.T) {
	// Six records: the prior average five positions from the end has no
	// full window yet, so the comparison degrades to sideways.
	candles := seriesCandles(rampCloses(50000, 500, 6), 1000)

	got := DetectPriceTrend(candles, 5)
	if got.Trend != models.TrendSideways {
		t.Fatalf("expected sideways, got %q", got.Trend)
	}
	if got.Strength != 0.1 {
		t.Fatalf("expected fixed sideways strength 0.1, got %v", got.Strength)
	}
}

func TestDetectPriceTrendSideways(t *testing.T) {
	candles := seriesCandles(flatCloses(50000, 10), 1000)

	got := DetectPriceTrend(candles, 5)
	if got.Trend != models.TrendSideways {
		t.Fatalf("expected sideways, got %q", got.Trend)
	}
	if got.Strength != 0.1 {
		t.Fatalf("expected fixed sideways strength 0.1, got %v", got.Strength)
	}
}

func TestDetectPriceTrendInsufficientData(t *testing.T) {
	candles := seriesCandles(rampCloses(50000, 500, 4), 1000)

	got := DetectPriceTrend(candles, 5)
	if got.Trend != models.TrendUnknown {
		t.Fatalf("expected unknown, got %q", got.Trend)
	}
	if got.Strength != 0 {
		t.Fatalf("expected zero strength, got %v", got.Strength)
	}
}

func TestDetectPriceTrendExactWindow(t *testing.T) {
	// Exactly window records: no prior average to compare against, but
	// support and resistance still come out of the tail.
	candles := seriesCandles(rampCloses(50000, 500, 5), 1000)

	got := DetectPriceTrend(candles, 5)
	if got.Trend != models.TrendUnknown {
		t.Fatalf("expected unknown, got %q", got.Trend)
	}
	if got.LastClose != 52000 {
		t.Fatalf("unexpected last close %v", got.LastClose)
	}
	if got.Support <= 0 || got.Resistance <= 0 {
		t.Fatalf("support/resistance not populated: %v %v", got.Support, got.Resistance)
	}
}

func TestDetectPriceTrendDefaultWindow(t *testing.T) {
	candles := seriesCandles(rampCloses(50000, 500, 12), 1000)

	got := DetectPriceTrend(candles, 0)
	if got.Trend != models.TrendUptrend {
		t.Fatalf("expected uptrend with default window, got %q", got.Trend)
	}
}

func TestDetectVolumeTrendStable(t *testing.T) {
	candles := seriesCandles(rampCloses(50000, 100, 10), 1_000_000)

	got := DetectVolumeTrend(candles, 5)
	if got.Trend != models.TrendStable {
		t.Fatalf("expected stable, got %q", got.Trend)
	}
	if got.Strength != 0.1 {
		t.Fatalf("expected fixed stable strength 0.1, got %v", got.Strength)
	}
	if got.AvgVolume != 1_000_000 {
		t.Fatalf("unexpected avg volume %v", got.AvgVolume)
	}
}

func TestDetectVolumeTrendIncreasing(t *testing.T) {
	closes := rampCloses(50000, 100, 10)
	candles := seriesCandles(closes, 0)
	for i := range candles {
		if i < 5 {
			candles[i].Volume = 100
		} else {
			candles[i].Volume = 1000
		}
	}

	got := DetectVolumeTrend(candles, 5)
	if got.Trend != models.TrendIncreasing {
		t.Fatalf("expected increasing, got %q", got.Trend)
	}
	if got.Strength != 1 {
		t.Fatalf("expected clamped strength 1, got %v", got.Strength)
	}
}

func TestDetectVolumeTrendStrengthArithmetic(t *testing.T) {
	// Last volume SMA 150, prior SMA 110 ending five positions from the
	// end, so the jump clears the 1.2x threshold without clamping.
	candles := seriesCandles(rampCloses(50000, 100, 10), 0)
	for i := range candles {
		if i < 5 {
			candles[i].Volume = 100
		} else {
			candles[i].Volume = 150
		}
	}

	got := DetectVolumeTrend(candles, 5)
	if got.Trend != models.TrendIncreasing {
		t.Fatalf("expected increasing, got %q", got.Trend)
	}
	want := (150.0 - 110.0) / 110.0
	if math.Abs(got.Strength-want) > 1e-9 {
		t.Fatalf("expected strength %.7f, got %.7f", want, got.Strength)
	}
}

func TestDetectVolumeTrendDecreasing(t *testing.T) {
	closes := rampCloses(50000, 100, 10)
	candles := seriesCandles(closes, 0)
	for i := range candles {
		if i < 5 {
			candles[i].Volume = 1000
		} else {
			candles[i].Volume = 100
		}
	}

	got := DetectVolumeTrend(candles, 5)
	if got.Trend != models.TrendDecreasing {
		t.Fatalf("expected decreasing, got %q", got.Trend)
	}
}

func TestDetectVolumeTrendInsufficientData(t *testing.T) {
	candles := seriesCandles(rampCloses(50000, 100, 3), 1000)

	got := DetectVolumeTrend(candles, 5)
	if got.Trend != models.TrendUnknown {
		t.Fatalf("expected unknown, got %q", got.Trend)
	}
}

func TestDetectVolumeTrendCorrelationNeedsPairs(t *testing.T) {
	// Five records produce only four change/volume pairs, under the
	// minimum sample, so the correlation stays zero.
	candles := seriesCandles(rampCloses(50000, 100, 5), 1000)

	got := DetectVolumeTrend(candles, 3)
	if got.PriceVolumeCorrelation != 0 {
		t.Fatalf("expected zero correlation on short series, got %v", got.PriceVolumeCorrelation)
	}
}

func TestDetectMomentumInsufficientData(t *testing.T) {
	candles := seriesCandles(rampCloses(50000, 100, 13), 1000)

	got := DetectMomentum(candles)
	if got.MomentumTrend != models.MomentumNeutral {
		t.Fatalf("expected neutral, got %q", got.MomentumTrend)
	}
	if got.MACDTrend != models.MomentumNeutral {
		t.Fatalf("expected neutral macd, got %q", got.MACDTrend)
	}
	if got.RSI != 0 || got.MACD != 0 || got.Momentum != 0 {
		t.Fatalf("expected zero values, got %+v", got)
	}
}

func TestDetectMomentumAllGains(t *testing.T) {
	candles := seriesCandles(rampCloses(50000, 200, 30), 1000)

	got := DetectMomentum(candles)
	if got.RSI != 100 {
		t.Fatalf("expected RSI 100 on monotone gains, got %v", got.RSI)
	}
	if got.MomentumTrend != models.MomentumOverbought {
		t.Fatalf("expected overbought, got %q", got.MomentumTrend)
	}
	if got.Momentum <= 0 {
		t.Fatalf("expected positive momentum, got %v", got.Momentum)
	}
	if got.MACDTrend != models.MACDBullish {
		t.Fatalf("expected bullish macd, got %q", got.MACDTrend)
	}
}

func TestDetectMomentumFlatSeries(t *testing.T) {
	candles := seriesCandles(flatCloses(50000, 30), 1000)

	got := DetectMomentum(candles)
	if got.RSI != 50 {
		t.Fatalf("expected midline RSI on flat series, got %v", got.RSI)
	}
	if got.MomentumTrend != models.MomentumNeutral {
		t.Fatalf("expected neutral, got %q", got.MomentumTrend)
	}
	if got.MACDTrend != models.MomentumNeutral {
		t.Fatalf("expected neutral macd, got %q", got.MACDTrend)
	}
	if got.MACDHistogram != 0 {
		t.Fatalf("expected zero histogram, got %v", got.MACDHistogram)
	}
}

func TestDetectMomentumRSIBounds(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		// Alternating gains and losses of uneven size.
		closes[i] = 50000 + 300*float64(i%3) - 100*float64(i%5)
	}
	candles := seriesCandles(closes, 1000)

	got := DetectMomentum(candles)
	if got.RSI < 0 || got.RSI > 100 {
		t.Fatalf("RSI out of [0,100]: %v", got.RSI)
	}
}

func TestDetectVolatilityInsufficientData(t *testing.T) {
	candles := seriesCandles(rampCloses(50000, 100, 4), 1000)

	got := DetectVolatility(candles)
	if got.VolatilityTrend != models.TrendUnknown {
		t.Fatalf("expected unknown, got %q", got.VolatilityTrend)
	}
	if got.BollingerPosition != 0.5 {
		t.Fatalf("expected neutral band position, got %v", got.BollingerPosition)
	}
}

func TestDetectVolatilityFlatSeries(t *testing.T) {
	candles := make([]models.Candle, 30)
	for i := range candles {
		candles[i] = models.Candle{
			Symbol: "BTCUSDT", Interval: "1h",
			Open: 50000, High: 50000, Low: 50000, Close: 50000,
			Volume: 1000, Timestamp: int64(1700000000 + i*3600),
		}
	}

	got := DetectVolatility(candles)
	if got.Volatility != 0 {
		t.Fatalf("expected zero volatility, got %v", got.Volatility)
	}
	if got.ATR != 0 {
		t.Fatalf("expected zero ATR, got %v", got.ATR)
	}
	if got.BollingerWidth != 0 {
		t.Fatalf("expected zero band width, got %v", got.BollingerWidth)
	}
	if got.BollingerPosition != 0.5 {
		t.Fatalf("expected neutral band position, got %v", got.BollingerPosition)
	}
	if got.VolatilityTrend != models.TrendStable {
		t.Fatalf("expected stable, got %q", got.VolatilityTrend)
	}
}

func TestDetectVolatilityRangeSpike(t *testing.T) {
	candles := make([]models.Candle, 25)
	for i := range candles {
		spread := 10.0
		if i >= 20 {
			spread = 500
		}
		candles[i] = models.Candle{
			Symbol: "BTCUSDT", Interval: "1h",
			Open: 50000, High: 50000 + spread/2, Low: 50000 - spread/2, Close: 50000,
			Volume: 1000, Timestamp: int64(1700000000 + i*3600),
		}
	}

	got := DetectVolatility(candles)
	if got.VolatilityTrend != models.TrendIncreasing {
		t.Fatalf("expected increasing volatility, got %q", got.VolatilityTrend)
	}
	if got.ATR <= 0 {
		t.Fatalf("expected positive ATR, got %v", got.ATR)
	}
}

func TestDetectVolatilityAnnualization(t *testing.T) {
	// Alternating +1%/-1% returns. The annualized figure must scale the
	// per-period standard deviation by sqrt(252).
	closes := make([]float64, 30)
	closes[0] = 50000
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] * 1.01
		} else {
			closes[i] = closes[i-1] * 0.99
		}
	}
	candles := seriesCandles(closes, 1000)

	got := DetectVolatility(candles)
	if got.Volatility <= 0 {
		t.Fatalf("expected positive volatility, got %v", got.Volatility)
	}
	perPeriod := got.Volatility / math.Sqrt(annualizePeriods)
	if perPeriod < 0.005 || perPeriod > 0.02 {
		t.Fatalf("per-period deviation implausible: %v", perPeriod)
	}
}

func TestAnalyzeCombinesAllSignals(t *testing.T) {
	candles := seriesCandles(rampCloses(50000, 200, 30), 1_000_000)

	report := Analyze(candles)
	if report.Price.Trend != models.TrendUptrend {
		t.Fatalf("expected price uptrend, got %q", report.Price.Trend)
	}
	if report.Volume.Trend == "" {
		t.Fatalf("volume trend not populated")
	}
	if report.Momentum.MomentumTrend == "" {
		t.Fatalf("momentum trend not populated")
	}
	if report.Volatility.VolatilityTrend == "" {
		t.Fatalf("volatility trend not populated")
	}
}

func TestAnalyzeEmptySeries(t *testing.T) {
	report := Analyze(nil)
	if report.Price.Trend != models.TrendUnknown {
		t.Fatalf("expected unknown price trend, got %q", report.Price.Trend)
	}
	if report.Momentum.MomentumTrend != models.MomentumNeutral {
		t.Fatalf("expected neutral momentum, got %q", report.Momentum.MomentumTrend)
	}
}
