package models

// Trend classifications share a small vocabulary across signal kinds.
const (
	TrendUnknown   = "unknown"
	TrendUptrend   = "uptrend"
	TrendDowntrend = "downtrend"
	TrendSideways  = "sideways"

	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"

	MomentumNeutral    = "neutral"
	MomentumOverbought = "overbought"
	MomentumOversold   = "oversold"
	CrossoverBullish   = "bullish_crossover"
	CrossoverBearish   = "bearish_crossover"
	MACDBullish        = "bullish"
	MACDBearish        = "bearish"
)

// PriceTrend is the moving-average trend of closes plus trailing
// support/resistance levels.
type PriceTrend struct {
	Trend              string  `json:"trend"`
	Strength           float64 `json:"strength"`
	LastClose          float64 `json:"last_close"`
	Support            float64 `json:"support"`
	Resistance         float64 `json:"resistance"`
	SupportDistance    float64 `json:"support_distance"`
	ResistanceDistance float64 `json:"resistance_distance"`
}

// VolumeTrend is the moving-average trend of volume plus the correlation
// between absolute price moves and volume.
type VolumeTrend struct {
	Trend                  string  `json:"trend"`
	Strength               float64 `json:"strength"`
	AvgVolume              float64 `json:"avg_volume"`
	PriceVolumeCorrelation float64 `json:"price_volume_correlation"`
}

// Momentum bundles RSI, rate-of-change momentum and MACD.
type Momentum struct {
	RSI           float64 `json:"rsi"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`
	Momentum      float64 `json:"momentum"`
	MomentumTrend string  `json:"momentum_trend"`
	MACDTrend     string  `json:"macd_trend"`
}

// Volatility bundles annualized return volatility, ATR and Bollinger bands.
type Volatility struct {
	Volatility        float64 `json:"volatility"`
	ATR               float64 `json:"atr"`
	BollingerWidth    float64 `json:"bollinger_width"`
	BollingerPosition float64 `json:"bollinger_position"`
	VolatilityTrend   string  `json:"volatility_trend"`
}

// TrendReport combines all four signal groups computed over one candle series.
type TrendReport struct {
	Price      PriceTrend  `json:"price"`
	Volume     VolumeTrend `json:"volume"`
	Momentum   Momentum    `json:"momentum"`
	Volatility Volatility  `json:"volatility"`
}
