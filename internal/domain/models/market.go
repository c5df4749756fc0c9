package models

// Candle represents one OHLCV record for a symbol at a given interval.
// Timestamp is integer seconds, UTC. (Symbol, Interval, Timestamp) is the
// natural key of the stored series; a second write for the same key replaces
// the first, it is never duplicated.
type Candle struct {
	Symbol    string  `json:"symbol"`
	Interval  string  `json:"interval"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`

	// Realtime-tier extras carried through from ticks; zero for interval
	// candles.
	QuoteVolume   float64 `json:"quote_volume,omitempty"`
	PercentChange float64 `json:"percent_change,omitempty"`
}

// Tick is a realtime price update, stored under the "realtime" interval tier
// and deduped by arrival second.
type Tick struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        float64 `json:"volume"`
	QuoteVolume   float64 `json:"quote_volume"`
	PercentChange float64 `json:"percent_change"`
	Timestamp     int64   `json:"timestamp"`
}

// Candle converts a tick to a flat candle record so both share one series path.
func (t *Tick) Candle() *Candle {
	return &Candle{
		Symbol:        t.Symbol,
		Interval:      "realtime",
		Open:          t.Price,
		High:          t.High,
		Low:           t.Low,
		Close:         t.Price,
		Volume:        t.Volume,
		Timestamp:     t.Timestamp,
		QuoteVolume:   t.QuoteVolume,
		PercentChange: t.PercentChange,
	}
}

// NewsRecord is a typed envelope around one news item: queryable fields plus
// an opaque payload carried through untouched for forward compatibility.
type NewsRecord struct {
	ID            string         `json:"id"`
	Source        string         `json:"source"`
	Categories    []string       `json:"categories"`
	RelatedAssets []string       `json:"related_assets"`
	Timestamp     int64          `json:"timestamp"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// AnalysisSnapshot is a write-once analysis result; retrieval is most recent
// by timestamp.
type AnalysisSnapshot struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}
