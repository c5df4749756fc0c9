// Package binance registers Binance WebSocket subscriptions against the
// stream manager and normalizes inbound frames into ticks and candles.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"MarketRadar/internal/domain/models"
	repo "MarketRadar/internal/domain/repository"
	"MarketRadar/internal/service/stream"
	applogger "MarketRadar/pkg/logger"
)

// Streams wires per-symbol ticker and kline subscriptions into the stream
// manager and writes normalized records through the series store.
type Streams struct {
	mgr       *stream.Manager
	store     repo.SeriesStore
	pub       repo.Publisher // optional tick fanout
	metrics   repo.Metrics
	log       *applogger.Logger
	baseURL   string
	reconnect time.Duration
	now       func() time.Time
}

// New creates the Binance stream registrar. pub may be nil.
func New(
	mgr *stream.Manager,
	store repo.SeriesStore,
	pub repo.Publisher,
	metrics repo.Metrics,
	log *applogger.Logger,
	baseURL string,
	reconnect time.Duration,
) *Streams {
	return &Streams{
		mgr:       mgr,
		store:     store,
		pub:       pub,
		metrics:   metrics,
		log:       log,
		baseURL:   strings.TrimRight(baseURL, "/"),
		reconnect: reconnect,
		now:       time.Now,
	}
}

// StartTickerStreams opens one realtime ticker subscription per symbol.
func (s *Streams) StartTickerStreams(ctx context.Context, symbols []string) error {
	for _, sym := range symbols {
		pair := strings.ToLower(sym) + "usdt"
		sub := stream.Subscription{
			Name:              "ticker_" + pair,
			Endpoint:          fmt.Sprintf("%s/%s@ticker", s.baseURL, pair),
			Handler:           s.tickerHandler(ctx),
			ReconnectInterval: s.reconnect,
		}
		if err := s.mgr.Add(sub); err != nil {
			return fmt.Errorf("add ticker stream %s: %w", sym, err)
		}
	}
	return nil
}

// StartKlineStreams opens one candle subscription per symbol for the given
// interval.
func (s *Streams) StartKlineStreams(ctx context.Context, symbols []string, interval repo.Interval) error {
	for _, sym := range symbols {
		pair := strings.ToLower(sym) + "usdt"
		sub := stream.Subscription{
			Name:              fmt.Sprintf("kline_%s_%s", pair, interval),
			Endpoint:          fmt.Sprintf("%s/%s@kline_%s", s.baseURL, pair, interval),
			Handler:           s.klineHandler(ctx),
			ReconnectInterval: s.reconnect,
		}
		if err := s.mgr.Add(sub); err != nil {
			return fmt.Errorf("add kline stream %s/%s: %w", sym, interval, err)
		}
	}
	return nil
}

// tickerMessage is the Binance 24h ticker frame; prices arrive as strings.
type tickerMessage struct {
	Symbol        string `json:"s"`
	LastPrice     string `json:"c"`
	High          string `json:"h"`
	Low           string `json:"l"`
	Volume        string `json:"v"`
	QuoteVolume   string `json:"q"`
	PercentChange string `json:"P"`
}

func (s *Streams) tickerHandler(ctx context.Context) stream.Handler {
	return func(msg []byte) {
		var m tickerMessage
		if err := json.Unmarshal(msg, &m); err != nil || m.Symbol == "" || m.LastPrice == "" {
			// Not a ticker frame; Binance also sends ping/control payloads.
			return
		}

		tick := &models.Tick{
			Symbol:        strings.TrimSuffix(m.Symbol, "USDT"),
			Price:         parseFloat(m.LastPrice),
			High:          parseFloat(m.High),
			Low:           parseFloat(m.Low),
			Volume:        parseFloat(m.Volume),
			QuoteVolume:   parseFloat(m.QuoteVolume),
			PercentChange: parseFloat(m.PercentChange),
			// Arrival second is the dedupe key for the realtime tier.
			Timestamp: s.now().Unix(),
		}

		if err := s.store.PutTick(ctx, tick); err != nil {
			s.log.Error("tick store failed", applogger.String("symbol", tick.Symbol), applogger.Error(err))
			return
		}
		s.metrics.RecordLastPrice(tick.Symbol, tick.Price)

		if s.pub != nil {
			if err := s.pub.Publish(ctx, tick); err != nil {
				s.log.Warn("tick publish failed", applogger.String("symbol", tick.Symbol), applogger.Error(err))
			}
		}
	}
}

// klineMessage is the Binance kline frame envelope.
type klineMessage struct {
	Kline struct {
		Symbol   string `json:"s"`
		Interval string `json:"i"`
		OpenTime int64  `json:"t"` // ms
		Open     string `json:"o"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Close    string `json:"c"`
		Volume   string `json:"v"`
		Final    bool   `json:"x"`
	} `json:"k"`
}

func (s *Streams) klineHandler(ctx context.Context) stream.Handler {
	return func(msg []byte) {
		var m klineMessage
		if err := json.Unmarshal(msg, &m); err != nil || m.Kline.Symbol == "" {
			return
		}
		// Only closed candles enter the series; partial updates churn.
		if !m.Kline.Final {
			return
		}

		candle := &models.Candle{
			Symbol:    strings.TrimSuffix(m.Kline.Symbol, "USDT"),
			Interval:  m.Kline.Interval,
			Open:      parseFloat(m.Kline.Open),
			High:      parseFloat(m.Kline.High),
			Low:       parseFloat(m.Kline.Low),
			Close:     parseFloat(m.Kline.Close),
			Volume:    parseFloat(m.Kline.Volume),
			Timestamp: m.Kline.OpenTime / 1000,
		}

		if err := s.store.PutCandle(ctx, candle); err != nil {
			s.log.Error("candle store failed",
				applogger.String("symbol", candle.Symbol),
				applogger.String("interval", candle.Interval),
				applogger.Error(err),
			)
			return
		}
		s.log.Debug("candle stored",
			applogger.String("symbol", candle.Symbol),
			applogger.String("interval", candle.Interval),
			applogger.Int64("timestamp", candle.Timestamp),
		)
	}
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
