package usecase

import (
	"context"
	"fmt"

	repo "MarketRadar/internal/domain/repository"
	"MarketRadar/internal/service/binance"
	"MarketRadar/internal/service/stream"
	applogger "MarketRadar/pkg/logger"
)

// MarketCollector owns the live ingest side: it registers the configured
// ticker and kline subscriptions and shuts them down as one group.
type MarketCollector struct {
	mgr     *stream.Manager
	streams *binance.Streams
	pub     repo.Publisher // optional, closed on shutdown
	log     *applogger.Logger

	symbols   []string
	intervals []repo.Interval

	cancel context.CancelFunc
}

// NewMarketCollector creates a collector for the given symbols and candle
// intervals. pub may be nil when tick fanout is disabled.
func NewMarketCollector(
	mgr *stream.Manager,
	streams *binance.Streams,
	pub repo.Publisher,
	log *applogger.Logger,
	symbols []string,
	intervals []repo.Interval,
) *MarketCollector {
	return &MarketCollector{
		mgr:       mgr,
		streams:   streams,
		pub:       pub,
		log:       log,
		symbols:   symbols,
		intervals: intervals,
	}
}

// Start registers every subscription. Connection failures after this point
// are handled by the stream manager's reconnect cycle, not surfaced here.
func (c *MarketCollector) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	if err := c.streams.StartTickerStreams(ctx, c.symbols); err != nil {
		return fmt.Errorf("start ticker streams: %w", err)
	}
	for _, iv := range c.intervals {
		if err := c.streams.StartKlineStreams(ctx, c.symbols, iv); err != nil {
			return fmt.Errorf("start kline streams: %w", err)
		}
	}

	c.log.Info("market collector started",
		applogger.Strings("symbols", c.symbols),
		applogger.Int("intervals", len(c.intervals)),
	)
	return nil
}

// StreamStates reports the lifecycle phase of each subscription, for health
// reporting.
func (c *MarketCollector) StreamStates() map[string]string {
	return c.mgr.States()
}

// Shutdown closes all subscriptions and the fanout publisher. Safe to call
// multiple times.
func (c *MarketCollector) Shutdown() {
	if c.cancel != nil {
		c.cancel()
	}
	c.mgr.Shutdown()
	if c.pub != nil {
		if err := c.pub.Close(); err != nil {
			c.log.Warn("publisher close failed", applogger.Error(err))
		}
	}
}
