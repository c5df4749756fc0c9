package repository

import (
	"context"
	"errors"

	"MarketRadar/internal/domain/models"
)

// ErrNoSnapshot is returned by LatestAnalysisSnapshot when nothing has been
// stored yet.
var ErrNoSnapshot = errors.New("no analysis snapshot")

// NewsFilter selects one secondary index for GetNews. Category and Asset are
// mutually exclusive alternatives to the default timeline scan.
type NewsFilter struct {
	Category string
	Asset    string
}

// SeriesStore is the time-series storage contract. Two backends implement it
// (Redis sorted sets and SQLite); both must satisfy the shared contract test
// suite. A write is visible to any read issued after it returns. Cross-key
// operations (a record plus its secondary indices) are not atomic as a whole;
// readers tolerate missing index entries.
type SeriesStore interface {
	// PutCandle writes one candle under (symbol, interval, timestamp),
	// replacing any prior record with the same key, and assigns the
	// retention deadline for the interval tier.
	PutCandle(ctx context.Context, c *models.Candle) error

	// PutTick writes a realtime tick, deduped by arrival second.
	PutTick(ctx context.Context, t *models.Tick) error

	// GetCandles returns up to limit most-recent non-expired candles,
	// always ordered ascending by timestamp.
	GetCandles(ctx context.Context, symbol string, iv Interval, limit int) ([]models.Candle, error)

	// PutNews writes one news record and maintains the timeline plus
	// category and asset indices.
	PutNews(ctx context.Context, source string, rec *models.NewsRecord) error

	// GetNews returns up to limit non-expired records, most-recent first,
	// optionally restricted by one secondary index.
	GetNews(ctx context.Context, limit int, f NewsFilter) ([]models.NewsRecord, error)

	// PutAnalysisSnapshot appends one snapshot to the analysis timeline.
	PutAnalysisSnapshot(ctx context.Context, snap *models.AnalysisSnapshot) error

	// LatestAnalysisSnapshot returns the snapshot with the maximum
	// timestamp, or ErrNoSnapshot.
	LatestAnalysisSnapshot(ctx context.Context) (*models.AnalysisSnapshot, error)

	Health(ctx context.Context) error
	Close() error
}

// Publisher fans normalized ticks out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, t *models.Tick) error
	Close() error
}

// Metrics records operational counters for the collector and store.
type Metrics interface {
	RecordMessageReceived(stream string)
	RecordReconnect(stream string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordStoreOp(op, backend string, seconds float64)
}
