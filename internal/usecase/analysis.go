package usecase

import (
	"context"
	"fmt"
	"time"

	"MarketRadar/internal/domain/models"
	repo "MarketRadar/internal/domain/repository"
	"MarketRadar/internal/service/indicator"
)

// AnalysisReader is the read-side boundary the report collaborator calls:
// ordered series retrieval, derived trend reports and analysis snapshots.
type AnalysisReader struct {
	store repo.SeriesStore
	now   func() time.Time
}

func NewAnalysisReader(store repo.SeriesStore) *AnalysisReader {
	return &AnalysisReader{store: store, now: time.Now}
}

// Candles returns up to limit most-recent candles, ascending by timestamp.
func (r *AnalysisReader) Candles(ctx context.Context, symbol string, iv repo.Interval, limit int) ([]models.Candle, error) {
	return r.store.GetCandles(ctx, symbol, iv, limit)
}

// News returns recent news, optionally restricted to one category or asset.
func (r *AnalysisReader) News(ctx context.Context, limit int, f repo.NewsFilter) ([]models.NewsRecord, error) {
	return r.store.GetNews(ctx, limit, f)
}

// Trends fetches the series and runs the full indicator pipeline over it.
func (r *AnalysisReader) Trends(ctx context.Context, symbol string, iv repo.Interval, limit int) (*models.TrendReport, error) {
	candles, err := r.store.GetCandles(ctx, symbol, iv, limit)
	if err != nil {
		return nil, fmt.Errorf("trends %s/%s: %w", symbol, iv, err)
	}
	report := indicator.Analyze(candles)
	return &report, nil
}

// SaveSnapshot appends one analysis snapshot to the timeline.
func (r *AnalysisReader) SaveSnapshot(ctx context.Context, payload map[string]any) (*models.AnalysisSnapshot, error) {
	ts := r.now().Unix()
	snap := &models.AnalysisSnapshot{
		ID:        fmt.Sprintf("analysis_%d", ts),
		Timestamp: ts,
		Payload:   payload,
	}
	if err := r.store.PutAnalysisSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// LatestSnapshot returns the most recent snapshot, or ErrNoSnapshot.
func (r *AnalysisReader) LatestSnapshot(ctx context.Context) (*models.AnalysisSnapshot, error) {
	return r.store.LatestAnalysisSnapshot(ctx)
}
