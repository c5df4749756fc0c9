package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"MarketRadar/internal/domain/models"
	repo "MarketRadar/internal/domain/repository"
	"MarketRadar/internal/usecase"
	apphttp "MarketRadar/pkg/http"
	applogger "MarketRadar/pkg/logger"

	"github.com/labstack/echo/v4"
)

type fakeStore struct {
	candles  []models.Candle
	news     []models.NewsRecord
	snapshot *models.AnalysisSnapshot
	saved    []*models.AnalysisSnapshot
}

func (f *fakeStore) PutCandle(context.Context, *models.Candle) error { return nil }
func (f *fakeStore) PutTick(context.Context, *models.Tick) error     { return nil }

func (f *fakeStore) GetCandles(_ context.Context, symbol string, _ repo.Interval, limit int) ([]models.Candle, error) {
	out := make([]models.Candle, 0, len(f.candles))
	for _, c := range f.candles {
		if c.Symbol == symbol {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeStore) PutNews(context.Context, string, *models.NewsRecord) error { return nil }

func (f *fakeStore) GetNews(_ context.Context, limit int, flt repo.NewsFilter) ([]models.NewsRecord, error) {
	out := make([]models.NewsRecord, 0, len(f.news))
	for _, rec := range f.news {
		if flt.Category != "" && !contains(rec.Categories, flt.Category) {
			continue
		}
		if flt.Asset != "" && !contains(rec.RelatedAssets, flt.Asset) {
			continue
		}
		out = append(out, rec)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) PutAnalysisSnapshot(_ context.Context, snap *models.AnalysisSnapshot) error {
	f.saved = append(f.saved, snap)
	f.snapshot = snap
	return nil
}

func (f *fakeStore) LatestAnalysisSnapshot(context.Context) (*models.AnalysisSnapshot, error) {
	if f.snapshot == nil {
		return nil, repo.ErrNoSnapshot
	}
	return f.snapshot, nil
}

func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}

func newTestRouter(store repo.SeriesStore) *echo.Echo {
	reader := usecase.NewAnalysisReader(store)
	h := NewMarketHandler(reader, nil, store, applogger.Nop())
	srv := apphttp.NewServer(applogger.Nop())
	h.Register(srv.Echo())
	return srv.Echo()
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func candleFixture(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{
			Symbol:    "BTC",
			Interval:  "1h",
			Open:      50000,
			High:      50100,
			Low:       49900,
			Close:     50000 + float64(i)*100,
			Volume:    1000,
			Timestamp: int64(1700000000 + i*3600),
		}
	}
	return out
}

func TestGetCandles(t *testing.T) {
	e := newTestRouter(&fakeStore{candles: candleFixture(5)})

	rec := doRequest(e, http.MethodGet, "/api/candles?symbol=BTC&interval=1h&limit=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp apphttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload shape: %T", resp.Data)
	}
	if data["total"] != float64(3) {
		t.Fatalf("expected 3 rows, got %v", data["total"])
	}
}

func TestGetCandlesRejectsBadSymbol(t *testing.T) {
	e := newTestRouter(&fakeStore{})

	rec := doRequest(e, http.MethodGet, "/api/candles?symbol=btc-usd", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetCandlesRejectsMissingSymbol(t *testing.T) {
	e := newTestRouter(&fakeStore{})

	rec := doRequest(e, http.MethodGet, "/api/candles", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetNewsRejectsCombinedFilters(t *testing.T) {
	e := newTestRouter(&fakeStore{})

	rec := doRequest(e, http.MethodGet, "/api/news?category=defi&asset=BTC", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mutually exclusive filters, got %d", rec.Code)
	}
}

func TestGetNewsByAsset(t *testing.T) {
	store := &fakeStore{news: []models.NewsRecord{
		{ID: "n1", RelatedAssets: []string{"BTC"}, Timestamp: 100},
		{ID: "n2", RelatedAssets: []string{"ETH"}, Timestamp: 200},
	}}
	e := newTestRouter(store)

	rec := doRequest(e, http.MethodGet, "/api/news?asset=BTC", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp apphttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data := resp.Data.(map[string]any)
	if data["total"] != float64(1) {
		t.Fatalf("expected 1 BTC record, got %v", data["total"])
	}
}

func TestGetTrends(t *testing.T) {
	e := newTestRouter(&fakeStore{candles: candleFixture(30)})

	rec := doRequest(e, http.MethodGet, "/api/trends?symbol=BTC&interval=1h", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp apphttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data := resp.Data.(map[string]any)
	price, ok := data["price"].(map[string]any)
	if !ok {
		t.Fatalf("missing price section: %v", data)
	}
	if price["trend"] != "uptrend" {
		t.Fatalf("expected uptrend on rising fixture, got %v", price["trend"])
	}
}

func TestAnalysisSnapshotRoundTrip(t *testing.T) {
	store := &fakeStore{}
	e := newTestRouter(store)

	rec := doRequest(e, http.MethodGet, "/api/analysis/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on empty store, got %d", rec.Code)
	}

	rec = doRequest(e, http.MethodPost, "/api/analysis", `{"payload":{"sentiment":"bullish"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.saved) != 1 {
		t.Fatalf("snapshot not written")
	}
	if store.saved[0].ID == "" || store.saved[0].Timestamp == 0 {
		t.Fatalf("snapshot id/timestamp not assigned: %+v", store.saved[0])
	}

	rec = doRequest(e, http.MethodGet, "/api/analysis/latest", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPostAnalysisRequiresPayload(t *testing.T) {
	e := newTestRouter(&fakeStore{})

	rec := doRequest(e, http.MethodPost, "/api/analysis", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without payload, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestRouter(&fakeStore{})

	rec := doRequest(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "store") {
		t.Fatalf("health payload missing store status: %s", rec.Body.String())
	}
}
