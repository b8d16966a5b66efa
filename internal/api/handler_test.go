package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/packing-tracker/internal/aggregate"
	"github.com/eugenenazirov/packing-tracker/internal/record"
	"github.com/eugenenazirov/packing-tracker/internal/storage"
)

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

type failingStore struct {
	listErr   error
	appendErr error
}

func (f *failingStore) List(context.Context) ([]record.PackingRecord, error) {
	return nil, f.listErr
}

func (f *failingStore) Append(context.Context, record.PackingRecord) error {
	return f.appendErr
}

func setupTestRouter(t *testing.T, seed []record.PackingRecord) (http.Handler, *controllableClock) {
	t.Helper()

	store := storage.NewMemoryStore(seed)
	clock := newControllableClock(time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC))

	logger := zaptest.NewLogger(t)
	handler := NewHandler(store, logger, WithClock(clock.Now))
	router := NewRouter(handler, logger, WithLogging(false))

	return router, clock
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func seedRecords() []record.PackingRecord {
	return []record.PackingRecord{
		{
			ID: "a", Date: "2024-10-01", Customer: "Acme", Mode: "SEA",
			Product: "Pumps", SIQty: 1, Qty: 100,
			PackageCounts: map[record.Key]int{record.KeyReturnable: 4},
		},
		{
			ID: "b", Date: "2024-10-02", Customer: "Borneo", Mode: "AIR",
			Product: "Kits", SIQty: 2, Qty: 40,
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, clock := setupTestRouter(t, nil)

	rec := performRequest(t, router, http.MethodGet, "/api/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected status ok, got %s", resp.Status)
	}
	if !resp.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected clock timestamp, got %s", resp.Timestamp)
	}
}

func TestListRecords(t *testing.T) {
	router, _ := setupTestRouter(t, seedRecords())

	rec := performRequest(t, router, http.MethodGet, "/api/records", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp recordsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Records) != 2 {
		t.Fatalf("expected 2 records, got %+v", resp)
	}
	if resp.Records[0].Customer != "Acme" {
		t.Fatalf("unexpected first record %+v", resp.Records[0])
	}
}

func TestListRecordsStoreFailureYieldsEmptySet(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := NewHandler(&failingStore{listErr: errors.New("endpoint down")}, logger)
	router := NewRouter(handler, logger, WithLogging(false))

	rec := performRequest(t, router, http.MethodGet, "/api/records", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected fetch failure to surface as empty data, got %d", rec.Code)
	}

	var resp recordsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 0 || len(resp.Records) != 0 {
		t.Fatalf("expected empty record set, got %+v", resp)
	}
}

func TestCreateRecord(t *testing.T) {
	router, clock := setupTestRouter(t, seedRecords())

	payload, _ := json.Marshal(map[string]any{
		"date":     "2024-11-01",
		"customer": "Cathay",
		"mode":     "TRUCK",
		"product":  "Panels",
		"siQty":    1,
		"qty":      25,
		"packageCounts": map[string]int{
			"WARP": 2,
		},
	})

	rec := performRequest(t, router, http.MethodPost, "/api/records", payload, "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp createResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("expected refreshed count 3, got %d", resp.Count)
	}
	if want := fmt.Sprintf("rec-%d", clock.Now().UnixMilli()); resp.ID != want {
		t.Fatalf("expected time-based id %s, got %s", want, resp.ID)
	}
}

func TestCreateRecordRejectsBadJSON(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	rec := performRequest(t, router, http.MethodPost, "/api/records", []byte("{nope"), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateRecordStoreFailure(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := NewHandler(&failingStore{appendErr: errors.New("lock timeout")}, logger)
	router := NewRouter(handler, logger, WithLogging(false))

	payload, _ := json.Marshal(map[string]any{"customer": "Acme"})
	rec := performRequest(t, router, http.MethodPost, "/api/records", payload, "application/json")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on store write failure, got %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, seedRecords())

	rec := performRequest(t, router, http.MethodGet, "/api/stats", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp aggregate.Result
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.TotalItems != 140 {
		t.Fatalf("expected total items 140, got %d", resp.Stats.TotalItems)
	}
	if resp.Stats.TopCustomer != "Acme" {
		t.Fatalf("expected top customer Acme, got %s", resp.Stats.TopCustomer)
	}
	if resp.GroupStats[record.GroupReturnable] != 4 {
		t.Fatalf("expected returnable group total 4, got %d", resp.GroupStats[record.GroupReturnable])
	}
}

func TestStatsEndpointWithFilter(t *testing.T) {
	router, _ := setupTestRouter(t, seedRecords())

	rec := performRequest(t, router, http.MethodGet, "/api/stats?mode=AIR", nil, "")
	var resp aggregate.Result
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.TotalItems != 40 {
		t.Fatalf("expected filtered total 40, got %d", resp.Stats.TotalItems)
	}
	if resp.Stats.TopCustomer != "Borneo" {
		t.Fatalf("expected Borneo after filtering, got %s", resp.Stats.TopCustomer)
	}
}

func TestImportEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	csv := "Date,Shipment,Mode,Product,SI QTY,QTY,RETURNABLE,Remark\n" +
		"25/12/2024,Acme,SEA,Pumps,1,50,2,ok\n" +
		"26/12/2024,Borneo,AIR,Kits,1,30,0,\n"

	rec := performRequest(t, router, http.MethodPost, "/api/import", []byte(csv), "text/csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp importResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Imported != 2 || resp.Count != 2 {
		t.Fatalf("expected 2 imported records, got %+v", resp)
	}
}

// brittleStore persists a fixed number of appends and then fails,
// mimicking a remote store that drops out mid-import.
type brittleStore struct {
	*storage.MemoryStore
	failAfter int
	appends   int
}

func (b *brittleStore) Append(ctx context.Context, rec record.PackingRecord) error {
	if b.appends >= b.failAfter {
		return errors.New("endpoint down")
	}
	b.appends++
	return b.MemoryStore.Append(ctx, rec)
}

func TestImportEndpointReportsPartialStoreFailure(t *testing.T) {
	store := &brittleStore{MemoryStore: storage.NewMemoryStore(nil), failAfter: 1}
	logger := zaptest.NewLogger(t)
	handler := NewHandler(store, logger)
	router := NewRouter(handler, logger, WithLogging(false))

	csv := "Date,Shipment,Mode,Product,SI QTY,QTY,RETURNABLE,Remark\n" +
		"25/12/2024,Acme,SEA,Pumps,1,50,2,ok\n" +
		"26/12/2024,Borneo,AIR,Kits,1,30,0,\n"

	rec := performRequest(t, router, http.MethodPost, "/api/import", []byte(csv), "text/csv")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on mid-import store failure, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if !strings.Contains(resp.Details, "stored 1 of 2 rows") {
		t.Fatalf("expected details to report stored rows, got %q", resp.Details)
	}
	if resp.Suggestion == "" {
		t.Fatalf("expected recovery suggestion in error payload")
	}
	if store.Len() != 1 {
		t.Fatalf("expected the first row to remain persisted, got %d", store.Len())
	}
}

func TestImportEndpointRejectsEmptyBody(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	rec := performRequest(t, router, http.MethodPost, "/api/import", nil, "text/csv")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty import, got %d", rec.Code)
	}

	rec = performRequest(t, router, http.MethodPost, "/api/import", []byte("Date,QTY\n"), "text/csv")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for header-only import, got %d", rec.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, seedRecords())

	rec := performRequest(t, router, http.MethodGet, "/api/export", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "packing-records-2024-11-01.csv") {
		t.Fatalf("expected dated filename, got %s", cd)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `"01/10/2024"`) {
		t.Fatalf("expected display-formatted dates in export:\n%s", body)
	}
	if !strings.Contains(body, `"Returnable Package Total"`) {
		t.Fatalf("expected computed columns in export header:\n%s", body)
	}
}

func TestExportEndpointAppliesFilter(t *testing.T) {
	router, _ := setupTestRouter(t, seedRecords())

	rec := performRequest(t, router, http.MethodGet, "/api/export?customer=Acme", nil, "")
	body := rec.Body.String()
	if strings.Contains(body, "Borneo") {
		t.Fatalf("expected filtered export to drop Borneo:\n%s", body)
	}
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/records", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header to be set")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-request-id" {
		t.Fatalf("expected X-Request-ID header to be echoed, got %s", got)
	}
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}

	rec := httptest.NewRecorder()
	writeInternalError(rec, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
