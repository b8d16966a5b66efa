package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/packing-tracker/internal/aggregate"
	"github.com/eugenenazirov/packing-tracker/internal/csvcodec"
	"github.com/eugenenazirov/packing-tracker/internal/record"
	"github.com/eugenenazirov/packing-tracker/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// maxImportBytes caps the CSV import body size.
const maxImportBytes = 8 << 20

// Handler wires the record store into HTTP handlers.
type Handler struct {
	store  storage.Store
	logger *zap.Logger
	clock  func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Store, logger *zap.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:  store,
		logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListRecords returns every stored record. A failing remote store is
// treated as an empty data set, matching the lenient fetch contract.
func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records := h.loadRecords(r.Context())
	writeJSON(w, http.StatusOK, recordsResponse{Records: records, Count: len(records)})
}

func (h *Handler) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec record.PackingRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if rec.ID == "" {
		rec.ID = fmt.Sprintf("rec-%d", h.clock().UnixMilli())
	}
	rec = record.Normalize(rec)

	if err := h.store.Append(r.Context(), rec); err != nil {
		h.logger.Warn("record append failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Store write failed", err.Error())
		return
	}

	// The store owns server-assigned fields; re-fetch instead of trusting
	// optimistic local state.
	records := h.loadRecords(r.Context())
	writeJSON(w, http.StatusCreated, createResponse{
		Message: "Record saved",
		ID:      rec.ID,
		Count:   len(records),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	records := h.loadRecords(r.Context())
	filter := filterFromQuery(r)
	writeJSON(w, http.StatusOK, aggregate.Compute(filter.Apply(records)))
}

// handleImport decodes a CSV body and appends every decoded record. Decoding
// happens before the first append, so a malformed file is rejected without
// partial application. The remote contract appends one row per call, so a
// store failure mid-import cannot be rolled back; the error payload reports
// how many rows were already stored.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid import file", "unable to read request body")
		return
	}

	records, err := csvcodec.Decode(string(body))
	if err != nil {
		if errors.Is(err, csvcodec.ErrEmptyInput) || errors.Is(err, csvcodec.ErrNoRecords) {
			writeError(w, http.StatusBadRequest, "Invalid import file", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	for i, rec := range records {
		if err := h.store.Append(r.Context(), rec); err != nil {
			h.logger.Warn("import append failed",
				zap.Error(err),
				zap.String("record_id", rec.ID),
				zap.Int("stored", i),
				zap.Int("total", len(records)),
			)
			writeError(w, http.StatusBadGateway, "Store write failed",
				fmt.Sprintf("stored %d of %d rows before the failure: %v", i, len(records), err),
				"remove the rows that were already stored before retrying the import")
			return
		}
	}

	total := h.loadRecords(r.Context())
	writeJSON(w, http.StatusOK, importResponse{
		Message:  fmt.Sprintf("Imported %d records", len(records)),
		Imported: len(records),
		Count:    len(total),
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	records := h.loadRecords(r.Context())
	filter := filterFromQuery(r)

	out := csvcodec.Encode(records, filter)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvcodec.ExportFilename(h.clock())))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

// loadRecords fetches the current record list, downgrading a store failure
// to an empty list after logging it.
func (h *Handler) loadRecords(ctx context.Context) []record.PackingRecord {
	records, err := h.store.List(ctx)
	if err != nil {
		h.logger.Warn("record fetch failed", zap.Error(err))
		return []record.PackingRecord{}
	}
	if records == nil {
		records = []record.PackingRecord{}
	}
	return records
}

func filterFromQuery(r *http.Request) record.Filter {
	q := r.URL.Query()
	return record.Filter{
		Customer: q.Get("customer"),
		Mode:     q.Get("mode"),
		Year:     q.Get("year"),
		Month:    q.Get("month"),
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type recordsResponse struct {
	Records []record.PackingRecord `json:"records"`
	Count   int                    `json:"count"`
}

type createResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Count   int    `json:"count"`
}

type importResponse struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
	Count    int    `json:"count"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
