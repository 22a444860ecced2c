package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/solardesk/profit-forecast/internal/analysis"
	"github.com/solardesk/profit-forecast/internal/config"
	"github.com/solardesk/profit-forecast/internal/metrics"
	"github.com/solardesk/profit-forecast/internal/report"
	"github.com/solardesk/profit-forecast/internal/store"
	"github.com/solardesk/profit-forecast/internal/tracing"
	"github.com/solardesk/profit-forecast/pkg/constants"
	"github.com/solardesk/profit-forecast/pkg/financing"
	"github.com/solardesk/profit-forecast/pkg/output"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AnalysisStore persists analyses per quotation.
type AnalysisStore interface {
	Save(ctx context.Context, quotationID string, in analysis.Input, result analysis.Result) (store.Record, error)
	Latest(ctx context.Context, quotationID string) (store.Record, error)
	List(ctx context.Context, quotationID string, limit int) ([]store.Record, error)
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	engine      *analysis.Engine
	analyses    AnalysisStore
	tracer      trace.Tracer
}

// NewHandler constructs the HTTP handler that serves the analysis API. A nil
// store disables the persistence endpoints.
func NewHandler(logger *zap.Logger, maxBodySize int64, version string, analyses AnalysisStore) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	tracer := tracing.Tracer()
	h := &handler{
		logger:      logger,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		engine:      analysis.NewEngine(logger, tracer),
		analyses:    analyses,
		tracer:      tracer,
	}

	mux := http.NewServeMux()

	// Single analysis with chart series
	h.route(mux, "POST /api/analysis", "analysis", h.handleAnalysis)

	// All financing types side by side
	h.route(mux, "POST /api/analysis/compare", "compare", h.handleCompare)

	// PDF rendering of a single analysis
	h.route(mux, "POST /api/analysis/report", "report", h.handleReport)

	// Financing defaults lookup for form prefill
	h.route(mux, "GET /api/financing/defaults", "defaults", h.handleDefaults)

	// Stored analyses per quotation
	h.route(mux, "POST /api/quotations/{id}/analyses", "save", h.handleSaveAnalysis)
	h.route(mux, "GET /api/quotations/{id}/analyses", "list", h.handleListAnalyses)
	h.route(mux, "GET /api/quotations/{id}/analyses/latest", "latest", h.handleLatestAnalysis)

	// Version endpoint for UI metadata
	h.route(mux, "GET /api/version", "version", h.handleVersion)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// route registers a handler wrapped with a request span and a per-endpoint
// request counter.
func (h *handler) route(mux *http.ServeMux, pattern, endpoint string, fn http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), "http."+endpoint)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fn(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		metrics.HTTPRequests.WithLabelValues(endpoint, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type analysisResponse struct {
	Input    analysis.Input  `json:"input"`
	Result   analysis.Result `json:"result"`
	Chart    output.Chart    `json:"chart"`
	Warnings []string        `json:"warnings,omitempty"`
	Duration string          `json:"duration"`
}

func (h *handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalysis"
	start := time.Now()

	in, ok := h.decodeInput(w, r, op)
	if !ok {
		return
	}

	result, err := h.engine.Calculate(r.Context(), in)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("analysis computed",
		zap.String("op", op),
		zap.String("financingType", string(in.FinancingType)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, analysisResponse{
		Input:    in,
		Result:   result,
		Chart:    output.ChartSeries(result),
		Warnings: config.InputWarnings(in),
		Duration: elapsed.String(),
	})
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"

	in, ok := h.decodeInput(w, r, op)
	if !ok {
		return
	}

	result, err := h.engine.Calculate(r.Context(), in)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		title = "Solar profit analysis"
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, title, in, result); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render report: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="analysis.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write report",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"

	var req compareRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	p, err := req.project()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	opts, err := req.options()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	comparison, err := h.engine.Compare(r.Context(), p, opts)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, comparison)
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDefaults"

	query := r.URL.Query()
	ft, err := financing.ParseType(query.Get("type"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	var total float64
	if raw := strings.TrimSpace(query.Get("totalInvestment")); raw != "" {
		total, err = strconv.ParseFloat(raw, 64)
		if err != nil || total < 0 {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid totalInvestment %q", raw), op)
			return
		}
	}

	d, err := financing.DefaultsFor(ft, total)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *handler) handleSaveAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveAnalysis"

	if h.analyses == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "analysis storage is not configured", op)
		return
	}

	quotationID := strings.TrimSpace(r.PathValue("id"))
	if quotationID == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "quotation id is required", op)
		return
	}
	in, ok := h.decodeInput(w, r, op)
	if !ok {
		return
	}

	result, err := h.engine.Calculate(r.Context(), in)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	rec, err := h.analyses.Save(r.Context(), quotationID, in, result)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to save analysis: %v", err), op)
		return
	}

	h.logger.Info("analysis saved",
		zap.String("op", op),
		zap.String("quotationId", quotationID),
		zap.String("id", rec.ID.String()),
	)
	h.writeJSON(w, http.StatusCreated, rec)
}

func (h *handler) handleLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLatestAnalysis"

	if h.analyses == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "analysis storage is not configured", op)
		return
	}

	quotationID := strings.TrimSpace(r.PathValue("id"))
	rec, err := h.analyses.Latest(r.Context(), quotationID)
	if errors.Is(err, store.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("no analysis stored for quotation %s", quotationID), op)
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to load analysis: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, rec)
}

func (h *handler) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListAnalyses"

	if h.analyses == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "analysis storage is not configured", op)
		return
	}

	var limit int
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > constants.MaxListedAnalyses {
			h.respondErrorWithOp(w, http.StatusBadRequest,
				fmt.Sprintf("invalid limit %q: expected 1 to %d", raw, constants.MaxListedAnalyses), op)
			return
		}
		limit = n
	}

	quotationID := strings.TrimSpace(r.PathValue("id"))
	records, err := h.analyses.List(r.Context(), quotationID, limit)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to list analyses: %v", err), op)
		return
	}
	if records == nil {
		records = []store.Record{}
	}

	h.writeJSON(w, http.StatusOK, records)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) decodeInput(w http.ResponseWriter, r *http.Request, op string) (analysis.Input, bool) {
	var req analysisRequest
	if !h.decodeBody(w, r, &req, op) {
		return analysis.Input{}, false
	}
	in, err := req.input()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return analysis.Input{}, false
	}
	return in, true
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		if errors.Is(err, io.EOF) {
			h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondCalculationError(w http.ResponseWriter, err error, op string) {
	if analysis.IsValidationError(err) || errors.Is(err, financing.ErrUnknownType) {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute analysis: %v", err), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("analysis request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
