package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/spektr-org/sharkscope/engine"
	"github.com/spektr-org/sharkscope/helpers"
	"github.com/spektr-org/sharkscope/metrics"
)

// maxBodyBytes bounds a FilterState request body.
const maxBodyBytes = 1 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler answers dashboard queries against the resident incident table.
// The table and regions are read-only, so a Handler serves concurrent
// requests without locking.
type Handler struct {
	view    engine.View
	regions []helpers.Region
	opts    []engine.Option
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHandler creates a handler over view. regions and m may be nil.
func NewHandler(view engine.View, regions []helpers.Region, m *metrics.Metrics, logger *zap.Logger, opts ...engine.Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if regions == nil {
		regions = []helpers.Region{}
	}
	return &Handler{
		view:    view,
		regions: regions,
		opts:    opts,
		metrics: m,
		logger:  logger,
	}
}

// dashboardResponse adds the rendered quick-facts lines to a dashboard.
type dashboardResponse struct {
	*engine.Dashboard
	QuickFacts []string `json:"quickFacts"`
}

// Dashboard runs the full pipeline for the posted filter state.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, ok := h.execute(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Dashboard:  d,
		QuickFacts: engine.BuildQuickFacts(d.Facts),
	})
}

// Incidents returns the filtered incident table with its summary row.
func (h *Handler) Incidents(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.BuildIncidentTable(h.apply(filters)))
}

// Series answers an ad hoc group-by:
// ?dimension=<key>&mode=count|percent&limit=N
func (h *Handler) Series(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dimension := q.Get("dimension")
	if dimension == "" {
		writeError(w, http.StatusBadRequest, "dimension is required")
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	s, err := engine.GroupBy(h.apply(filters), dimension, engine.ParseMode(q.Get("mode")), limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Charts returns chart configs for every populated dashboard series.
func (h *Handler) Charts(w http.ResponseWriter, r *http.Request) {
	d, ok := h.execute(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, engine.BuildCharts(d))
}

// Export returns the dashboard as an XLSX workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	d, ok := h.execute(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := helpers.WriteWorkbook(&buf, d); err != nil {
		h.logger.Error("export failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="sharkscope.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Options lists the filter choices derived from the unfiltered table.
func (h *Handler) Options(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, engine.Options(h.view))
}

// Regions returns the loaded state regions, or [] when none were loaded.
func (h *Handler) Regions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.regions)
}

// ============================================================================
// HELPERS
// ============================================================================

// execute decodes the filter state and runs the full dashboard pipeline.
func (h *Handler) execute(w http.ResponseWriter, r *http.Request) (*engine.Dashboard, bool) {
	filters, ok := h.filters(w, r)
	if !ok {
		return nil, false
	}
	opts := append(append([]engine.Option(nil), h.opts...),
		engine.WithLogger(h.logger.With(zap.String("request_id", RequestID(r.Context())))))
	d := engine.Execute(h.view, filters, opts...)
	if h.metrics != nil {
		h.metrics.ObserveQuery(d.Matched, d.Total)
	}
	return d, true
}

func (h *Handler) apply(filters engine.FilterState) engine.View {
	filtered := engine.ApplyFilters(h.view, filters)
	if h.metrics != nil {
		h.metrics.ObserveQuery(filtered.Len(), h.view.Len())
	}
	return filtered
}

// filters reads a FilterState body. An empty body is the unrestricted state.
func (h *Handler) filters(w http.ResponseWriter, r *http.Request) (engine.FilterState, bool) {
	var f engine.FilterState
	if err := readBodyJSON(r, maxBodyBytes, &f); err != nil {
		h.logger.Debug("bad filter state", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid filter state: "+err.Error())
		return engine.FilterState{}, false
	}
	return engine.NormalizeFilters(f), true
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", s)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

var errBodyTooLarge = errors.New("request body too large")

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return err
	}
	if int64(len(body)) > maxBytes {
		return errBodyTooLarge
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
