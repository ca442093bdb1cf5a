package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/aluiziolira/go-nyc-airbnb/analysis"
	"github.com/aluiziolira/go-nyc-airbnb/chart"
	"github.com/aluiziolira/go-nyc-airbnb/export"
	"github.com/aluiziolira/go-nyc-airbnb/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aluiziolira/go-nyc-airbnb/dashboard"

type handler struct {
	d       *Dashboard
	metrics *Metrics
	tracer  trace.Tracer
	started time.Time
}

// NewRouter serves the page and its JSON/PNG/CSV endpoints. metrics may be nil.
func NewRouter(d *Dashboard, metrics *Metrics) http.Handler {
	h := &handler{
		d:       d,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
		started: time.Now(),
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", templ.Handler(d.Page()))
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/regions", h.regions)
	mux.HandleFunc("GET /api/region-distribution", h.regionDistribution)
	mux.HandleFunc("GET /api/charts", h.charts)
	mux.HandleFunc("GET /api/charts/{id}", h.chart)
	mux.HandleFunc("GET /api/views/{name}", h.view)

	return Chain(mux,
		Recovery,
		Logging(metrics),
	)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"listings":  h.d.Table().Len(),
		"uptime":    time.Since(h.started).String(),
	})
}

func (h *handler) regions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.d.Selector())
}

func (h *handler) regionDistribution(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		region = analysis.AnyRegion
	}

	_, span := h.tracer.Start(r.Context(), "dashboard.RenderRegion",
		trace.WithAttributes(attribute.String("region", region)))
	fig := h.d.RenderRegion(region)
	points := fig.PointCount()
	span.SetAttributes(attribute.Int("points", points))
	span.End()

	label := region
	if !h.d.HasRegion(region) {
		label = "unknown"
	}
	h.metrics.ObserveRender(label, points)
	writeFigure(w, r, fig)
}

func (h *handler) charts(w http.ResponseWriter, r *http.Request) {
	panels := h.d.Panels()
	ids := make([]string, 0, len(panels))
	for _, p := range panels {
		ids = append(ids, p.ID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"charts":      ids,
		"interactive": InteractiveID,
	})
}

func (h *handler) chart(w http.ResponseWriter, r *http.Request) {
	p, ok := h.d.Panel(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown chart")
		return
	}
	writeFigure(w, r, p.Figure)
}

func (h *handler) view(w http.ResponseWriter, r *http.Request) {
	v, ok := h.d.View(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown view")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	var buf bytes.Buffer
	writer, err := export.NewWriter(format, &buf)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := writer.Write(v); err != nil {
		slog.Error("export view", slog.String("view", v.Name), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	if err := writer.Close(); err != nil {
		slog.Error("export view", slog.String("view", v.Name), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// writeFigure answers with figure JSON, or a PNG when format=png.
func writeFigure(w http.ResponseWriter, r *http.Request, fig chart.Figure) {
	if r.URL.Query().Get("format") != "png" {
		writeJSON(w, http.StatusOK, fig)
		return
	}

	width := queryInt(r, "width")
	height := queryInt(r, "height")
	var buf bytes.Buffer
	if err := render.PNG(&buf, fig, width, height); err != nil {
		switch {
		case errors.Is(err, render.ErrEmptyFigure), errors.Is(err, render.ErrUnsupported):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("render png", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "render failed")
		}
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 || n > 4096 {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
