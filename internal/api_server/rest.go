package apiserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/kubev2v/rvtools-summary/internal/handlers/validator"
	"github.com/kubev2v/rvtools-summary/internal/lifecycle"
	"github.com/kubev2v/rvtools-summary/internal/rvtools"
	"github.com/kubev2v/rvtools-summary/internal/summary"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type handler struct {
	state     *State
	table     *lifecycle.Table
	validator *validator.Validator
	lifecycle lifecycleDefaults
	maxFiles  int
	maxUpload int64
}

type lifecycleDefaults struct {
	mode            lifecycle.Mode
	warningMonths   int
	incrementMonths int
	steps           int
}

func (h *handler) register(router chi.Router) {
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/ingest", h.ingest)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSnapshot)
			r.Get("/summary", h.getSummary)
			r.Get("/diagnostics", h.getDiagnostics)
			r.Get("/vms", h.listVMs)
			r.Get("/clusters", h.listClusters)
			r.Get("/hosts/density", h.getDensity)
			r.Get("/drp", h.getDRP)
			r.Get("/lifecycle", h.getLifecycle)
			r.Get("/lifecycle/timeline", h.getTimeline)
		})
	})
}

type snapshotKey struct{}

func withSnapshot(ctx context.Context, snap *Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snap)
}

func snapshotFrom(ctx context.Context) *Snapshot {
	snap, _ := ctx.Value(snapshotKey{}).(*Snapshot)
	return snap
}

func (h *handler) requireSnapshot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap, ok := h.state.Current()
		if !ok {
			_ = render.Render(w, r, ErrorReply{HTTPStatus: http.StatusNotFound, Message: "no inventory loaded"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withSnapshot(r.Context(), snap)))
	})
}

type SummaryReply struct {
	*summary.Summary
	SummaryID  string                  `json:"summaryId"`
	Assessment summary.RatioAssessment `json:"assessment"`
	Sources    []string                `json:"sources"`
	LoadedAt   time.Time               `json:"loadedAt"`
}

type DiagnosticsReply struct {
	Diagnostics []rvtools.Diagnostic `json:"diagnostics"`
	Skipped     int                  `json:"skipped"`
}

type VMListReply struct {
	Total int          `json:"total"`
	VMs   []summary.VM `json:"vms"`
}

type ClusterListReply struct {
	Clusters []summary.ClusterRollup `json:"clusters"`
}

type DensityReply struct {
	Buckets []summary.DensityBucket `json:"buckets"`
}

type DRPReply struct {
	summary.DRPResult
}

type LifecycleReply struct {
	*lifecycle.SupportReport
}

type TimelineReply struct {
	Mode          lifecycle.Mode            `json:"mode"`
	WarningMonths int                       `json:"warningMonths"`
	Points        []lifecycle.TimelinePoint `json:"points"`
}

type IngestReply struct {
	SummaryID   string               `json:"summaryId"`
	TotalVMs    int                  `json:"totalVms"`
	Hosts       int                  `json:"hosts"`
	Diagnostics []rvtools.Diagnostic `json:"diagnostics"`
}

type ErrorReply struct {
	HTTPStatus int    `json:"-"`
	Message    string `json:"message"`
}

func (s SummaryReply) Render(w http.ResponseWriter, r *http.Request) error     { return nil }
func (d DiagnosticsReply) Render(w http.ResponseWriter, r *http.Request) error { return nil }
func (v VMListReply) Render(w http.ResponseWriter, r *http.Request) error      { return nil }
func (c ClusterListReply) Render(w http.ResponseWriter, r *http.Request) error { return nil }
func (d DensityReply) Render(w http.ResponseWriter, r *http.Request) error     { return nil }
func (d DRPReply) Render(w http.ResponseWriter, r *http.Request) error         { return nil }
func (l LifecycleReply) Render(w http.ResponseWriter, r *http.Request) error   { return nil }
func (t TimelineReply) Render(w http.ResponseWriter, r *http.Request) error    { return nil }

func (i IngestReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, http.StatusCreated)
	return nil
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatus)
	return nil
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	snap := snapshotFrom(r.Context())
	_ = render.Render(w, r, SummaryReply{
		Summary:    snap.Summary,
		SummaryID:  snap.ID.String(),
		Assessment: summary.AssessRatios(snap.Summary.Ratios),
		Sources:    snap.Sources,
		LoadedAt:   snap.LoadedAt,
	})
}

func (h *handler) getDiagnostics(w http.ResponseWriter, r *http.Request) {
	snap := snapshotFrom(r.Context())
	reply := DiagnosticsReply{Diagnostics: snap.Diagnostics}
	for _, d := range snap.Diagnostics {
		if d.Skipped {
			reply.Skipped++
		}
	}
	_ = render.Render(w, r, reply)
}

func (h *handler) listVMs(w http.ResponseWriter, r *http.Request) {
	filter := summary.VMFilter{
		Query:      r.URL.Query().Get("q"),
		PowerState: r.URL.Query().Get("power"),
	}
	if err := h.validator.Struct(filter); err != nil {
		h.badRequest(w, r, err)
		return
	}

	vms := summary.FilterVMs(snapshotFrom(r.Context()).Summary, filter)
	_ = render.Render(w, r, VMListReply{Total: len(vms), VMs: vms})
}

func (h *handler) listClusters(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, ClusterListReply{Clusters: snapshotFrom(r.Context()).Summary.Clusters})
}

func (h *handler) getDensity(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, DensityReply{Buckets: summary.HostDensity(snapshotFrom(r.Context()).Summary)})
}

type drpQuery struct {
	Scenario int `validate:"scenario"`
}

func (h *handler) getDRP(w http.ResponseWriter, r *http.Request) {
	q := drpQuery{Scenario: 1}
	if raw := r.URL.Query().Get("scenario"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.badRequest(w, r, fmt.Errorf("scenario: %w", err))
			return
		}
		q.Scenario = n
	}
	if err := h.validator.Struct(q); err != nil {
		h.badRequest(w, r, err)
		return
	}

	scenario, _ := summary.ScenarioByID(q.Scenario)
	_ = render.Render(w, r, DRPReply{summary.SimulateDRP(snapshotFrom(r.Context()).Summary, scenario)})
}

type lifecycleQuery struct {
	Mode          string `validate:"omitempty,support_mode"`
	At            string `validate:"omitempty,iso_date"`
	WarningMonths int    `validate:"min=0,max=120"`
	Increment     int    `validate:"min=1,max=120"`
	Steps         int    `validate:"min=1,max=40"`
}

func (h *handler) parseLifecycleQuery(r *http.Request) (*lifecycle.Classifier, time.Time, lifecycleQuery, error) {
	values := r.URL.Query()
	q := lifecycleQuery{
		Mode:          values.Get("mode"),
		At:            values.Get("at"),
		WarningMonths: h.lifecycle.warningMonths,
		Increment:     h.lifecycle.incrementMonths,
		Steps:         h.lifecycle.steps,
	}
	for name, target := range map[string]*int{"warningMonths": &q.WarningMonths, "increment": &q.Increment, "steps": &q.Steps} {
		if raw := values.Get(name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, time.Time{}, q, validator.NewErrInvalidQuery("%s: %v", name, err)
			}
			*target = n
		}
	}
	if err := h.validator.Struct(q); err != nil {
		return nil, time.Time{}, q, err
	}

	mode := h.lifecycle.mode
	if q.Mode != "" {
		mode, _ = lifecycle.ParseMode(q.Mode)
	}
	at := time.Now().UTC()
	if q.At != "" {
		at, _ = time.Parse(dateLayout, q.At)
	}

	classifier := lifecycle.NewClassifier(h.table, lifecycle.Options{Mode: mode, WarningMonths: q.WarningMonths})
	return classifier, at, q, nil
}

func (h *handler) getLifecycle(w http.ResponseWriter, r *http.Request) {
	classifier, at, _, err := h.parseLifecycleQuery(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	assets := lifecycle.AssetsFromSummary(snapshotFrom(r.Context()).Summary)
	_ = render.Render(w, r, LifecycleReply{classifier.Report(assets, at)})
}

func (h *handler) getTimeline(w http.ResponseWriter, r *http.Request) {
	classifier, at, q, err := h.parseLifecycleQuery(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	assets := lifecycle.AssetsFromSummary(snapshotFrom(r.Context()).Summary)
	instants := lifecycle.ForecastInstants(at, q.Increment, q.Steps)
	_ = render.Render(w, r, TimelineReply{
		Mode:          classifier.Mode(),
		WarningMonths: classifier.WarningMonths(),
		Points:        classifier.Timeline(assets, instants),
	})
}

func (h *handler) ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.badRequest(w, r, fmt.Errorf("invalid multipart upload: %w", err))
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		h.badRequest(w, r, errors.New("no file provided"))
		return
	}
	if len(files) > h.maxFiles {
		h.badRequest(w, r, fmt.Errorf("at most %d files may be uploaded at once", h.maxFiles))
		return
	}

	sources := make([]rvtools.Source, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			h.badRequest(w, r, fmt.Errorf("reading %s: %w", fh.Filename, err))
			return
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			h.badRequest(w, r, fmt.Errorf("reading %s: %w", fh.Filename, err))
			return
		}
		sources = append(sources, rvtools.BytesSource(fh.Filename, content))
	}

	snap, err := h.state.Load(r.Context(), sources...)
	if err != nil {
		zap.S().Named("api_server").Warnf("ingestion rejected, keeping previous summary: %v", err)
		_ = render.Render(w, r, ErrorReply{HTTPStatus: http.StatusUnprocessableEntity, Message: err.Error()})
		return
	}

	_ = render.Render(w, r, IngestReply{
		SummaryID:   snap.ID.String(),
		TotalVMs:    snap.Summary.KPI.TotalVMs,
		Hosts:       snap.Summary.KPI.Hosts,
		Diagnostics: snap.Diagnostics,
	})
}

func (h *handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	_ = render.Render(w, r, ErrorReply{HTTPStatus: http.StatusBadRequest, Message: err.Error()})
}
