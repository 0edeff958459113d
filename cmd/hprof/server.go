package main

import (
	"net/http"
	"strconv"

	"github.com/CAFxX/httpcompression"
	"github.com/getsentry/sentry-go"
	"github.com/julienschmidt/httprouter"

	"github.com/getsentry/hprof/internal/aggregate"
	"github.com/getsentry/hprof/internal/hprof"
	"github.com/getsentry/hprof/internal/httputil"
	"github.com/getsentry/hprof/internal/metrics"
	"github.com/getsentry/hprof/internal/pprofutil"
	"github.com/getsentry/hprof/internal/speedscope"
)

const (
	maxUniqueRegions = 100
	maxNumOfExamples = 5
)

type profilerSummary struct {
	Label  string `json:"label"`
	Frames uint64 `json:"frames"`
}

func (e *environment) newRouter() (*httprouter.Router, error) {
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodGet, "/health", e.getHealth},
		{http.MethodGet, "/profilers", e.getProfilers},
		{http.MethodGet, "/profilers/:label/timing", e.getTiming},
		{http.MethodGet, "/profilers/:label/report", e.getReport},
		{http.MethodGet, "/profilers/:label/speedscope", e.getSpeedscope},
		{http.MethodGet, "/profilers/:label/pprof", e.getPprof},
		{http.MethodGet, "/aggregate", e.getAggregate},
		{http.MethodGet, "/metrics", e.getMetrics},
	}

	router := httprouter.New()

	for _, route := range routes {
		router.Handler(route.method, route.path, compress(route.handler))
	}

	return router, nil
}

func (e *environment) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (e *environment) getProfilers(w http.ResponseWriter, r *http.Request) {
	profilers := e.registry.Profilers()
	summaries := make([]profilerSummary, 0, len(profilers))
	for _, p := range profilers {
		summaries = append(summaries, profilerSummary{Label: p.Label(), Frames: p.Frames()})
	}
	httputil.WriteJSON(w, r, summaries)
}

// lastReport writes a 404 and returns false when the profiler is unknown or
// has not completed a frame yet.
func (e *environment) lastReport(w http.ResponseWriter, r *http.Request) (*hprof.Report, bool) {
	label := httprouter.ParamsFromContext(r.Context()).ByName("label")
	p, ok := e.registry.Lookup(label)
	if !ok {
		http.Error(w, "unknown profiler "+strconv.Quote(label), http.StatusNotFound)
		return nil, false
	}
	report, err := p.Report()
	if err != nil {
		http.Error(w, "no completed frame yet", http.StatusNotFound)
		return nil, false
	}
	return report, true
}

func (e *environment) getTiming(w http.ResponseWriter, r *http.Request) {
	report, ok := e.lastReport(w, r)
	if !ok {
		return
	}
	httputil.WriteText(w, report.Text())
}

func (e *environment) getReport(w http.ResponseWriter, r *http.Request) {
	report, ok := e.lastReport(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, r, report)
}

func (e *environment) getSpeedscope(w http.ResponseWriter, r *http.Request) {
	report, ok := e.lastReport(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, r, speedscope.FromReports(report.Label, report))
}

func (e *environment) getPprof(w http.ResponseWriter, r *http.Request) {
	report, ok := e.lastReport(w, r)
	if !ok {
		return
	}
	p, err := pprofutil.FromReport(report)
	if err != nil {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Label+`.pb.gz"`)
	if err := p.Write(w); err != nil {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
	}
}

func (e *environment) getAggregate(w http.ResponseWriter, r *http.Request) {
	merged := aggregate.MergeReports("all profilers", e.registry.Reports()...)
	if r.URL.Query().Get("format") == "text" {
		httputil.WriteText(w, merged.Text())
		return
	}
	httputil.WriteJSON(w, r, merged)
}

func (e *environment) getMetrics(w http.ResponseWriter, r *http.Request) {
	ma := metrics.NewAggregator(maxUniqueRegions, maxNumOfExamples)
	for _, report := range e.registry.Reports() {
		ma.AddReport(report, report.Label+"#"+strconv.FormatUint(report.Frame, 10))
	}
	httputil.WriteJSON(w, r, ma.ToMetrics())
}
