// Package stub serves an in-memory irrigation backend for local development.
// It implements the same five endpoints the client consumes, plus /metrics.
package stub

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/furrow/internal/irrigation"
)

// Options configure a stub Server. Zero values use the sample data set.
type Options struct {
	Prefix   string
	Fields   []irrigation.Field
	Readings irrigation.SensorReadings
	Registry *prometheus.Registry
}

// Server holds the stub backend's state.
type Server struct {
	mu         sync.Mutex
	fields     []irrigation.Field
	readings   irrigation.SensorReadings
	irrigating bool

	prefix   string
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// New builds a Server.
func New(opts Options) *Server {
	fields := opts.Fields
	if fields == nil {
		fields = SampleFields()
	}
	readings := opts.Readings
	if readings == nil {
		readings = SampleReadings()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "furrow_stub",
		Name:      "requests_total",
		Help:      "Requests served by the stub backend, by route and status code.",
	}, []string{"route", "code"})
	reg.MustRegister(requests)

	return &Server{
		fields:   append([]irrigation.Field(nil), fields...),
		readings: readings,
		prefix:   "/" + strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		registry: reg,
		requests: requests,
	}
}

// Handler returns the router serving every endpoint.
func (s *Server) Handler() http.Handler {
	root := mux.NewRouter()
	root.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Routes live on the root router so a wrong verb is answered with 405.
	base := strings.TrimSuffix(s.prefix, "/")
	root.Handle(base+"/fields", s.instrument("fields", s.listFields)).Methods(http.MethodGet)
	root.Handle(base+"/fields/{id:[0-9]+}", s.instrument("field", s.getField)).Methods(http.MethodGet)
	root.Handle(base+"/sensors", s.instrument("sensors", s.listSensors)).Methods(http.MethodGet)
	root.Handle(base+"/irrigation/start", s.instrument("irrigation_start", s.startIrrigation)).Methods(http.MethodPost)
	root.Handle(base+"/irrigation/stop", s.instrument("irrigation_stop", s.stopIrrigation)).Methods(http.MethodPost)
	return root
}

// Irrigating reports whether irrigation is currently on.
func (s *Server) Irrigating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.irrigating
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	counter := s.requests.MustCurryWith(prometheus.Labels{"route": route})
	return promhttp.InstrumentHandlerCounter(counter, h)
}

func (s *Server) listFields(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	fields := append([]irrigation.Field{}, s.fields...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, fields)
}

func (s *Server) getField(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "invalid field id"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		if f.ID == id {
			writeJSON(w, http.StatusOK, f)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, detail{Detail: "field not found"})
}

func (s *Server) listSensors(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	readings := s.readings
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, readings)
}

func (s *Server) startIrrigation(w http.ResponseWriter, r *http.Request) {
	if !decodeEmptyObject(w, r) {
		return
	}
	s.mu.Lock()
	already := s.irrigating
	s.irrigating = true
	s.mu.Unlock()

	resp := irrigation.IrrigationStatus{Status: "started"}
	if already {
		resp.Message = "irrigation already running"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) stopIrrigation(w http.ResponseWriter, r *http.Request) {
	if !decodeEmptyObject(w, r) {
		return
	}
	s.mu.Lock()
	was := s.irrigating
	s.irrigating = false
	s.mu.Unlock()

	resp := irrigation.IrrigationStatus{Status: "stopped"}
	if !was {
		resp.Message = "irrigation was not running"
	}
	writeJSON(w, http.StatusOK, resp)
}

type detail struct {
	Detail string `json:"detail"`
}

// decodeEmptyObject accepts an empty body or any JSON object.
func decodeEmptyObject(w http.ResponseWriter, r *http.Request) bool {
	if r.ContentLength == 0 {
		return true
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "body must be a JSON object"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
