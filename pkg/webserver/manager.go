package webserver

import (
	"context"
	"encoding/json"
	"f1strategybot/pkg/chart"
	"f1strategybot/pkg/metrics"
	"f1strategybot/pkg/simulator"
	"f1strategybot/pkg/strategy"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{} // use default options

const (
	mtLap    = "lap"
	mtResult = "result"

	metricsSource = "http"
)

type Message struct {
	MessageType string `json:"type"`
	Body        any    `json:"body,omitempty"`
}

type scenarioView struct {
	strategy.Scenario
	PlannedLaps int `json:"plannedLaps"`
}

type resultView struct {
	Scenario strategy.Scenario `json:"scenario"`
	Result   simulator.Result  `json:"result"`
}

type Manager struct {
	r         *mux.Router
	sim       *simulator.Simulator
	scenarios strategy.Scenarios
	totalLaps int
	logger    zerolog.Logger
}

func NewManager(sim *simulator.Simulator, scenarios strategy.Scenarios, totalLaps int, logger zerolog.Logger) *Manager {
	m := &Manager{
		r:         mux.NewRouter(),
		sim:       sim,
		scenarios: scenarios,
		totalLaps: totalLaps,
		logger:    logger.With().Str("component", "webserver").Logger(),
	}

	m.rootHandlers()
	return m
}

func (m *Manager) Handler() http.Handler {
	return m.r
}

func (m *Manager) rootHandlers() {
	m.r.Use(metrics.Middleware)
	m.r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	m.r.HandleFunc("/scenarios", m.listScenarios).Methods(http.MethodGet)
	m.r.HandleFunc("/compare", m.compare).Methods(http.MethodGet)
	m.r.HandleFunc("/simulate", m.simulateCustom).Methods(http.MethodGet)

	sr := m.r.PathPrefix("/scenarios/{id}").Subrouter()
	sr.HandleFunc("/result", m.scenarioResult).Methods(http.MethodGet)
	sr.HandleFunc("/chart.{format:png|svg}", m.scenarioChart).Methods(http.MethodGet)
	sr.HandleFunc("/laps", m.scenarioLaps).Methods(http.MethodGet)
}

// Serve blocks until ctx is done and then shuts the server down.
func (m *Manager) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.r,
	}

	errChan := make(chan error, 1)
	go func() {
		m.logger.Info().Str("addr", addr).Msg("webserver listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return errors.Wrap(err, "webserver")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	m.logger.Info().Msg("webserver shutting down")
	return srv.Shutdown(shutdownCtx)
}

// runParams reads the optional policy and laps query parameters.
func (m *Manager) runParams(r *http.Request) (*simulator.Simulator, int, error) {
	q := r.URL.Query()
	sim := m.sim
	if p := q.Get("policy"); p != "" {
		policy, err := simulator.ParsePolicy(p)
		if err != nil {
			return nil, 0, err
		}
		sim = sim.With(simulator.WithPolicy(policy))
	}
	laps := m.totalLaps
	if l := q.Get("laps"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			return nil, 0, errors.Errorf("invalid laps %q", l)
		}
		laps = n
	}
	return sim, laps, nil
}

func (m *Manager) scenario(w http.ResponseWriter, r *http.Request) (strategy.Scenario, bool) {
	id := mux.Vars(r)["id"]
	sc, ok := m.scenarios.GetByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("unknown scenario %q", id))
	}
	return sc, ok
}

func (m *Manager) listScenarios(w http.ResponseWriter, r *http.Request) {
	views := make([]scenarioView, len(m.scenarios))
	for i, sc := range m.scenarios {
		views[i] = scenarioView{Scenario: sc, PlannedLaps: sc.Strategy.PlannedLaps()}
	}
	writeJSON(w, http.StatusOK, views)
}

func (m *Manager) scenarioResult(w http.ResponseWriter, r *http.Request) {
	sc, ok := m.scenario(w, r)
	if !ok {
		return
	}
	sim, laps, err := m.runParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if r.URL.Query().Get("trace") == "1" {
		sim = sim.With(simulator.WithLapTrace(true))
	}
	res, err := sim.Simulate(sc.Strategy, laps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	metrics.ObserveResult(metricsSource, res)
	writeJSON(w, http.StatusOK, resultView{Scenario: sc, Result: res})
}

func (m *Manager) simulateCustom(w http.ResponseWriter, r *http.Request) {
	s, err := strategy.Parse(r.URL.Query().Get("stints"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sim, laps, err := m.runParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := sim.Simulate(s, laps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	metrics.ObserveResult(metricsSource, res)
	sc := strategy.Scenario{ID: "custom", Name: s.Name(), Strategy: s}
	writeJSON(w, http.StatusOK, resultView{Scenario: sc, Result: res})
}

func (m *Manager) compare(w http.ResponseWriter, r *http.Request) {
	sim, laps, err := m.runParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := sim.Compare(r.Context(), m.scenarios, laps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	views := make([]resultView, len(results))
	for i := range results {
		metrics.ObserveResult(metricsSource, results[i])
		views[i] = resultView{Scenario: m.scenarios[i], Result: results[i]}
	}
	writeJSON(w, http.StatusOK, views)
}

func (m *Manager) scenarioChart(w http.ResponseWriter, r *http.Request) {
	sc, ok := m.scenario(w, r)
	if !ok {
		return
	}
	sim, laps, err := m.runParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := sim.With(simulator.WithLapTrace(true)).Simulate(sc.Strategy, laps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	metrics.ObserveResult(metricsSource, res)
	if len(res.Laps) == 0 {
		writeError(w, http.StatusBadRequest, chart.ErrNoLapTrace)
		return
	}

	if mux.Vars(r)["format"] == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
		err = chart.SVG(w, res, sim.Table())
	} else {
		w.Header().Set("Content-Type", "image/png")
		err = chart.PNG(w, res, sim.Table())
	}
	if err != nil {
		m.logger.Error().Err(err).Str("scenario", sc.ID).Msg("rendering chart")
	}
}

// scenarioLaps streams the lap trace over a websocket, one lap per message,
// and closes with the result. The optional interval query parameter sets the
// delay between laps in milliseconds.
func (m *Manager) scenarioLaps(w http.ResponseWriter, r *http.Request) {
	sc, ok := m.scenario(w, r)
	if !ok {
		return
	}
	sim, laps, err := m.runParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	interval := time.Duration(0)
	if v := r.URL.Query().Get("interval"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			writeError(w, http.StatusBadRequest, errors.Errorf("invalid interval %q", v))
			return
		}
		interval = time.Duration(ms) * time.Millisecond
	}
	res, err := sim.With(simulator.WithLapTrace(true)).Simulate(sc.Strategy, laps)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	metrics.ObserveResult(metricsSource, res)

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Error().Err(err).Msg("upgrading websocket")
		return
	}
	defer c.Close()

	for _, lap := range res.Laps {
		if err := c.WriteJSON(Message{MessageType: mtLap, Body: lap}); err != nil {
			m.logger.Debug().Err(err).Str("scenario", sc.ID).Msg("websocket closed by peer")
			return
		}
		if interval > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(interval):
			}
		}
	}
	res.Laps = nil
	if err := c.WriteJSON(Message{MessageType: mtResult, Body: res}); err != nil {
		m.logger.Debug().Err(err).Str("scenario", sc.ID).Msg("websocket closed by peer")
		return
	}
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
