package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/daniacca/herdsim/internal/herd"
	herdnotifiers "github.com/daniacca/herdsim/internal/herd/notifiers"
)

// extractRunID extracts the run ID from a path like "/run/{id}/..." and
// returns it together with the remaining path.
func extractRunID(path string) (herd.RunID, string) {
	if !strings.HasPrefix(path, "/run/") {
		return "", ""
	}

	rest := path[len("/run/"):]
	idx := strings.Index(rest, "/")
	if idx == -1 {
		return herd.RunID(rest), ""
	}
	return herd.RunID(rest[:idx]), rest[idx:]
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("cannot encode response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /run
// Body: herd.RunConfig JSON. Creates a run and returns its ID and the
// initial counts.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cfg herd.RunConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid run config json: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, grid, err := s.manager.CreateRun(cfg)
	if err != nil {
		http.Error(w, "cannot create run: "+err.Error(), http.StatusBadRequest)
		return
	}
	grid.SetNotificationManager(s.notifierMgr, s.notifierIDs())

	s.logger.Infof("run created via API: run_id=%s", id)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":     id,
		"counts": grid.Counts(),
	})
}

// GET /runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": s.manager.ListRuns()})
}

// handleRunRoutes dispatches /run/{id} and /run/{id}/... requests.
func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	runID, rest := extractRunID(r.URL.Path)
	if runID == "" {
		http.Error(w, "run ID is required in path: /run/{id}", http.StatusBadRequest)
		return
	}

	grid, exists := s.manager.GetRun(runID)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	switch {
	case rest == "" && r.Method == http.MethodDelete:
		s.handleDeleteRun(w, runID)
	case rest == "/tick" && r.Method == http.MethodPost:
		s.handleTick(w, r, grid)
	case rest == "/counts" && r.Method == http.MethodGet:
		s.handleCounts(w, grid)
	case rest == "/snapshot" && r.Method == http.MethodGet:
		s.handleSnapshot(w, grid)
	case rest == "/history" && r.Method == http.MethodGet:
		s.handleHistory(w, grid)
	case rest == "/chart" && r.Method == http.MethodGet:
		s.handleChart(w, grid)
	case rest == "/start" && r.Method == http.MethodPost:
		s.handleStart(w, r, grid)
	case rest == "/stop" && r.Method == http.MethodPost:
		s.handleStop(w, grid)
	case rest == "/model" && r.Method == http.MethodPut:
		s.handleSetModel(w, r, grid)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, runID herd.RunID) {
	if err := s.manager.DeleteRun(runID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run deleted"))
}

// POST /run/{id}/tick?n=K
// Advances the run by K ticks (default 1) and returns the counts.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request, grid *herd.Grid) {
	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	var counts herd.Counts
	for i := 0; i < n; i++ {
		counts = grid.Step()
	}
	s.writeJSON(w, http.StatusOK, counts)
}

// GET /run/{id}/counts
func (s *Server) handleCounts(w http.ResponseWriter, grid *herd.Grid) {
	counts := grid.Counts()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"counts": counts,
		"tick":   grid.Tick(),
		"over":   counts.Over(),
	})
}

// GET /run/{id}/snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, grid *herd.Grid) {
	s.writeJSON(w, http.StatusOK, grid.Snapshot())
}

// GET /run/{id}/history
func (s *Server) handleHistory(w http.ResponseWriter, grid *herd.Grid) {
	s.writeJSON(w, http.StatusOK, map[string]any{"history": grid.History()})
}

// GET /run/{id}/chart
// Returns a PNG line chart of the counts history.
func (s *Server) handleChart(w http.ResponseWriter, grid *herd.Grid) {
	png, err := herd.RenderCountsChart(grid.History())
	if err != nil {
		http.Error(w, "cannot render chart: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// POST /run/{id}/start?interval-ms=K
// Starts the background ticker for the run.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, grid *herd.Grid) {
	interval := s.defaultTick
	if raw := r.URL.Query().Get("interval-ms"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "interval-ms must be a positive integer", http.StatusBadRequest)
			return
		}
		interval = time.Duration(parsed) * time.Millisecond
	}

	grid.Run(interval)
	s.logger.Infof("run started: run_id=%s interval=%s", grid.RunID(), interval)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run started"))
}

// POST /run/{id}/stop
func (s *Server) handleStop(w http.ResponseWriter, grid *herd.Grid) {
	grid.Stop()
	s.logger.Infof("run stopped: run_id=%s", grid.RunID())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run stopped"))
}

// PUT /run/{id}/model
// Body: herd.RunConfig JSON (the dimension and seed fields are ignored).
// Swaps the model read by subsequent ticks.
func (s *Server) handleSetModel(w http.ResponseWriter, r *http.Request, grid *herd.Grid) {
	defer r.Body.Close()

	var cfg herd.RunConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid model json: "+err.Error(), http.StatusBadRequest)
		return
	}

	model, err := cfg.Model()
	if err != nil {
		http.Error(w, "cannot build model: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := grid.SetModel(model); err != nil {
		http.Error(w, "invalid model: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Infof("model updated: run_id=%s", grid.RunID())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("model updated"))
}

// GET /ws
// Upgrades the connection and streams tick events for every run.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.wsNotifier.Upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}

	s.wsNotifier.RegisterClient(conn)
	s.logger.Debugf("websocket client connected: remote=%s", conn.RemoteAddr())

	// Drain the read side so we notice the client going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.wsNotifier.UnregisterClient(conn)
				return
			}
		}
	}()
}

// handleNotifiersRoutes handles webhook notifier management.
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.notifierMgr.ListNotifiers()

	notifiers := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.notifierMgr.GetNotifier(id)
		if exists {
			notifiers = append(notifiers, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"notifiers": notifiers})
}

// POST /notifiers
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier herd.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := herdnotifiers.NewWebhookNotifier(req.ID, url)

		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}
		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}
