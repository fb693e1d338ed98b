package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daniacca/herdsim/internal/herd"
)

func TestRunBuilder_Build(t *testing.T) {
	cfg := NewRun(40, 30).
		Infection(0.25).
		Duration(5).
		Mortality(0.05).
		Vaccinated(0.6).
		Neighborhood("von-neumann").
		Seed(1234).
		Build()

	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("Expected dimensions 40x30, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.InfectionProbability != 0.25 {
		t.Errorf("Expected infection probability 0.25, got %v", cfg.InfectionProbability)
	}
	if cfg.InfectiousDuration != 5 {
		t.Errorf("Expected infectious duration 5, got %d", cfg.InfectiousDuration)
	}
	if cfg.MortalityProbability != 0.05 {
		t.Errorf("Expected mortality probability 0.05, got %v", cfg.MortalityProbability)
	}
	if cfg.VaccinatedFraction != 0.6 {
		t.Errorf("Expected vaccinated fraction 0.6, got %v", cfg.VaccinatedFraction)
	}
	if cfg.Neighborhood != "von-neumann" {
		t.Errorf("Expected neighborhood 'von-neumann', got %q", cfg.Neighborhood)
	}
	if cfg.Seed != 1234 {
		t.Errorf("Expected seed 1234, got %d", cfg.Seed)
	}
}

func TestClient_CreateRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/run" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var cfg herd.RunConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			t.Errorf("Failed to decode config: %v", err)
		}
		if cfg.Width != 20 || cfg.InfectionProbability != 0.3 {
			t.Errorf("Config not forwarded: %+v", cfg)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "run-1",
			"counts": herd.Counts{Susceptible: 249, Infected: 1, Immune: 150},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.CreateRun(context.Background(), NewRun(20, 20).Infection(0.3).Duration(4))
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if resp.ID != "run-1" {
		t.Errorf("Expected run ID 'run-1', got %q", resp.ID)
	}
	if resp.Counts.Infected != 1 {
		t.Errorf("Expected 1 infected, got %d", resp.Counts.Infected)
	}
}

func TestClient_Tick(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run/run-1/tick" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("n"); got != "3" {
			t.Errorf("Expected n=3, got n=%s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(herd.Counts{Tick: 3, Susceptible: 240, Infected: 10})
	}))
	defer srv.Close()

	c := New(srv.URL)
	counts, err := c.Tick(context.Background(), "run-1", 3)
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if counts.Tick != 3 || counts.Infected != 10 {
		t.Errorf("Unexpected counts: %+v", counts)
	}
}

func TestClient_Tick_ClampsToOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("n"); got != "1" {
			t.Errorf("Expected n=1 for a non-positive tick count, got n=%s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(herd.Counts{Tick: 1})
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Tick(context.Background(), "run-1", 0); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
}

func TestClient_Counts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run/run-1/counts" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"counts": herd.Counts{Tick: 7, Immune: 250},
			"tick":   7,
			"over":   true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Counts(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if resp.Tick != 7 || !resp.Over {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestClient_Snapshot_RejectsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A 2x2 snapshot with only one cell fails validation client-side.
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(herd.Snapshot{
			RunID: "run-1", Width: 2, Height: 2,
			Cells: []herd.CellState{{Row: 0, Col: 0, State: herd.Susceptible}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Snapshot(context.Background(), "run-1"); err == nil {
		t.Error("Expected error for an incomplete snapshot")
	}
}

func TestClient_ListAndDelete(t *testing.T) {
	deleted := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/runs":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"runs": []string{"a", "b"}})
		case r.Method == http.MethodDelete && r.URL.Path == "/run/a":
			deleted = true
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	runs, err := c.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0] != "a" || runs[1] != "b" {
		t.Errorf("Unexpected runs: %v", runs)
	}

	if err := c.DeleteRun(context.Background(), "a"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if !deleted {
		t.Error("Expected DELETE request to reach the server")
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "run not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Counts(context.Background(), "no-such-run")
	if err == nil {
		t.Fatal("Expected error for a 404 response")
	}
}
