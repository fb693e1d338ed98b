package main

import (
	"net/http"
	"time"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	srv := NewServer(logger)
	defer srv.Close()
	srv.SetDefaultTickInterval(time.Duration(cfg.TickIntervalMS) * time.Millisecond)

	// Optionally create a run at startup from a config file.
	if cfg.RunConfigFile != "" {
		runCfg, err := loadRunConfigFromFile(cfg.RunConfigFile)
		if err != nil {
			logger.Fatalf("cannot load run config from %s: %v", cfg.RunConfigFile, err)
		}
		id, grid, err := srv.manager.CreateRun(runCfg)
		if err != nil {
			logger.Fatalf("cannot create initial run: %v", err)
		}
		grid.SetNotificationManager(srv.notifierMgr, srv.notifierIDs())
		logger.Infof("initial run created: run_id=%s size=%dx%d", id, grid.Width(), grid.Height())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/run", srv.handleCreateRun)
	mux.HandleFunc("/runs", srv.handleListRuns)
	mux.HandleFunc("/run/", srv.handleRunRoutes)
	mux.HandleFunc("/notifiers", srv.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", srv.handleNotifiersRoutes)
	mux.HandleFunc("/ws", srv.handleWebSocket)

	logger.Infof("herdsim-server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
