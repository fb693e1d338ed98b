package main

import (
	"time"

	"github.com/daniacca/herdsim/internal/herd"
	"github.com/daniacca/herdsim/internal/herd/notifiers"
)

// herdLoggerAdapter adapts the server's Logger to the herd.Logger interface.
type herdLoggerAdapter struct {
	logger *Logger
}

func (a *herdLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *herdLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *herdLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *herdLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

// Server is the HTTP driver around the simulation engine. It owns the run
// manager, the notification fan-out and the default websocket stream.
type Server struct {
	manager      *herd.RunManager
	notifierMgr  *herd.NotificationManager
	wsNotifier   *notifiers.WebSocketNotifier
	defaultTick  time.Duration
	logger       *Logger
}

// NewServer creates a server instance. A websocket notifier with ID "ws" is
// registered up front; every run created through the API streams its tick
// events there.
func NewServer(logger *Logger) *Server {
	herdLogger := &herdLoggerAdapter{logger: logger}

	notifierMgr := herd.NewNotificationManagerWithLogger(herdLogger)
	ws := notifiers.NewWebSocketNotifier("ws")
	if err := notifierMgr.RegisterNotifier(ws); err != nil {
		logger.Fatalf("cannot register websocket notifier: %v", err)
	}

	return &Server{
		manager:     herd.NewRunManagerWithLogger(herdLogger),
		notifierMgr: notifierMgr,
		wsNotifier:  ws,
		defaultTick: 250 * time.Millisecond,
		logger:      logger,
	}
}

// SetDefaultTickInterval sets the interval used by /run/{id}/start when the
// request does not specify one.
func (s *Server) SetDefaultTickInterval(d time.Duration) {
	if d > 0 {
		s.defaultTick = d
	}
}

// notifierIDs returns the notifier set wired to newly created runs.
func (s *Server) notifierIDs() []string {
	return s.notifierMgr.ListNotifiers()
}

// Close shuts down the notification pipeline.
func (s *Server) Close() error {
	return s.notifierMgr.Close()
}
