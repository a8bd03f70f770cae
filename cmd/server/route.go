package main

import (
	"net/http"

	"github.com/matryer/way"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	URI_WS       = "/play"
	URI_METRICS  = "/metrics"
	URI_HEALTH   = "/healthz"
	URI_SESSIONS = "/sessions"
	URI_SNAPSHOT = "/sessions/:id/snapshot"
)

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_WS, s.SimulationServer.HandleHttpCall())
	s.router.HandleFunc("GET", URI_SESSIONS, s.SimulationServer.HandleSessions())
	s.router.HandleFunc("GET", URI_SNAPSHOT, s.SimulationServer.HandleSnapshot())
	s.router.Handle("GET", URI_METRICS, promhttp.Handler())
	s.router.HandleFunc("GET", URI_HEALTH, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
}
