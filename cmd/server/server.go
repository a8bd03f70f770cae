package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/contagion/server"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	router           *way.Router
	SimulationServer *server.SimulationServer
}

func main() {
	configPath := flag.String("config", os.Getenv("CONTAGION_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := server.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	server.ConfigureLogging(cfg)

	port := os.Getenv("PORT")
	if port != "" {
		cfg.Listen = ":" + port
		log.Printf("Using port %s from PORT", port)
	}

	var store *server.CheckpointStore
	if cfg.StorePath != "" {
		store, err = server.OpenCheckpointStore(cfg.StorePath)
		if err != nil {
			log.Fatalf("checkpoints: %v", err)
		}
	}

	s := Server{
		SimulationServer: server.NewSimulationServer(cfg, store),
	}
	s.routes()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.SimulationServer.Loop(ctx)
		return nil
	})
	g.Go(func() error {
		log.WithFields(log.Fields{
			"listen": cfg.Listen,
			"size":   cfg.Simulation.GridSize,
			"frames": cfg.Frames,
		}).Info("listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if store != nil {
		if cerr := store.Close(); cerr != nil {
			log.Warnf("checkpoints close: %v", cerr)
		}
	}
	if err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	log.Info("bye")
}
