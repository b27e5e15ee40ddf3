package main

import (
	"context"
	"time"

	"github.com/Opentrons/OpenTrons/pkg/engine"
	"github.com/Opentrons/OpenTrons/pkg/metrics"
)

// metricsEndpoint serves the planner metrics of every case in a run from
// one shared recorder. A nil endpoint records nothing.
type metricsEndpoint struct {
	recorder *metrics.Recorder
	server   *metrics.Server
}

// startMetrics starts serving on addr. An empty addr disables the endpoint.
func startMetrics(addr string) (*metricsEndpoint, error) {
	if addr == "" {
		return nil, nil
	}
	recorder := metrics.New(nil)
	server := metrics.NewServer(recorder, addr)
	if err := server.Start(); err != nil {
		return nil, err
	}
	return &metricsEndpoint{recorder: recorder, server: server}, nil
}

func (m *metricsEndpoint) options() []engine.Option {
	if m == nil {
		return nil
	}
	return []engine.Option{engine.WithMetrics(m.recorder)}
}

// stop keeps serving for linger so the run can be scraped, then shuts the
// server down. It returns early if the server fails.
func (m *metricsEndpoint) stop(linger time.Duration) error {
	if m == nil {
		return nil
	}
	if linger > 0 {
		logger.Info("serving metrics on %s for %s", m.server.Address(), linger)
		select {
		case err := <-m.server.Done():
			return err
		case <-time.After(linger):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.server.Shutdown(ctx); err != nil {
		return err
	}
	return <-m.server.Done()
}
