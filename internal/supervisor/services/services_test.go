// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*HubService)(nil)
	_ suture.Service = (*StoreGCService)(nil)
)

type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stop        chan struct{}
	once        sync.Once
	shutdowns   atomic.Int32
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.once.Do(func() { close(f.stop) })
	return f.shutdownErr
}

func serveAsync(ctx context.Context, svc suture.Service) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	return errCh
}

func receive(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	t.Parallel()
	for _, d := range []time.Duration{0, -time.Second} {
		if got := NewHTTPServerService(newFakeHTTPServer(), d).shutdownTimeout; got != defaultShutdownTimeout {
			t.Errorf("timeout %v -> %v, want %v", d, got, defaultShutdownTimeout)
		}
	}
	if got := NewHTTPServerService(newFakeHTTPServer(), time.Second).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown on cancel", func(t *testing.T) {
		t.Parallel()
		srv := newFakeHTTPServer()
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(ctx, NewHTTPServerService(srv, time.Second))
		<-srv.started
		cancel()

		if err := receive(t, errCh); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if srv.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times", srv.shutdowns.Load())
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		t.Parallel()
		bindErr := errors.New("bind: address already in use")
		srv := newFakeHTTPServer()
		srv.listenErr = bindErr

		err := NewHTTPServerService(srv, time.Second).Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("Serve() = %v, want %v", err, bindErr)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		t.Parallel()
		shutdownErr := errors.New("connections still open")
		srv := newFakeHTTPServer()
		srv.shutdownErr = shutdownErr
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(ctx, NewHTTPServerService(srv, time.Second))
		<-srv.started
		cancel()

		if err := receive(t, errCh); !errors.Is(err, shutdownErr) {
			t.Errorf("Serve() = %v, want %v", err, shutdownErr)
		}
	})

	t.Run("real server", func(t *testing.T) {
		t.Parallel()
		srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(ctx, NewHTTPServerService(srv, time.Second))
		time.Sleep(20 * time.Millisecond)
		cancel()
		if err := receive(t, errCh); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	})
}

type fakeHub struct{ runs atomic.Int32 }

func (h *fakeHub) RunWithContext(ctx context.Context) error {
	h.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestHubService(t *testing.T) {
	t.Parallel()
	hub := &fakeHub{}
	svc := NewHubService(hub)
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(ctx, svc)
	cancel()
	if err := receive(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
	if hub.runs.Load() != 1 {
		t.Errorf("RunWithContext called %d times", hub.runs.Load())
	}
}

type fakeGC struct {
	mu     sync.Mutex
	ratios []float64
	err    error
}

func (g *fakeGC) RunGC(ratio float64) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ratios = append(g.ratios, ratio)
	return 1, g.err
}

func (g *fakeGC) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ratios)
}

func TestStoreGCService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"errors keep the service running", errors.New("gc failed")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gc := &fakeGC{err: tt.err}
			svc := NewStoreGCService(gc, 5*time.Millisecond, 0.5)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := serveAsync(ctx, svc)

			deadline := time.Now().Add(2 * time.Second)
			for gc.calls() < 2 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			cancel()

			if err := receive(t, errCh); !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
			if gc.calls() < 2 {
				t.Fatalf("RunGC called %d times, want >= 2", gc.calls())
			}
			if gc.ratios[0] != 0.5 {
				t.Errorf("ratio = %v, want 0.5", gc.ratios[0])
			}
		})
	}

	if got := NewStoreGCService(&fakeGC{}, 0, 0.5).interval; got != 10*time.Minute {
		t.Errorf("default interval = %v", got)
	}
}
