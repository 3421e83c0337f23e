package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

type scriptedService struct {
	name   string
	runErr error

	mu      sync.Mutex
	stopped bool
}

func (s *scriptedService) Name() string { return s.name }

func (s *scriptedService) Start(ctx context.Context) error {
	if s.runErr != nil {
		return s.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *scriptedService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *scriptedService) wasStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func TestRunnerRequiresServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatal("an empty runner should refuse to run")
	}
}

func TestRunnerFailureStopsEveryService(t *testing.T) {
	boom := errors.New("worker crashed")
	healthy := &scriptedService{name: "api"}
	failing := &scriptedService{name: "worker", runErr: boom}

	err := NewRunner(healthy, failing).Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the service error, got %v", err)
	}
	if !healthy.wasStopped() || !failing.wasStopped() {
		t.Fatal("every service should be stopped once one of them fails")
	}
}

func TestRunnerReturnsNilOnContextCancel(t *testing.T) {
	svc := &scriptedService{name: "api"}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancellation is a clean shutdown, got %v", err)
	}
	if !svc.wasStopped() {
		t.Fatal("service should be stopped on shutdown")
	}
}

func TestHTTPServiceGracefulStop(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:0", http.NewServeMux())

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Start(context.Background())
	}()
	time.Sleep(50 * time.Millisecond)

	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("graceful shutdown should not surface an error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never exited after Stop")
	}
}
