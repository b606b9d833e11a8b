package orchestrator

import (
	"context"
	"net"
	"sync"

	"github.com/stretchr/testify/mock"
)

type mockDatabase struct {
	mock.Mock
}

func (m *mockDatabase) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockDatabase) Stop(ctx context.Context) {
	m.Called(ctx)
}

func (m *mockDatabase) Probe(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockDatabase) Initialized() bool {
	return m.Called().Bool(0)
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBackend) Stop(ctx context.Context) {
	m.Called(ctx)
}

func (m *mockBackend) Probe(ctx context.Context, apiBaseURL string) bool {
	return m.Called(ctx, apiBaseURL).Bool(0)
}

// listenerService holds a real TCP listener while "running".
type listenerService struct {
	mu     sync.Mutex
	ln     net.Listener
	port   int
	starts int
}

func newListenerService() (*listenerService, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return &listenerService{port: port}, nil
}

func (s *listenerService) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", itoa(s.port)))
	if err != nil {
		return err
	}
	s.ln = ln
	s.starts++
	return nil
}

func (s *listenerService) Stop(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		s.ln.Close()
		s.ln = nil
	}
}

func (s *listenerService) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln != nil
}

type fakeDatabase struct{ *listenerService }

func (d fakeDatabase) Probe(context.Context) bool { return d.running() }
func (d fakeDatabase) Initialized() bool          { return true }

type fakeBackend struct{ *listenerService }

func (b fakeBackend) Probe(context.Context, string) bool { return b.running() }
