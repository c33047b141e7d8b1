package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultHealthInterval = 30 * time.Second

// ConnectionState is a snapshot of the last health check.
type ConnectionState struct {
	Connected     bool
	Checking      bool
	LastCheckedAt *time.Time
	LastError     string
}

type healthChecker interface {
	CheckHealth(ctx context.Context) bool
}

// Monitor polls the server's health on an interval and keeps the latest
// ConnectionState. State is replaced wholesale, never mutated in place.
type Monitor struct {
	checker  healthChecker
	interval time.Duration
	state    atomic.Pointer[ConnectionState]
	onChange func(ConnectionState)

	checkMu  sync.Mutex
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewMonitor(checker healthChecker, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	m := &Monitor{
		checker:  checker,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	m.state.Store(&ConnectionState{})
	return m
}

// OnChange registers a callback for every state update. Call before Start.
func (m *Monitor) OnChange(fn func(ConnectionState)) {
	m.onChange = fn
}

func (m *Monitor) State() ConnectionState {
	return *m.state.Load()
}

// Start checks once immediately and then on every tick until Stop is called
// or ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	go m.loop(ctx)
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// Done is closed once the polling loop has exited.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	m.CheckNow(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow runs one health check and returns the resulting state.
func (m *Monitor) CheckNow(ctx context.Context) ConnectionState {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	prev := m.State()
	checking := prev
	checking.Checking = true
	m.set(checking)

	ok := m.checker.CheckHealth(ctx)
	now := time.Now()

	next := ConnectionState{Connected: ok, LastCheckedAt: &now}
	if !ok {
		next.LastError = "Unable to connect to server"
	}
	m.set(next)
	return next
}

func (m *Monitor) set(s ConnectionState) {
	m.state.Store(&s)
	if m.onChange != nil {
		m.onChange(s)
	}
}
