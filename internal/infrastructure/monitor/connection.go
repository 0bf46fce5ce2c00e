package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CheckFunc probes one dependency; a nil error means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name string
	fn   CheckFunc
}

// Monitor runs registered health checks on a cron schedule and caches the
// latest result for cheap reads from request handlers.
type Monitor struct {
	checks  []check
	timeout time.Duration

	status Status
	mu     sync.RWMutex

	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		timeout:  3 * time.Second,
		interval: interval,
		logger:   logger,
		status:   Status{Components: map[string]bool{}},
	}
}

// Register adds a named check. Call before Start.
func (m *Monitor) Register(name string, fn CheckFunc) {
	if fn == nil {
		return
	}
	m.checks = append(m.checks, check{name: name, fn: fn})
}

// Start runs the checks once synchronously and then on every interval.
func (m *Monitor) Start() error {
	m.Refresh(context.Background())

	m.cron = cron.New()
	schedule := "@every " + m.interval.String()
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (m *Monitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}

// IsOnline reports whether every registered check last passed.
func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	components := make(map[string]bool, len(m.status.Components))
	for k, v := range m.status.Components {
		components[k] = v
	}
	return Status{Components: components, LastCheck: m.status.LastCheck}
}

// Refresh runs every check now and records the outcome.
func (m *Monitor) Refresh(ctx context.Context) {
	components := make(map[string]bool, len(m.checks))
	for _, c := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := c.fn(checkCtx)
		cancel()

		components[c.name] = err == nil
		if err != nil {
			m.logger.Warn("health check failed", zap.String("component", c.name), zap.Error(err))
		}
	}

	m.mu.Lock()
	previous := m.status.Components
	m.status = Status{Components: components, LastCheck: time.Now().UTC()}
	m.mu.Unlock()

	for _, name := range changed(previous, components) {
		m.logger.Info("component health changed", zap.String("component", name), zap.Bool("healthy", components[name]))
	}
}

func changed(before, after map[string]bool) []string {
	var names []string
	for name, ok := range after {
		if prev, seen := before[name]; seen && prev != ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
