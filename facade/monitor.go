package facade

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/accelbridge/bridge"
)

// Monitor periodically samples memory pressure and applies the optimization
// policy, invoking a reclaim pass when the policy asks for one. It is the
// bridge's optional auto-optimize loop; disabled deployments never start it.
type Monitor struct {
	facade   *Facade
	interval time.Duration
	logger   *zap.SugaredLogger

	mu         sync.RWMutex
	thresholds bridge.PolicyThresholds

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor builds a monitor over the facade. interval is the sampling
// period; thresholds drive the policy decision per sample.
func NewMonitor(f *Facade, thresholds bridge.PolicyThresholds, interval time.Duration, logger *zap.SugaredLogger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		facade:     f,
		interval:   interval,
		logger:     logger,
		thresholds: thresholds,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetThresholds replaces the policy cut-offs (config hot-reload).
func (m *Monitor) SetThresholds(t bridge.PolicyThresholds) {
	m.mu.Lock()
	m.thresholds = t
	m.mu.Unlock()
}

// Start launches the sampling loop.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.loop()
	m.logger.Infow("Auto-optimize monitor started", "interval", m.interval)
}

// Stop terminates the loop and waits for it to drain.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample takes one pressure reading and reclaims if the policy says so.
func (m *Monitor) sample() {
	snap := m.facade.GetMemoryInfo(m.ctx)
	if snap.Error != "" {
		return
	}

	m.mu.RLock()
	thresholds := m.thresholds
	m.mu.RUnlock()

	level, emergency := thresholds.Evaluate(snap.PercentUsed)
	if level == bridge.LevelNone {
		return
	}

	outcome := m.facade.OptimizeMemory(m.ctx, level, emergency)
	m.logger.Infow("Auto-optimize pass",
		"pressure_pct", snap.PercentUsed,
		"level", level.String(),
		"emergency", emergency,
		"freed_bytes", outcome.FreedMemory,
		"success", outcome.Success)
}
