package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/veles-dev/go-dlog/core"
)

// PoolSnapshotProvider provides current pool stats snapshots.
// *core.WorkerPool satisfies it.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports pool Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolQueued    *prom.GaugeVec
	poolActive    *prom.GaugeVec
	poolWorkers   *prom.GaugeVec
	poolTarget    *prom.GaugeVec
	poolReceived  *prom.GaugeVec
	poolCompleted *prom.GaugeVec
	poolAborted   *prom.GaugeVec
	poolPaused    *prom.GaugeVec
	poolStopping  *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dlog",
		Name:      "pool_queued",
		Help:      "Queued tasks per pool.",
	}, []string{"pool"})
	poolActive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dlog",
		Name:      "pool_active",
		Help:      "Tasks currently assigned to a worker per pool.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dlog",
		Name:      "pool_workers",
		Help:      "Running worker count per pool.",
	}, []string{"pool"})
	poolTarget := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dlog",
		Name:      "pool_target_workers",
		Help:      "Target worker count per pool.",
	}, []string{"pool"})
	poolReceived := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dlog",
		Name:      "pool_received_total",
		Help:      "Accepted submission count snapshot.",
	}, []string{"pool"})
	poolCompleted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dlog",
		Name:      "pool_completed_total",
		Help:      "Completed task count snapshot.",
	}, []string{"pool"})
	poolAborted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dlog",
		Name:      "pool_aborted_total",
		Help:      "Aborted task count snapshot.",
	}, []string{"pool"})
	poolPaused := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dlog",
		Name:      "pool_paused",
		Help:      "Pool paused state (1=paused, 0=running).",
	}, []string{"pool"})
	poolStopping := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "dlog",
		Name:      "pool_stopping",
		Help:      "Pool stopping state (1=stopping, 0=accepting).",
	}, []string{"pool"})

	var err error
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolActive, err = registerCollector(reg, poolActive); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolTarget, err = registerCollector(reg, poolTarget); err != nil {
		return nil, err
	}
	if poolReceived, err = registerCollector(reg, poolReceived); err != nil {
		return nil, err
	}
	if poolCompleted, err = registerCollector(reg, poolCompleted); err != nil {
		return nil, err
	}
	if poolAborted, err = registerCollector(reg, poolAborted); err != nil {
		return nil, err
	}
	if poolPaused, err = registerCollector(reg, poolPaused); err != nil {
		return nil, err
	}
	if poolStopping, err = registerCollector(reg, poolStopping); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:      interval,
		pools:         make(map[string]PoolSnapshotProvider),
		poolQueued:    poolQueued,
		poolActive:    poolActive,
		poolWorkers:   poolWorkers,
		poolTarget:    poolTarget,
		poolReceived:  poolReceived,
		poolCompleted: poolCompleted,
		poolAborted:   poolAborted,
		poolPaused:    poolPaused,
		poolStopping:  poolStopping,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		p.poolTarget.WithLabelValues(name).Set(float64(stats.Target))
		p.poolReceived.WithLabelValues(name).Set(float64(stats.Received))
		p.poolCompleted.WithLabelValues(name).Set(float64(stats.Completed))
		p.poolAborted.WithLabelValues(name).Set(float64(stats.Aborted))
		p.poolPaused.WithLabelValues(name).Set(boolGauge(stats.Paused))
		p.poolStopping.WithLabelValues(name).Set(boolGauge(stats.Stopping))
	}
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
