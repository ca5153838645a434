package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// RotationStats aggregates the operator-facing metrics of the engine.
// Provisioning failures are surfaced here rather than to participants, who
// only ever see a "waiting for next match" state.
type RotationStats struct {
	RoundsAdvanced       uint64  `json:"rounds_advanced"`
	PairsAllocated       uint64  `json:"pairs_allocated"`
	ProvisioningFailures uint64  `json:"provisioning_failures"`
	Disconnects          uint64  `json:"disconnects"`
	CompletedEvents      uint64  `json:"completed_events"`
	OpenRooms            int     `json:"open_rooms"`
	PoolIdle             int     `json:"pool_idle"`
	AllocMemMb           uint64  `json:"alloc_mem_mb"`
	NumGC                uint32  `json:"num_gc"`
	CPUPercent           float64 `json:"cpu_percent"`
	RSSBytes             uint64  `json:"rss_bytes"`
	PidStatus            string  `json:"pid_status"`
}

// MonitoringManager collects counters from the hot path with atomics and
// folds them into a consistent snapshot for the telemetry worker and viewer.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats RotationStats

	roundsAdvanced       uint64
	pairsAllocated       uint64
	provisioningFailures uint64
	disconnects          uint64
	completedEvents      uint64

	LastCheck time.Time
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, LastCheck: time.Now()}
}

func (mm *MonitoringManager) IncrRoundsAdvanced()       { atomic.AddUint64(&mm.roundsAdvanced, 1) }
func (mm *MonitoringManager) IncrPairsAllocated()       { atomic.AddUint64(&mm.pairsAllocated, 1) }
func (mm *MonitoringManager) IncrProvisioningFailures() { atomic.AddUint64(&mm.provisioningFailures, 1) }
func (mm *MonitoringManager) IncrDisconnects()          { atomic.AddUint64(&mm.disconnects, 1) }
func (mm *MonitoringManager) IncrCompletedEvents()      { atomic.AddUint64(&mm.completedEvents, 1) }

// Refresh folds the atomic counters and gauges into the latest snapshot.
// Process-level stats (CPU, RSS) are pushed separately by the telemetry worker.
func (mm *MonitoringManager) Refresh(openRooms, poolIdle int) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.RoundsAdvanced = atomic.LoadUint64(&mm.roundsAdvanced)
	mm.latestStats.PairsAllocated = atomic.LoadUint64(&mm.pairsAllocated)
	mm.latestStats.ProvisioningFailures = atomic.LoadUint64(&mm.provisioningFailures)
	mm.latestStats.Disconnects = atomic.LoadUint64(&mm.disconnects)
	mm.latestStats.CompletedEvents = atomic.LoadUint64(&mm.completedEvents)
	mm.latestStats.OpenRooms = openRooms
	mm.latestStats.PoolIdle = poolIdle
	mm.latestStats.AllocMemMb = mem.Alloc / 1024 / 1024
	mm.latestStats.NumGC = mem.NumGC
	mm.LastCheck = time.Now()
}

// SetProcessStats stores the gopsutil self-stats collected by the telemetry worker.
func (mm *MonitoringManager) SetProcessStats(rss uint64, cpu float64, status string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.RSSBytes = rss
	mm.latestStats.CPUPercent = cpu
	mm.latestStats.PidStatus = status
}

func (mm *MonitoringManager) GetLatest() RotationStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}
