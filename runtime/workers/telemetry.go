package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"dating-lab/observability"
)

// RoomCounter exposes the gauges the telemetry snapshot needs.
type RoomCounter interface {
	OpenRoomCount() int
}

// PoolGauge is implemented by the pooled provider; nil when no pool is used.
type PoolGauge interface {
	IdleCount() int
}

// TelemetryWorker refreshes the monitoring snapshot every few seconds,
// merging rotation counters with process self-stats (CPU, RSS, status).
type TelemetryWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	roomsGauge RoomCounter
	poolGauge  PoolGauge
	interval   time.Duration
}

func NewTelemetryWorker(log *slog.Logger, monitoring *observability.MonitoringManager,
	roomsGauge RoomCounter, poolGauge PoolGauge, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{
		log:        log,
		monitoring: monitoring,
		roomsGauge: roomsGauge,
		poolGauge:  poolGauge,
		interval:   interval,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting telemetry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
			} else {
				w.monitoring.SetProcessStats(rss, cpu, status)
			}
			poolIdle := 0
			if w.poolGauge != nil {
				poolIdle = w.poolGauge.IdleCount()
			}
			w.monitoring.Refresh(w.roomsGauge.OpenRoomCount(), poolIdle)
			stats := w.monitoring.GetLatest()
			w.log.Debug("Rotation stats",
				"rounds", stats.RoundsAdvanced,
				"pairs", stats.PairsAllocated,
				"provisioning_failures", stats.ProvisioningFailures,
				"disconnects", stats.Disconnects,
				"open_rooms", stats.OpenRooms,
				"pool_idle", stats.PoolIdle,
				"alloc_mb", stats.AllocMemMb,
				"cpu_percent", stats.CPUPercent)
		}
	}
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
