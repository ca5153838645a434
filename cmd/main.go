package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"dating-lab/contract"
	"dating-lab/domain"
	"dating-lab/observability"
	"dating-lab/projection"
	"dating-lab/provider"
	"dating-lab/repositories"
	"dating-lab/runtime"
	"dating-lab/runtime/workers"
	"dating-lab/sink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the engine lifecycle, and centralizes
// error reporting, so every defer (database cleanup included) executes before
// the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Room provider, optionally fronted by a pre-provisioned pool
	videoSDK := provider.NewVideoSDK(log, config.ProviderBaseURL, config.ProviderToken, config.ProviderTimeout)
	var roomProvider contract.VideoRoomProvider = videoSDK
	var poolGauge workers.PoolGauge
	if config.RoomPoolSize > 0 {
		warm := videoSDK.Warm(ctx, config.RoomPoolSize)
		log.Info("Room pool warmed", "requested", config.RoomPoolSize, "created", len(warm))
		pool := provider.NewPool(log, videoSDK, warm)
		roomProvider = pool
		poolGauge = pool
	}

	// 5. Engine, config source, event bootstrap
	monitoring := observability.NewMonitoringManager(log)
	snapshots := repositories.NewSnapshotRepository(db, log)
	configSource, err := NewEnvConfigSource(config.EventID, config.Roster,
		config.RoundDuration, config.AllowRepeats, config.LeftCategory, config.RightCategory)
	if err != nil {
		return err
	}
	engine := runtime.NewEngine(log, roomProvider, snapshots, configSource, monitoring, config.BufferSize)

	eventID := domain.EventID(config.EventID)
	if err = engine.Configure(ctx, eventID); err != nil {
		return fmt.Errorf("configuring event: %w", err)
	}

	// 6. Supervision: fanout, round clock, telemetry
	journal := repositories.NewNotificationJournal(db, log)
	timeline := projection.NewTimeline()
	sinkRegistry := runtime.NewSinkRegistry()
	fanout := workers.NewEventFanout(log, engine.Notifications(), sinkRegistry, config.SinkTimeout).
		Add(sink.NewLogSink(log), sink.NewJournalSink(journal), timeline)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		fanout,
		workers.NewRoundClock(log, engine),
		workers.NewTelemetryWorker(log, monitoring, engine, poolGauge, config.TelemetryInterval),
	)

	// A freshly configured event needs an explicit start; one restored from a
	// snapshot is already in progress and resumes on the next clock sweep.
	if config.AutoStart {
		status, err := engine.Status(eventID)
		if err != nil {
			return err
		}
		if status.Status == domain.EventNotStarted {
			if err = engine.Start(ctx, eventID); err != nil {
				return fmt.Errorf("starting event rotation: %w", err)
			}
		}
	}

	// 7. Block until signal; supervisor drains its workers on cancel.
	log.Info("Rotation engine running", "event", config.EventID)
	sup.Run(ctx)
	log.Info("Program stopped cleanly")
	return nil
}
