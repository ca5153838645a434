package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"dating-lab/domain"
	"dating-lab/repositories"
)

type viewerConfig struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	EventID        string `env:"EVENT_ID"`
	LogLevel       string `env:"LOG_LEVEL,default=WARN"`
}

// The viewer opens the engine's database read-only and renders the persisted
// rotation snapshots, so operators can inspect a live event from another
// process.
func main() {
	_ = godotenv.Load()
	var config viewerConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// BypassLockGuard allows opening while the engine holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db, logger)
	events, err := snapshots.ListEvents()
	if err != nil {
		log.Fatalf("Failed to list events: %v", err)
	}
	if len(events) == 0 {
		color.Yellow.Println("No rotation snapshots found")
		return
	}

	renderEvents(events)
	for _, snapshot := range events {
		if config.EventID != "" && snapshot.EventID != domain.EventID(config.EventID) {
			continue
		}
		renderParticipants(snapshot)
		renderJournal(repositories.NewNotificationJournal(db, logger), snapshot.EventID)
	}
}

func renderEvents(events []domain.Snapshot) {
	color.Bold.Println("Events")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Event", "Status", "Round", "Duration", "Participants", "Pairings", "Taken at"})
	for _, s := range events {
		table.Append([]string{
			string(s.EventID),
			colorStatus(s.Status),
			strconv.Itoa(s.CurrentRound),
			s.RoundDuration.String(),
			strconv.Itoa(len(s.Participants)),
			strconv.Itoa(len(s.Pairings)),
			s.TakenAt.Format("15:04:05"),
		})
	}
	table.Render()
}

func renderParticipants(snapshot domain.Snapshot) {
	color.Bold.Printf("\nParticipants of %s\n", snapshot.EventID)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Category", "Status", "Room"})
	for _, p := range snapshot.Participants {
		table.Append([]string{string(p.ID), string(p.Category), p.Status.String(), string(p.RoomID)})
	}
	table.Render()
}

func renderJournal(journal repositories.NotificationJournal, eventID domain.EventID) {
	entries, err := journal.Replay(eventID)
	if err != nil {
		color.Red.Printf("Journal replay failed for %s: %v\n", eventID, err)
		return
	}
	color.Bold.Printf("\nNotifications of %s (%d)\n", eventID, len(entries))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "Kind", "ID"})
	for _, entry := range entries {
		table.Append([]string{entry.At.Format("15:04:05.000"), entry.Kind, entry.ID.String()})
	}
	table.Render()
}

func colorStatus(status domain.EventStatus) string {
	switch status {
	case domain.EventInProgress:
		return color.Green.Sprint(status.String())
	case domain.EventCompleted:
		return color.Gray.Sprint(status.String())
	default:
		return fmt.Sprint(status.String())
	}
}
